package archive

import (
	"context"
	"io"
	"time"
)

// DownloadPath is the API prefix stored snapshots are served from. Snapshots
// kept on local disk get URLs under it.
const DownloadPath = "/api/snapshots"

// SnapshotMIME is the content type of an export snapshot, the Base64 export text.
const SnapshotMIME = "text/plain"

const snapshotExt = ".b64"

// StorageDriver is the blob store behind snapshots.
type StorageDriver interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Delete of a missing key is not an error
	Delete(ctx context.Context, key string) error
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// SnapshotName is the download name of an export taken at t.
func SnapshotName(t time.Time) string {
	return "captures-" + t.UTC().Format("20060102T150405Z") + snapshotExt
}
