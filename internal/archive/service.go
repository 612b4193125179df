// Package archive keeps export snapshots of the capture list in a blob store
// (local disk or an S3-compatible bucket).
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service stores snapshots through a StorageDriver.
type Service struct {
	Driver StorageDriver
}

func NewService(driver StorageDriver) *Service {
	return &Service{Driver: driver}
}

// Store saves a snapshot and returns where it can be downloaded from. The stored
// object is removed again if no URL can be produced for it.
func (s *Service) Store(ctx context.Context, name string, reader io.Reader, size int64, mime string) (*SnapshotMetadata, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	key := id.String() + filepath.Ext(name)

	if err := s.Driver.Save(ctx, key, reader, mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		if delErr := s.Driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned snapshot", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	metadata := &SnapshotMetadata{
		ID:        id,
		Name:      name,
		Key:       key,
		URL:       url,
		Size:      size,
		MimeType:  mime,
		CreatedAt: time.Now().UTC(),
	}

	slog.InfoContext(ctx, "snapshot stored", "id", id, "key", key, "size", size)
	return metadata, nil
}

// StoreExport saves an export text as a snapshot named after the current time.
func (s *Service) StoreExport(ctx context.Context, export string) (*SnapshotMetadata, error) {
	return s.Store(ctx, SnapshotName(time.Now()), strings.NewReader(export), int64(len(export)), SnapshotMIME)
}

// Fetch returns the snapshot content and its MIME type.
func (s *Service) Fetch(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.Driver.Get(ctx, key)
}
