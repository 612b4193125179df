package archive

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotMetadata describes one stored export snapshot.
type SnapshotMetadata struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}
