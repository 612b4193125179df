package capture

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaptureRecord is one sighting of a diplomatic plate at a geographic point.
type CaptureRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlateText  string    `gorm:"type:varchar(16);index;not null" json:"plateText"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	CapturedAt time.Time `gorm:"index;not null" json:"capturedAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for CaptureRecord
func (CaptureRecord) TableName() string {
	return "captures"
}

// BeforeCreate assigns an ID when the caller did not.
func (c *CaptureRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CaptureRequest is the body of POST /api/captures.
type CaptureRequest struct {
	Plate      string     `json:"plate"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"` // defaults to now
}

// UpdateRequest patches a capture. Nil fields are left unchanged.
type UpdateRequest struct {
	Plate      *string    `json:"plate,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

// ListFilter narrows a capture listing.
type ListFilter struct {
	Plate  *string `json:"plate,omitempty"`
	Offset *int    `json:"offset,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

// ListResult is a page of captures, newest first.
type ListResult struct {
	TotalCount int64           `json:"totalCount"`
	Captures   []CaptureRecord `json:"captures"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
}

// PlateGroup summarizes every capture of one plate.
type PlateGroup struct {
	Plate          string    `json:"plate"`
	Country        string    `json:"country,omitempty"`
	Category       string    `json:"category,omitempty"`
	Count          int       `json:"count"`
	LastCapturedAt time.Time `json:"lastCapturedAt"`
}
