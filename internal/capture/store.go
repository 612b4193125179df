package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cdplates/cdplates/utils"
)

// Store persists capture records.
type Store interface {
	Create(ctx context.Context, record *CaptureRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CaptureRecord, error)
	List(ctx context.Context, plate string, page utils.Page) ([]CaptureRecord, int64, error)
	All(ctx context.Context) ([]CaptureRecord, error)
	Update(ctx context.Context, record *CaptureRecord) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByPlate(ctx context.Context, plate string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	ReplaceAll(ctx context.Context, records []CaptureRecord) error
}

// GormStore is the gorm-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and migrates the captures table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&CaptureRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate captures: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Create inserts a new capture record
func (s *GormStore) Create(ctx context.Context, record *CaptureRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// GetByID returns ErrCaptureNotFound when no record has the given ID.
func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*CaptureRecord, error) {
	var record CaptureRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaptureNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List returns one page of captures, newest first, optionally for one plate.
func (s *GormStore) List(ctx context.Context, plate string, page utils.Page) ([]CaptureRecord, int64, error) {
	query := s.db.WithContext(ctx).Model(&CaptureRecord{})
	if plate != "" {
		query = query.Where("plate_text = ?", plate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count captures: %w", err)
	}

	var records []CaptureRecord
	if err := query.Order("captured_at DESC").Offset(page.Offset).Limit(page.Limit).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list captures: %w", err)
	}
	return records, total, nil
}

// All returns every capture ordered by capture time.
func (s *GormStore) All(ctx context.Context) ([]CaptureRecord, error) {
	var records []CaptureRecord
	if err := s.db.WithContext(ctx).Order("captured_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Update saves every field of record.
func (s *GormStore) Update(ctx context.Context, record *CaptureRecord) error {
	return s.db.WithContext(ctx).Save(record).Error
}

// Delete removes a capture by ID and reports how many rows went away.
func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&CaptureRecord{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// DeleteByPlate removes every capture of one plate.
func (s *GormStore) DeleteByPlate(ctx context.Context, plate string) (int64, error) {
	res := s.db.WithContext(ctx).Where("plate_text = ?", plate).Delete(&CaptureRecord{})
	return res.RowsAffected, res.Error
}

// DeleteAll empties the table.
func (s *GormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&CaptureRecord{})
	return res.RowsAffected, res.Error
}

// ReplaceAll swaps the whole table for records in one transaction.
func (s *GormStore) ReplaceAll(ctx context.Context, records []CaptureRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CaptureRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear captures: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to insert captures: %w", err)
		}
		return nil
	})
}
