// Package capture records plate sightings with a geolocation and manages them:
// listing, grouping by plate, editing in developer mode, deletion, and bulk
// export/import.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cdplates/cdplates/internal/plate"
	"github.com/cdplates/cdplates/utils"
)

var (
	// ErrCaptureNotFound is returned when no capture has the requested ID
	ErrCaptureNotFound = errors.New("capture not found")
	// ErrDevModeRequired guards edits, which only developer mode allows
	ErrDevModeRequired = errors.New("developer mode is required to edit captures")
	// ErrNotCapturable is returned for input that does not decode to a full plate
	ErrNotCapturable = errors.New("only a valid full plate can be captured")
	// ErrInvalidCoordinates is returned for latitude/longitude out of range
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// DevModeSource reports whether developer mode is on.
type DevModeSource interface {
	DevMode() bool
}

// Service implements the capture operations on top of a Store.
type Service struct {
	store   Store
	devMode DevModeSource
	now     func() time.Time
}

// NewService creates a capture service.
func NewService(store Store, devMode DevModeSource) *Service {
	return &Service{
		store:   store,
		devMode: devMode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Capture stores a sighting of a full plate. The plate text is normalized and
// must decode without error.
func (s *Service) Capture(ctx context.Context, req CaptureRequest) (*CaptureRecord, error) {
	result, err := capturablePlate(req.Plate)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	capturedAt := s.now()
	if req.CapturedAt != nil {
		capturedAt = req.CapturedAt.UTC()
	}

	record := &CaptureRecord{
		ID:         uuid.New(),
		PlateText:  result.Input,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CapturedAt: capturedAt,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store capture: %w", err)
	}

	slog.InfoContext(ctx, "plate captured",
		"id", record.ID,
		"plate", record.PlateText,
		"country", result.Country)
	return record, nil
}

// Get returns one capture.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CaptureRecord, error) {
	return s.store.GetByID(ctx, id)
}

// List returns a page of captures, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	page := utils.ResolvePage(filter.Offset, filter.Limit)

	var plateText string
	if filter.Plate != nil {
		plateText = plate.Normalize(*filter.Plate)
	}

	records, total, err := s.store.List(ctx, plateText, page)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []CaptureRecord{}
	}
	return &ListResult{
		TotalCount: total,
		Captures:   records,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}, nil
}

// Groups summarizes the captures per plate, most recently seen first.
func (s *Service) Groups(ctx context.Context) ([]PlateGroup, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load captures: %w", err)
	}

	byPlate := make(map[string]*PlateGroup)
	for _, rec := range records {
		g, ok := byPlate[rec.PlateText]
		if !ok {
			decoded := plate.Parse(rec.PlateText)
			g = &PlateGroup{
				Plate:    rec.PlateText,
				Country:  decoded.Country,
				Category: decoded.Category,
			}
			byPlate[rec.PlateText] = g
		}
		g.Count++
		if rec.CapturedAt.After(g.LastCapturedAt) {
			g.LastCapturedAt = rec.CapturedAt
		}
	}

	groups := make([]PlateGroup, 0, len(byPlate))
	for _, g := range byPlate {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].LastCapturedAt.Equal(groups[j].LastCapturedAt) {
			return groups[i].LastCapturedAt.After(groups[j].LastCapturedAt)
		}
		return groups[i].Plate < groups[j].Plate
	})
	return groups, nil
}

// Update patches a capture. Only allowed in developer mode.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*CaptureRecord, error) {
	if s.devMode == nil || !s.devMode.DevMode() {
		return nil, ErrDevModeRequired
	}

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plate != nil {
		result, err := capturablePlate(*req.Plate)
		if err != nil {
			return nil, err
		}
		record.PlateText = result.Input
	}
	if req.Latitude != nil {
		record.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		record.Longitude = *req.Longitude
	}
	if err := validateCoordinates(record.Latitude, record.Longitude); err != nil {
		return nil, err
	}
	if req.CapturedAt != nil {
		record.CapturedAt = req.CapturedAt.UTC()
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update capture: %w", err)
	}

	slog.InfoContext(ctx, "capture updated", "id", record.ID, "plate", record.PlateText)
	return record, nil
}

// Delete removes one capture.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	if n == 0 {
		return ErrCaptureNotFound
	}
	slog.InfoContext(ctx, "capture deleted", "id", id)
	return nil
}

// DeleteByPlate removes every capture of one plate and returns how many.
func (s *Service) DeleteByPlate(ctx context.Context, plateText string) (int64, error) {
	normalized := plate.Normalize(plateText)
	if normalized == "" {
		return 0, fmt.Errorf("%w: plate is required", ErrNotCapturable)
	}
	n, err := s.store.DeleteByPlate(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("failed to delete captures: %w", err)
	}
	slog.InfoContext(ctx, "captures deleted by plate", "plate", normalized, "count", n)
	return n, nil
}

// DeleteAll removes every capture and returns how many.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete captures: %w", err)
	}
	slog.InfoContext(ctx, "all captures deleted", "count", n)
	return n, nil
}

// Details decodes a stored capture for display. The capture action stays
// disabled since the plate is already stored.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*CaptureRecord, plate.DetailsView, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, plate.DetailsView{}, err
	}
	var viewing plate.OneShot
	viewing.Set()
	return record, plate.BuildDetails(plate.Parse(record.PlateText), &viewing), nil
}

func capturablePlate(raw string) (plate.ParseResult, error) {
	result := plate.Parse(raw)
	if err := result.Err(); err != nil {
		return result, fmt.Errorf("%w: %w", ErrNotCapturable, err)
	}
	if !result.IsFullPlate {
		return result, ErrNotCapturable
	}
	return result, nil
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, lng)
	}
	return nil
}
