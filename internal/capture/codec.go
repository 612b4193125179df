package capture

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cdplates/cdplates/internal/plate"
)

// ErrInvalidImport is returned when an import payload cannot be decoded or
// contains an invalid record. Nothing is written in that case.
var ErrInvalidImport = errors.New("invalid import data")

// exportEntry is the interchange shape of one capture: the export is the
// Base64 encoding of a JSON array of these.
type exportEntry struct {
	Plate     string  `json:"plate"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
}

// Export encodes every capture as Base64 JSON, oldest first.
func (s *Service) Export(ctx context.Context) (string, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load captures: %w", err)
	}

	entries := make([]exportEntry, len(records))
	for i, rec := range records {
		entries[i] = exportEntry{
			Plate:     rec.PlateText,
			Lat:       rec.Latitude,
			Lng:       rec.Longitude,
			Timestamp: rec.CapturedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal captures: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Import replaces every stored capture with the records in encoded, a payload
// produced by Export. The payload is fully validated before anything is written.
func (s *Service) Import(ctx context.Context, encoded string) (int, error) {
	records, err := decodeExport(encoded)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to replace captures: %w", err)
	}
	slog.InfoContext(ctx, "captures imported", "count", len(records))
	return len(records), nil
}

func decodeExport(encoded string) ([]CaptureRecord, error) {
	encoded = strings.Join(strings.Fields(encoded), "")
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImport)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %v", ErrInvalidImport, err)
	}

	var entries []exportEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: not a capture list: %v", ErrInvalidImport, err)
	}
	// A JSON null decodes to a nil slice; only an explicit [] clears the store.
	if entries == nil {
		return nil, fmt.Errorf("%w: not a capture list: null", ErrInvalidImport)
	}

	records := make([]CaptureRecord, len(entries))
	for i, e := range entries {
		// Only the plate shape is checked so that older exports survive table changes.
		decoded := plate.Parse(e.Plate)
		if !decoded.IsFullPlate {
			return nil, fmt.Errorf("%w: record %d: plate %q is not a full plate", ErrInvalidImport, i, e.Plate)
		}
		if err := validateCoordinates(e.Lat, e.Lng); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidImport, i, err)
		}
		at, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: bad timestamp %q", ErrInvalidImport, i, e.Timestamp)
		}
		records[i] = CaptureRecord{
			ID:         uuid.New(),
			PlateText:  decoded.Input,
			Latitude:   e.Lat,
			Longitude:  e.Lng,
			CapturedAt: at.UTC(),
		}
	}
	return records, nil
}

var csvHeader = []string{"id", "plate", "category", "country", "latitude", "longitude", "captured_at"}

// ExportCSV writes every capture as CSV, decorated with the decoded category and
// country.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load captures: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		decoded := plate.Parse(rec.PlateText)
		row := []string{
			rec.ID.String(),
			rec.PlateText,
			decoded.Category,
			decoded.Country,
			strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
			strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
			rec.CapturedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FeatureCollection is the GeoJSON document handed to the map widget.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one capture as a GeoJSON point.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Point             `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Point holds [longitude, latitude], GeoJSON order.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties are shown in the map popup.
type FeatureProperties struct {
	ID         uuid.UUID `json:"id"`
	Plate      string    `json:"plate"`
	Country    string    `json:"country,omitempty"`
	Category   string    `json:"category,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// GeoJSON returns every capture as a FeatureCollection of points.
func (s *Service) GeoJSON(ctx context.Context) (*FeatureCollection, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load captures: %w", err)
	}

	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(records))}
	for _, rec := range records {
		decoded := plate.Parse(rec.PlateText)
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Point{
				Type:        "Point",
				Coordinates: [2]float64{rec.Longitude, rec.Latitude},
			},
			Properties: FeatureProperties{
				ID:         rec.ID,
				Plate:      rec.PlateText,
				Country:    decoded.Country,
				Category:   decoded.Category,
				CapturedAt: rec.CapturedAt,
			},
		})
	}
	return fc, nil
}
