package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cdplates/cdplates/internal/archive"
	"github.com/cdplates/cdplates/internal/plate"
)

type mockSnapshotStore struct {
	mock.Mock
}

func (m *mockSnapshotStore) StoreExport(ctx context.Context, export string) (*archive.SnapshotMetadata, error) {
	args := m.Called(export)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*archive.SnapshotMetadata), args.Error(1)
}

func newTestMux(t *testing.T, dev bool, snapshots SnapshotStore) (*http.ServeMux, *Service) {
	t.Helper()
	svc := newTestService(t, dev)
	mux := http.NewServeMux()
	NewHTTPHandler(svc, snapshots, 1024).RegisterRoutes(mux)
	return mux, svc
}

func serve(mux http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHTTPHandler_CreateAndGet(t *testing.T) {
	mux, _ := newTestMux(t, false, nil)

	rec := serve(mux, http.MethodPost, "/api/captures", "application/json",
		`{"plate":"d001bga","latitude":-34.6,"longitude":-58.4}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CaptureRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "D001BGA", created.PlateText)

	rec = serve(mux, http.MethodGet, "/api/captures/"+created.ID.String(), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/captures/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/captures/00000000-0000-0000-0000-000000000001", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPHandler_CreateRejected(t *testing.T) {
	mux, _ := newTestMux(t, false, nil)

	tests := map[string]string{
		"malformed json": `{"plate":`,
		"country code":   `{"plate":"BG"}`,
		"unknown plate":  `{"plate":"X001BGA"}`,
		"coordinates":    `{"plate":"D001BGA","latitude":120}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serve(mux, http.MethodPost, "/api/captures", "application/json", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHTTPHandler_ListAndGroups(t *testing.T) {
	mux, svc := newTestMux(t, false, nil)
	for i, p := range []string{"D001BGA", "C123AAB", "D001BGA"} {
		_, err := svc.Capture(context.Background(), CaptureRequest{Plate: p, CapturedAt: at(i)})
		require.NoError(t, err)
	}

	rec := serve(mux, http.MethodGet, "/api/captures?plate=d001bga&limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Len(t, list.Captures, 1)
	assert.Equal(t, 1, list.Limit)

	rec = serve(mux, http.MethodGet, "/api/captures?offset=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodGet, "/api/captures/groups", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []PlateGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "D001BGA", groups[0].Plate)
	assert.Equal(t, 2, groups[0].Count)
}

func TestHTTPHandler_Update(t *testing.T) {
	t.Run("Forbidden", func(t *testing.T) {
		mux, svc := newTestMux(t, false, nil)
		rec, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA"})
		require.NoError(t, err)

		resp := serve(mux, http.MethodPut, "/api/captures/"+rec.ID.String(), "application/json", `{"latitude":10}`)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("DevMode", func(t *testing.T) {
		mux, svc := newTestMux(t, true, nil)
		rec, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA"})
		require.NoError(t, err)

		resp := serve(mux, http.MethodPut, "/api/captures/"+rec.ID.String(), "application/json", `{"latitude":10}`)
		require.Equal(t, http.StatusOK, resp.Code)
		var updated CaptureRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
		assert.Equal(t, 10.0, updated.Latitude)
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	mux, svc := newTestMux(t, false, nil)
	ctx := context.Background()
	first, err := svc.Capture(ctx, CaptureRequest{Plate: "D001BGA"})
	require.NoError(t, err)
	for _, p := range []string{"D001BGA", "C123AAB", "M010CAB"} {
		_, err := svc.Capture(ctx, CaptureRequest{Plate: p})
		require.NoError(t, err)
	}

	rec := serve(mux, http.MethodDelete, "/api/captures/"+first.ID.String(), "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(mux, http.MethodDelete, "/api/captures/"+first.ID.String(), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(mux, http.MethodDelete, "/api/captures", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodDelete, "/api/captures?plate=D001BGA", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	rec = serve(mux, http.MethodDelete, "/api/captures/all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())
}

func TestHTTPHandler_Details(t *testing.T) {
	svc := newTestService(t, false)
	mux := http.NewServeMux()
	NewHTTPHandler(svc, nil, 0).RegisterRoutes(mux)

	rec, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA"})
	require.NoError(t, err)

	resp := serve(mux, http.MethodGet, "/api/captures/"+rec.ID.String()+"/details", "", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Capture CaptureRecord     `json:"capture"`
		Details plate.DetailsView `json:"details"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, rec.ID, body.Capture.ID)
	assert.False(t, body.Details.CaptureEnabled)
	assert.Len(t, body.Details.Decomposition.Segments, 4)

	// Viewing a stored capture does not leak into a plain decode.
	assert.True(t, plate.BuildDetails(plate.Parse("D001BGA"), nil).CaptureEnabled)
}

func TestHTTPHandler_ExportImport(t *testing.T) {
	mux, svc := newTestMux(t, false, nil)
	_, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA", CapturedAt: at(0)})
	require.NoError(t, err)

	rec := serve(mux, http.MethodGet, "/api/captures/export", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	encoded := rec.Body.String()

	rec = serve(mux, http.MethodPost, "/api/captures/import", "text/plain", encoded)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

	rec = serve(mux, http.MethodPost, "/api/captures/import", "application/json", `{"data":"`+encoded+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodPost, "/api/captures/import", "text/plain", "not base64!")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodPost, "/api/captures/import", "text/plain", strings.Repeat("A", 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHTTPHandler_Feeds(t *testing.T) {
	mux, svc := newTestMux(t, false, nil)
	_, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA", Latitude: 1, Longitude: 2})
	require.NoError(t, err)

	rec := serve(mux, http.MethodGet, "/api/captures/export.csv", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,plate,category,country,latitude,longitude,captured_at\n"))

	rec = serve(mux, http.MethodGet, "/api/captures/geojson", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, [2]float64{2, 1}, fc.Features[0].Geometry.Coordinates)
}

func TestHTTPHandler_Snapshot(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		mux, _ := newTestMux(t, false, nil)
		rec := serve(mux, http.MethodPost, "/api/captures/snapshots", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Stored", func(t *testing.T) {
		store := &mockSnapshotStore{}
		mux, _ := newTestMux(t, false, store)
		store.On("StoreExport", "W10=").
			Return(&archive.SnapshotMetadata{Key: "abc.b64", URL: "/api/snapshots/abc.b64"}, nil)

		rec := serve(mux, http.MethodPost, "/api/captures/snapshots", "", "")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/snapshots/abc.b64")
		store.AssertExpectations(t)
	})

	t.Run("StoreFails", func(t *testing.T) {
		store := &mockSnapshotStore{}
		mux, _ := newTestMux(t, false, store)
		store.On("StoreExport", mock.Anything).
			Return(nil, errors.New("bucket unavailable"))

		rec := serve(mux, http.MethodPost, "/api/captures/snapshots", "", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (b *brokenWriter) Header() http.Header         { return b.header }
func (b *brokenWriter) WriteHeader(status int)      { b.status = status }
func (b *brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestHTTPHandler_ExportWriteErrorsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	mux, svc := newTestMux(t, false, nil)
	_, err := svc.Capture(context.Background(), CaptureRequest{Plate: "D001BGA"})
	require.NoError(t, err)

	for _, target := range []string{"/api/captures/export", "/api/captures/export.csv"} {
		w := &brokenWriter{header: http.Header{}}
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, w.status, target)
	}

	assert.Contains(t, logs.String(), "failed to write export")
	assert.Contains(t, logs.String(), "failed to write csv export")
	assert.Contains(t, logs.String(), "connection reset by peer")
}
