package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/cdplates/cdplates/internal/appstate"
	"github.com/cdplates/cdplates/internal/archive"
	"github.com/cdplates/cdplates/internal/archive/drivers"
	"github.com/cdplates/cdplates/internal/capture"
	"github.com/cdplates/cdplates/internal/config"
	"github.com/cdplates/cdplates/internal/database"
	"github.com/cdplates/cdplates/internal/plate"
)

func newTestMux(t *testing.T) (*http.ServeMux, *appstate.State) {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "captures.db")), slog.LevelError)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := capture.NewGormStore(db)
	require.NoError(t, err)

	driver, err := drivers.NewLocalFSDriver(t.TempDir(), archive.DownloadPath)
	require.NoError(t, err)

	state := appstate.New(appstate.Options{TapCount: 2, TapWindow: time.Minute})
	mux := NewMux(Dependencies{
		DB:       db,
		State:    state,
		Captures: capture.NewService(store, state),
		Archive:  archive.NewService(driver),
		App:      config.AppConfig{MaxImportBytes: 1 << 20},
	})
	return mux, state
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := get(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"cdplates"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	mux, _ := newTestMux(t)

	t.Run("FullPlate", func(t *testing.T) {
		rec := get(t, mux, "/api/plates/d001bga")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[DecodeResponse](t, rec)
		assert.Equal(t, "D001BGA", body.Result.Input)
		assert.Equal(t, "REINO DE ESPAÑA", body.Result.Country)
		assert.True(t, body.Result.ChiefOfMissionUse)
		assert.True(t, body.Details.CaptureEnabled)
		assert.Equal(t, "D: CUERPO DIPLOMATICO", body.Details.Category.Label)
		assert.Len(t, body.Details.Decomposition.Segments, 4)
	})

	t.Run("CountryCode", func(t *testing.T) {
		body := decodeBody[DecodeResponse](t, get(t, mux, "/api/decode?q=+bg+"))
		assert.Equal(t, "BG", body.Result.Code)
		assert.False(t, body.Details.CaptureEnabled)
		assert.Len(t, body.Details.Decomposition.Segments, 1)
	})

	t.Run("ErrorsAreData", func(t *testing.T) {
		rec := get(t, mux, "/api/decode?q=X001BGA")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[DecodeResponse](t, rec)
		assert.Equal(t, plate.CategoryNotFound, body.Result.Error)
		assert.Equal(t, "Categoría no encontrada", body.Details.ErrorMessage)
		assert.False(t, body.Details.Decomposition.Visible)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		body := decodeBody[DecodeResponse](t, get(t, mux, "/api/decode"))
		assert.Equal(t, plate.InvalidFormat, body.Result.Error)
	})
}

func TestDecode_ViewingCapturedIsOneShot(t *testing.T) {
	mux, _ := newTestMux(t)

	body := decodeBody[DecodeResponse](t, get(t, mux, "/api/decode?q=D001BGA&viewingCaptured=true"))
	assert.False(t, body.Details.CaptureEnabled)

	body = decodeBody[DecodeResponse](t, get(t, mux, "/api/decode?q=D001BGA"))
	assert.True(t, body.Details.CaptureEnabled)

	rec := get(t, mux, "/api/decode?q=D001BGA&viewingCaptured=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecode_ConcurrentViewingFlagsStayPerRequest(t *testing.T) {
	mux, _ := newTestMux(t)

	const requests = 400
	var wg sync.WaitGroup
	for i := range requests {
		viewing := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := "/api/decode?q=D001BGA"
			if viewing {
				target += "&viewingCaptured=true"
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

			var body DecodeResponse
			if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)) {
				return
			}
			assert.Equal(t, !viewing, body.Details.CaptureEnabled, "viewingCaptured=%v", viewing)
		}()
	}
	wg.Wait()
}

func TestTables(t *testing.T) {
	mux, _ := newTestMux(t)

	countries := decodeBody[[]plate.Country](t, get(t, mux, "/api/countries"))
	assert.Contains(t, countries, plate.Country{Code: "BG", Name: "REINO DE ESPAÑA"})

	categories := decodeBody[[]plate.Category](t, get(t, mux, "/api/categories"))
	assert.Len(t, categories, 5)
}

func TestSessionTaps(t *testing.T) {
	mux, state := newTestMux(t)

	assert.JSONEq(t, `{"devMode":false}`, get(t, mux, "/api/session").Body.String())

	tap := func() appstate.TapResult {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/taps", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeBody[appstate.TapResult](t, rec)
	}

	assert.Equal(t, 1, tap().Remaining)
	res := tap()
	assert.True(t, res.Toggled)
	assert.True(t, res.DevMode)
	assert.True(t, state.DevMode())
	assert.JSONEq(t, `{"devMode":true}`, get(t, mux, "/api/session").Body.String())
}

func TestCaptureRoutesMounted(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := get(t, mux, "/api/captures")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/captures/snapshots", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	meta := decodeBody[archive.SnapshotMetadata](t, rec)
	rec = get(t, mux, meta.URL)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "W10=", rec.Body.String())
}
