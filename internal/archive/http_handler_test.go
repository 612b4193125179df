package archive

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdplates/cdplates/internal/archive/drivers"
)

func TestHTTPHandler_Download(t *testing.T) {
	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/api/snapshots")
	require.NoError(t, err)
	service := NewService(driver)

	metadata, err := service.Store(t.Context(), "captures.b64", strings.NewReader("W10="), 4, "text/plain")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshots/{key}", NewHTTPHandler(service).HandleDownload)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/"+metadata.Key, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "W10=", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodGet, "/api/snapshots/missing.b64", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
