package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cdplates/cdplates/internal/archive"
	"github.com/cdplates/cdplates/utils"
)

// SnapshotStore keeps export snapshots.
type SnapshotStore interface {
	StoreExport(ctx context.Context, export string) (*archive.SnapshotMetadata, error)
}

// HTTPHandler serves the /api/captures endpoints.
type HTTPHandler struct {
	service        *Service
	snapshots      SnapshotStore
	maxImportBytes int64
}

// NewHTTPHandler creates a capture handler. snapshots may be nil, in which case
// snapshot requests answer 503.
func NewHTTPHandler(service *Service, snapshots SnapshotStore, maxImportBytes int64) *HTTPHandler {
	return &HTTPHandler{
		service:        service,
		snapshots:      snapshots,
		maxImportBytes: maxImportBytes,
	}
}

// RegisterRoutes mounts the capture endpoints on mux.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/captures", h.HandleCreate)
	mux.HandleFunc("GET /api/captures", h.HandleList)
	mux.HandleFunc("DELETE /api/captures", h.HandleDeleteByPlate)
	mux.HandleFunc("DELETE /api/captures/all", h.HandleDeleteAll)
	mux.HandleFunc("GET /api/captures/groups", h.HandleGroups)
	mux.HandleFunc("GET /api/captures/export", h.HandleExport)
	mux.HandleFunc("POST /api/captures/import", h.HandleImport)
	mux.HandleFunc("GET /api/captures/export.csv", h.HandleExportCSV)
	mux.HandleFunc("GET /api/captures/geojson", h.HandleGeoJSON)
	mux.HandleFunc("POST /api/captures/snapshots", h.HandleSnapshot)
	mux.HandleFunc("GET /api/captures/{id}", h.HandleGet)
	mux.HandleFunc("PUT /api/captures/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/captures/{id}", h.HandleDelete)
	mux.HandleFunc("GET /api/captures/{id}/details", h.HandleDetails)
}

// parseID extracts the capture ID from the request path
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "invalid capture id format")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrCaptureNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, "Capture not found")
	case errors.Is(err, ErrDevModeRequired):
		utils.WriteJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotCapturable), errors.Is(err, ErrInvalidCoordinates), errors.Is(err, ErrInvalidImport):
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(ctx, "failed to "+action, "error", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// HandleCreate handles POST /api/captures
func (h *HTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.service.Capture(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, err, "capture plate")
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, record)
}

// HandleList handles GET /api/captures?plate=&offset=&limit=
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := utils.PageFromQuery(r)
	if err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := ListFilter{Offset: offset, Limit: limit}
	if p := r.URL.Query().Get("plate"); p != "" {
		filter.Plate = &p
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, err, "list captures")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, result)
}

// HandleGroups handles GET /api/captures/groups
func (h *HTTPHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Groups(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, "group captures")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, groups)
}

// HandleGet handles GET /api/captures/{id}
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err, "get capture")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, record)
}

// HandleDetails handles GET /api/captures/{id}/details
// The capture action of the returned view is disabled since the plate is stored.
func (h *HTTPHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	record, details, err := h.service.Details(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err, "get capture details")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"capture": record,
		"details": details,
	})
}

// HandleUpdate handles PUT /api/captures/{id}, developer mode only
func (h *HTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(r.Context(), w, err, "update capture")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, record)
}

// HandleDelete handles DELETE /api/captures/{id}
func (h *HTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(r.Context(), w, err, "delete capture")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteByPlate handles DELETE /api/captures?plate=
func (h *HTTPHandler) HandleDeleteByPlate(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("plate")
	if strings.TrimSpace(p) == "" {
		utils.WriteJSONError(w, http.StatusBadRequest, "plate query parameter is required")
		return
	}

	n, err := h.service.DeleteByPlate(r.Context(), p)
	if err != nil {
		writeServiceError(r.Context(), w, err, "delete captures")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{"deleted": n})
}

// HandleDeleteAll handles DELETE /api/captures/all
func (h *HTTPHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteAll(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, "delete captures")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{"deleted": n})
}

// HandleExport handles GET /api/captures/export
// The body is the Base64 export text, ready to paste into an import.
func (h *HTTPHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	encoded, err := h.service.Export(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, "export captures")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, encoded); err != nil {
		slog.WarnContext(r.Context(), "failed to write export", "error", err)
	}
}

// HandleImport handles POST /api/captures/import
// Accepts the export text as a plain body or as {"data": "..."}.
func (h *HTTPHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if h.maxImportBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteJSONError(w, http.StatusRequestEntityTooLarge, "import payload too large")
			return
		}
		utils.WriteJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	encoded := string(body)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var req struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		encoded = req.Data
	}

	n, err := h.service.Import(r.Context(), encoded)
	if err != nil {
		writeServiceError(r.Context(), w, err, "import captures")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{"imported": n})
}

// HandleExportCSV handles GET /api/captures/export.csv
func (h *HTTPHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf); err != nil {
		writeServiceError(r.Context(), w, err, "export captures")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="captures.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.WarnContext(r.Context(), "failed to write csv export", "error", err)
	}
}

// HandleGeoJSON handles GET /api/captures/geojson
func (h *HTTPHandler) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	fc, err := h.service.GeoJSON(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, "build map feed")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode geojson", "error", err)
	}
}

// HandleSnapshot handles POST /api/captures/snapshots
// Stores the current export in the snapshot archive.
func (h *HTTPHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		utils.WriteJSONError(w, http.StatusServiceUnavailable, "snapshot storage is not configured")
		return
	}

	ctx := r.Context()
	encoded, err := h.service.Export(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "export captures")
		return
	}

	metadata, err := h.snapshots.StoreExport(ctx, encoded)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store snapshot", "error", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, "Failed to store snapshot")
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, metadata)
}
