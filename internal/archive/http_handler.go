package archive

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cdplates/cdplates/utils"
)

type HTTPHandler struct {
	Service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// HandleDownload handles GET /api/snapshots/{key}
func (h *HTTPHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		utils.WriteJSONError(w, http.StatusBadRequest, "key is required")
		return
	}

	reader, contentType, err := h.Service.Fetch(r.Context(), key)
	if err != nil {
		slog.DebugContext(r.Context(), "snapshot not found", "key", key, "error", err)
		utils.WriteJSONError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		slog.WarnContext(r.Context(), "failed to stream snapshot", "key", key, "error", err)
	}
}
