package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cdplates/cdplates/internal/appstate"
	"github.com/cdplates/cdplates/internal/plate"
	"github.com/cdplates/cdplates/utils"
)

// DecodeResponse is the body of the decode endpoints.
type DecodeResponse struct {
	Result  plate.ParseResult `json:"result"`
	Details plate.DetailsView `json:"details"`
}

// PlateHandler serves plate decoding, the lookup tables and the session state.
type PlateHandler struct {
	state *appstate.State
	now   func() time.Time
}

func NewPlateHandler(state *appstate.State) *PlateHandler {
	return &PlateHandler{state: state, now: time.Now}
}

// decode renders raw for this request only. The viewing flag lives on the
// request so concurrent decodes never consume each other's flag.
func (h *PlateHandler) decode(w http.ResponseWriter, r *http.Request, raw string) {
	var viewing plate.OneShot
	if v := r.URL.Query().Get("viewingCaptured"); v != "" {
		set, err := strconv.ParseBool(v)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, "invalid 'viewingCaptured' query parameter, must be a boolean")
			return
		}
		if set {
			viewing.Set()
		}
	}

	result := plate.Parse(raw)
	utils.WriteJSONResponse(w, http.StatusOK, DecodeResponse{
		Result:  result,
		Details: plate.BuildDetails(result, &viewing),
	})
}

// HandleDecodePath handles GET /api/plates/{plate}
func (h *PlateHandler) HandleDecodePath(w http.ResponseWriter, r *http.Request) {
	h.decode(w, r, r.PathValue("plate"))
}

// HandleDecodeQuery handles GET /api/decode?q=
// Decoding errors are reported in the body with status 200.
func (h *PlateHandler) HandleDecodeQuery(w http.ResponseWriter, r *http.Request) {
	h.decode(w, r, r.URL.Query().Get("q"))
}

// HandleCountries handles GET /api/countries
func (h *PlateHandler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, plate.Countries())
}

// HandleCategories handles GET /api/categories
func (h *PlateHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, plate.Categories())
}

// HandleSession handles GET /api/session
func (h *PlateHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"devMode": h.state.DevMode(),
	})
}

// HandleTap handles POST /api/session/taps, one tap on the page title.
func (h *PlateHandler) HandleTap(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, h.state.RegisterTap(h.now()))
}
