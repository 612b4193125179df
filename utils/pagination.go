package utils

import (
	"net/http"
	"strconv"
)

const pageSizeDefault = 50
const pageSizeMax = 500

// Page is a resolved offset/limit pair.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ResolvePage applies defaults to optional offset and limit values. Negative
// offsets become zero and the limit is capped at pageSizeMax.
func ResolvePage(offset *int, limit *int) Page {
	page := Page{Limit: pageSizeDefault}

	if offset != nil && *offset >= 0 {
		page.Offset = *offset
	}

	if limit != nil && *limit > 0 {
		page.Limit = min(*limit, pageSizeMax)
	}

	return page
}

// PageFromQuery reads the "offset" and "limit" query parameters.
func PageFromQuery(r *http.Request) (*int, *int, error) {
	var offset, limit *int
	if s := r.URL.Query().Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, &QueryParamError{Name: "offset", Err: err}
		}
		offset = &v
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, nil, &QueryParamError{Name: "limit", Err: err}
		}
		limit = &v
	}
	return offset, limit, nil
}

// QueryParamError reports a query parameter that is not an integer.
type QueryParamError struct {
	Name string
	Err  error
}

func (e *QueryParamError) Error() string {
	return "invalid '" + e.Name + "' query parameter, must be an integer"
}

func (e *QueryParamError) Unwrap() error { return e.Err }
