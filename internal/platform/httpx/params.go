package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sanilblank/blog-api/internal/shared"
)

// URLParamID parses a positive integer route parameter. Malformed ids are
// reported as not found, matching a missing record.
func URLParamID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

// QueryInt parses an integer query parameter. Missing values yield 0;
// malformed values yield a validation error for key.
func QueryInt(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.NewValidationError(key, "The "+strings.ReplaceAll(key, "_", " ")+" field must be an integer.")
	}
	return v, nil
}

// QueryList splits a comma separated query parameter, dropping blanks.
// Repeated keys (?tags=1&tags=2) are merged.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryPage reads the page and per_page parameters. Absent values are 0.
func QueryPage(r *http.Request) (page, perPage int, err error) {
	p, err := QueryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	pp, err := QueryInt(r, "per_page")
	if err != nil {
		return 0, 0, err
	}
	return int(p), int(pp), nil
}
