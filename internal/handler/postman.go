package handler

import (
	"net/http"

	"github.com/apilab/apilab/internal/postman"
)

// Postman handles GET /api/postman/collection. The base_url query parameter
// overrides the URL derived from the request.
func (h *Handler) Postman(w http.ResponseWriter, r *http.Request) {
	baseURL := r.URL.Query().Get("base_url")
	if baseURL == "" {
		baseURL = requestBaseURL(r)
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+postman.Filename)
	writeJSON(w, http.StatusOK, postman.Generate(baseURL))
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
