package handler

import "net/http"

// HandleHealth → GET /health. It does not touch the store or Instagram, so
// it stays green while either is down.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
