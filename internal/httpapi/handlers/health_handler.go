package handlers

import "net/http"

// Health reports liveness.
func (s *Set) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
