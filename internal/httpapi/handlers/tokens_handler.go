package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chargenet/internal/types"
)

type addTokenRequest struct {
	UID     string `json:"uid" validate:"required"`
	Verdict string `json:"verdict" validate:"omitempty,oneof=Authorized NotAuthorized Blocked"`
}

// AddToken stores an authorization verdict for a token. Duplicates are
// rejected without overwriting the stored verdict.
func (s *Set) AddToken(w http.ResponseWriter, r *http.Request) {
	var req addTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.engine.AddToken(types.TokenID(req.UID), types.TokenVerdict(req.Verdict)) {
		writeError(w, http.StatusConflict, "token already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"uid": req.UID})
}

// RemoveToken deletes a token entry.
func (s *Set) RemoveToken(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if !s.engine.RemoveToken(types.TokenID(uid)) {
		writeError(w, http.StatusNotFound, "unknown token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": uid})
}

// ListTokens returns a snapshot of the token table.
func (s *Set) ListTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": s.engine.Tokens(),
	})
}
