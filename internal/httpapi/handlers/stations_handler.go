package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chargenet/internal/station"
	"chargenet/internal/types"
)

type createEVSERequest struct {
	StationID string `json:"station_id" validate:"required"`
	EVSEID    string `json:"evse_id" validate:"required"`
}

// CreateEVSE registers a new EVSE. The station is created on first use.
func (s *Set) CreateEVSE(w http.ResponseWriter, r *http.Request) {
	var req createEVSERequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := s.registry.Create(types.StationID(req.StationID))
	evse, err := st.CreateEVSE(types.EVSEID(req.EVSEID))
	switch {
	case errors.Is(err, station.ErrEVSEExists):
		writeError(w, http.StatusConflict, "evse already exists")
		return
	case errors.Is(err, station.ErrAdditionVetoed):
		writeError(w, http.StatusUnprocessableEntity, "evse addition vetoed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to create evse")
		return
	}

	writeJSON(w, http.StatusCreated, evse.Snapshot())
}

// StationSnapshot returns the current state of a station and its EVSEs.
func (s *Set) StationSnapshot(w http.ResponseWriter, r *http.Request) {
	stationID := types.StationID(chi.URLParam(r, "stationID"))
	st, ok := s.registry.Get(stationID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown station")
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}
