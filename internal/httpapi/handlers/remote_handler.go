package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chargenet/internal/auth"
	"chargenet/internal/station"
	"chargenet/internal/types"
)

type reserveRequest struct {
	StationID       string   `json:"station_id" validate:"required"`
	ReservationID   string   `json:"reservation_id"`
	ProviderID      string   `json:"provider_id" validate:"required"`
	Start           string   `json:"start"`
	DurationSeconds int      `json:"duration_seconds" validate:"required,gt=0"`
	AllowedTokens   []string `json:"allowed_tokens"`
	AllowedAccounts []string `json:"allowed_accounts"`
	PINs            []string `json:"pins"`
}

// Reserve places a hold on an EVSE. PINs are hashed before the
// reservation core ever sees them.
func (s *Set) Reserve(w http.ResponseWriter, r *http.Request) {
	evseID := types.EVSEID(chi.URLParam(r, "evseID"))

	var req reserveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now().UTC()
	if req.Start != "" {
		parsed, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start timestamp")
			return
		}
		start = parsed.UTC()
	}

	reservationID := types.ReservationID(req.ReservationID)
	if !reservationID.IsSet() {
		reservationID = types.ReservationID(uuid.NewString())
	}

	restrictions := types.ReservationRestrictions{}
	for _, t := range req.AllowedTokens {
		restrictions.Tokens = append(restrictions.Tokens, types.TokenID(t))
	}
	for _, a := range req.AllowedAccounts {
		restrictions.Accounts = append(restrictions.Accounts, types.AccountID(a))
	}
	for _, pin := range req.PINs {
		hash, err := auth.HashPIN(pin)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pin")
			return
		}
		restrictions.PINHashes = append(restrictions.PINHashes, hash)
	}

	st, ok := s.registry.Get(types.StationID(req.StationID))
	if !ok {
		writeJSON(w, http.StatusNotFound, types.ReservationResult{Outcome: types.ReserveUnknownEVSE})
		return
	}

	result := st.Reserve(evseID, types.Reservation{
		ID:           reservationID,
		ProviderID:   types.ProviderID(req.ProviderID),
		Start:        start,
		Duration:     time.Duration(req.DurationSeconds) * time.Second,
		Restrictions: restrictions,
	})
	writeJSON(w, reserveStatus(result.Outcome), result)
}

type remoteStartRequest struct {
	StationID     string `json:"station_id" validate:"required"`
	EVSEID        string `json:"evse_id"`
	ProductID     string `json:"product_id"`
	ReservationID string `json:"reservation_id"`
	SessionID     string `json:"session_id"`
	ProviderID    string `json:"provider_id" validate:"required"`
	AccountID     string `json:"account_id"`
}

// RemoteStart starts charging on an EVSE, or on the station when no
// EVSE id is given.
func (s *Set) RemoteStart(w http.ResponseWriter, r *http.Request) {
	var req remoteStartRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := s.registry.Get(types.StationID(req.StationID))
	if !ok {
		writeJSON(w, http.StatusNotFound, types.RemoteStartResult{Outcome: types.StartUnknownEVSE})
		return
	}

	startReq := station.RemoteStartRequest{
		EVSEID:        types.EVSEID(req.EVSEID),
		ProductID:     types.ProductID(req.ProductID),
		ReservationID: types.ReservationID(req.ReservationID),
		SessionID:     types.SessionID(req.SessionID),
		ProviderID:    types.ProviderID(req.ProviderID),
		AccountID:     types.AccountID(req.AccountID),
	}

	var result types.RemoteStartResult
	if startReq.EVSEID.IsSet() {
		result = st.RemoteStart(startReq)
	} else {
		result = st.RemoteStartStation(startReq)
	}
	writeJSON(w, startStatus(result.Outcome), result)
}

type remoteStopRequest struct {
	StationID           string `json:"station_id" validate:"required"`
	EVSEID              string `json:"evse_id" validate:"required"`
	SessionID           string `json:"session_id" validate:"required"`
	ReservationHandling string `json:"reservation_handling" validate:"omitempty,oneof=Close Keep"`
	ProviderID          string `json:"provider_id"`
}

// RemoteStop ends the running session on an EVSE.
func (s *Set) RemoteStop(w http.ResponseWriter, r *http.Request) {
	var req remoteStopRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := s.registry.Get(types.StationID(req.StationID))
	if !ok {
		writeJSON(w, http.StatusNotFound, types.RemoteStopResult{Outcome: types.StopUnknownEVSE})
		return
	}

	handling := types.ReservationHandling(req.ReservationHandling)
	if handling == "" {
		handling = types.ReservationClose
	}

	result := st.RemoteStop(station.RemoteStopRequest{
		EVSEID:              types.EVSEID(req.EVSEID),
		SessionID:           types.SessionID(req.SessionID),
		ReservationHandling: handling,
		ProviderID:          types.ProviderID(req.ProviderID),
	})
	writeJSON(w, stopStatus(result.Outcome), result)
}

func reserveStatus(outcome types.ReservationOutcome) int {
	switch outcome {
	case types.ReserveSuccess:
		return http.StatusOK
	case types.ReserveUnknownEVSE:
		return http.StatusNotFound
	case types.ReserveAlreadyReserved, types.ReserveAlreadyInUse:
		return http.StatusConflict
	case types.ReserveOutOfService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func startStatus(outcome types.RemoteStartOutcome) int {
	switch outcome {
	case types.StartSuccess:
		return http.StatusOK
	case types.StartUnknownEVSE:
		return http.StatusNotFound
	case types.StartReserved, types.StartAlreadyInUse:
		return http.StatusConflict
	case types.StartOutOfService, types.StartOffline:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func stopStatus(outcome types.RemoteStopOutcome) int {
	switch outcome {
	case types.StopSuccess:
		return http.StatusOK
	case types.StopUnknownEVSE:
		return http.StatusNotFound
	case types.StopInvalidSessionID:
		return http.StatusConflict
	case types.StopOutOfService, types.StopOffline:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
