package handlers

import (
	"net/http"
	"time"

	"chargenet/internal/authorizer"
	"chargenet/internal/types"
)

type authorizeStartRequest struct {
	OperatorID       string `json:"operator_id" validate:"required"`
	UID              string `json:"uid" validate:"required"`
	EVSEID           string `json:"evse_id"`
	PartnerSessionID string `json:"partner_session_id"`
	ProductID        string `json:"product_id"`
}

// AuthorizeStart translates a roaming authorize-start into an engine
// call. Wire-format envelopes belong to the hub adapter, not here.
func (s *Set) AuthorizeStart(w http.ResponseWriter, r *http.Request) {
	var req authorizeStartRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.AuthorizeStart(r.Context(), authorizer.AuthorizeStartRequest{
		OperatorID:       types.OperatorID(req.OperatorID),
		Token:            types.TokenID(req.UID),
		EVSEID:           types.EVSEID(req.EVSEID),
		PartnerSessionID: types.SessionID(req.PartnerSessionID),
		ProductID:        types.ProductID(req.ProductID),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type authorizeStopRequest struct {
	OperatorID       string `json:"operator_id" validate:"required"`
	SessionID        string `json:"session_id" validate:"required"`
	UID              string `json:"uid" validate:"required"`
	EVSEID           string `json:"evse_id"`
	PartnerSessionID string `json:"partner_session_id"`
}

// AuthorizeStop translates a roaming authorize-stop into an engine call.
func (s *Set) AuthorizeStop(w http.ResponseWriter, r *http.Request) {
	var req authorizeStopRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.AuthorizeStop(r.Context(), authorizer.AuthorizeStopRequest{
		OperatorID:       types.OperatorID(req.OperatorID),
		SessionID:        types.SessionID(req.SessionID),
		Token:            types.TokenID(req.UID),
		EVSEID:           types.EVSEID(req.EVSEID),
		PartnerSessionID: types.SessionID(req.PartnerSessionID),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sendCDRRequest struct {
	EVSEID            string    `json:"evse_id" validate:"required"`
	SessionID         string    `json:"session_id" validate:"required"`
	ProductID         string    `json:"product_id"`
	SessionStart      time.Time `json:"session_start" validate:"required"`
	SessionEnd        time.Time `json:"session_end" validate:"required"`
	UID               string    `json:"uid"`
	MeterValueStart   *float64  `json:"meter_value_start"`
	MeterValueEnd     *float64  `json:"meter_value_end"`
	MeterValues       []float64 `json:"meter_values_in_between"`
	ConsumedEnergy    *float64  `json:"consumed_energy_kwh"`
	MeteringSignature string    `json:"metering_signature"`
	HubOperatorID     string    `json:"hub_operator_id"`
	HubProviderID     string    `json:"hub_provider_id"`
}

// SendCDR settles a session with a charge detail record.
func (s *Set) SendCDR(w http.ResponseWriter, r *http.Request) {
	var req sendCDRRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.SendChargeDetailRecord(r.Context(), authorizer.ChargeDetailRecord{
		EVSEID:               types.EVSEID(req.EVSEID),
		SessionID:            types.SessionID(req.SessionID),
		ProductID:            types.ProductID(req.ProductID),
		SessionStart:         req.SessionStart,
		SessionEnd:           req.SessionEnd,
		Token:                types.TokenID(req.UID),
		MeterValueStart:      req.MeterValueStart,
		MeterValueEnd:        req.MeterValueEnd,
		MeterValuesInBetween: req.MeterValues,
		ConsumedEnergy:       req.ConsumedEnergy,
		MeteringSignature:    req.MeteringSignature,
		HubOperatorID:        types.OperatorID(req.HubOperatorID),
		HubProviderID:        types.ProviderID(req.HubProviderID),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if result.Outcome == types.CDRInvalidSessionID {
		status = http.StatusNotFound
	}
	writeJSON(w, status, result)
}
