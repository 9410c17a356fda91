package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargenet/internal/authorizer"
	"chargenet/internal/remoteop"
	"chargenet/internal/station"
	"chargenet/internal/types"
)

func newTestRouter(t *testing.T) (*chi.Mux, *station.Registry, *authorizer.Engine) {
	t.Helper()
	registry := station.NewRegistry(nil)
	engine := authorizer.NewEngine("DE*PRV", nil)
	facade := remoteop.NewFacade(nil)
	set := NewSet(registry, engine, facade, nil)

	r := chi.NewRouter()
	r.Post("/evses", set.CreateEVSE)
	r.Post("/evses/{evseID}/reserve", set.Reserve)
	r.Post("/remote/start", set.RemoteStart)
	r.Post("/remote/stop", set.RemoteStop)
	r.Post("/tokens", set.AddToken)
	r.Delete("/tokens/{uid}", set.RemoveToken)
	r.Get("/stations/{stationID}", set.StationSnapshot)
	r.Post("/authorize/start", set.AuthorizeStart)
	r.Post("/authorize/stop", set.AuthorizeStop)
	r.Post("/cdrs", set.SendCDR)
	return r, registry, engine
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEVSEEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/evses", map[string]string{"station_id": "S1", "evse_id": "E1"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/evses", map[string]string{"station_id": "S1", "evse_id": "E1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/evses", map[string]string{"station_id": "S1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoteStartEndpoint(t *testing.T) {
	router, registry, _ := newTestRouter(t)
	st := registry.Create("S1")
	_, err := st.CreateEVSE("E1")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/remote/start", map[string]string{
		"station_id": "S1", "evse_id": "E1", "provider_id": "DE*PRV",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.RemoteStartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.StartSuccess, result.Outcome)
	require.True(t, result.SessionID.IsSet())

	// Second start on the now-charging EVSE is rejected.
	rec = doJSON(t, router, http.MethodPost, "/remote/start", map[string]string{
		"station_id": "S1", "evse_id": "E1", "provider_id": "DE*PRV",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/remote/stop", map[string]string{
		"station_id": "S1", "evse_id": "E1", "session_id": result.SessionID.String(),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStationLevelRemoteStartEndpoint(t *testing.T) {
	router, registry, _ := newTestRouter(t)
	registry.Create("S1")

	rec := doJSON(t, router, http.MethodPost, "/remote/start", map[string]string{
		"station_id": "S1", "provider_id": "DE*PRV",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReserveEndpoint(t *testing.T) {
	router, registry, _ := newTestRouter(t)
	st := registry.Create("S1")
	_, err := st.CreateEVSE("E1")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/evses/E1/reserve", map[string]interface{}{
		"station_id": "S1", "provider_id": "DE*PRV", "duration_seconds": 900, "pins": []string{"4711"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ReservationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.ReserveSuccess, result.Outcome)

	evse, _ := st.EVSE("E1")
	assert.Equal(t, types.StatusReserved, evse.Status())

	res, ok := evse.Reservation()
	require.True(t, ok)
	require.Len(t, res.Restrictions.PINHashes, 1)
	assert.NotEqual(t, "4711", res.Restrictions.PINHashes[0])
}

func TestTokenEndpoints(t *testing.T) {
	router, _, engine := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/tokens", map[string]string{"uid": "T1", "verdict": "Authorized"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/tokens", map[string]string{"uid": "T1", "verdict": "Blocked"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	verdict, ok := engine.TokenVerdict("T1")
	require.True(t, ok)
	assert.Equal(t, types.VerdictAuthorized, verdict)

	rec = doJSON(t, router, http.MethodDelete, "/tokens/T1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/tokens/T1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoamingAuthorizeAndSettle(t *testing.T) {
	router, _, engine := newTestRouter(t)
	engine.AddToken("T1", types.VerdictAuthorized)

	rec := doJSON(t, router, http.MethodPost, "/authorize/start", map[string]string{
		"operator_id": "OP1", "uid": "T1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var started types.AuthorizationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.Equal(t, types.AuthSuccess, started.Outcome)

	rec = doJSON(t, router, http.MethodPost, "/authorize/stop", map[string]string{
		"operator_id": "OP1", "uid": "T1", "session_id": started.SessionID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	now := time.Now().UTC()
	cdr := map[string]interface{}{
		"evse_id":       "E1",
		"session_id":    started.SessionID.String(),
		"uid":           "T1",
		"session_start": now.Add(-time.Hour).Format(time.RFC3339),
		"session_end":   now.Format(time.RFC3339),
	}
	rec = doJSON(t, router, http.MethodPost, "/cdrs", cdr)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cdrs", cdr)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizeStartValidationError(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/authorize/start", map[string]string{"uid": "T1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
