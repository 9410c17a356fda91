package authorizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargenet/internal/authorizer"
	"chargenet/internal/station"
	"chargenet/internal/types"
)

// The full session lifecycle: token provisioning, start authorization,
// physical start and stop on the EVSE, stop authorization, settlement.
// The two subsystems correlate only by the shared session id.
func TestFullChargingLifecycle(t *testing.T) {
	ctx := context.Background()

	engine := authorizer.NewEngine("DE*PRV", nil)
	st := station.NewChargingStation("S1", nil)
	_, err := st.CreateEVSE("E1")
	require.NoError(t, err)

	require.True(t, engine.AddToken("T1", types.VerdictAuthorized))

	authorized, err := engine.AuthorizeStart(ctx, authorizer.AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)
	require.Equal(t, types.AuthSuccess, authorized.Outcome)
	sid := authorized.SessionID

	started := st.RemoteStart(station.RemoteStartRequest{EVSEID: "E1", SessionID: sid, ProviderID: "DE*PRV"})
	require.Equal(t, types.StartSuccess, started.Outcome)
	assert.Equal(t, sid, started.SessionID)

	stopped := st.RemoteStop(station.RemoteStopRequest{EVSEID: "E1", SessionID: sid, ReservationHandling: types.ReservationClose})
	require.Equal(t, types.StopSuccess, stopped.Outcome)

	stopAuth, err := engine.AuthorizeStop(ctx, authorizer.AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "T1"})
	require.NoError(t, err)
	require.Equal(t, types.AuthSuccess, stopAuth.Outcome)

	now := time.Now().UTC()
	settled, err := engine.SendChargeDetailRecord(ctx, authorizer.ChargeDetailRecord{
		EVSEID:       "E1",
		SessionID:    sid,
		Token:        "T1",
		SessionStart: now.Add(-45 * time.Minute),
		SessionEnd:   now,
	})
	require.NoError(t, err)
	assert.Equal(t, types.CDRForwarded, settled.Outcome)

	evse, _ := st.EVSE("E1")
	assert.Equal(t, types.StatusAvailable, evse.Status())
	_, found := engine.Session(sid)
	assert.False(t, found)
}
