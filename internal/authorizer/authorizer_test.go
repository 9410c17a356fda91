package authorizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargenet/internal/types"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine("DE*PRV", nil, opts...)
}

func validCDR(sessionID types.SessionID) ChargeDetailRecord {
	now := time.Now().UTC()
	return ChargeDetailRecord{
		EVSEID:       "E1",
		SessionID:    sessionID,
		SessionStart: now.Add(-30 * time.Minute),
		SessionEnd:   now,
	}
}

func TestAddTokenDuplicate(t *testing.T) {
	engine := newTestEngine()

	require.True(t, engine.AddToken("T1", types.VerdictAuthorized))
	require.False(t, engine.AddToken("T1", types.VerdictBlocked))

	// Stored verdict must not be overwritten by the rejected add.
	verdict, ok := engine.TokenVerdict("T1")
	require.True(t, ok)
	assert.Equal(t, types.VerdictAuthorized, verdict)
}

func TestAddTokenDefaultsToAuthorized(t *testing.T) {
	engine := newTestEngine()
	require.True(t, engine.AddToken("T1", ""))

	verdict, ok := engine.TokenVerdict("T1")
	require.True(t, ok)
	assert.Equal(t, types.VerdictAuthorized, verdict)
}

func TestRemoveToken(t *testing.T) {
	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)

	require.True(t, engine.RemoveToken("T1"))
	require.False(t, engine.RemoveToken("T1"))
}

func TestAuthorizeStartValidation(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{Token: "T1"})
	assert.ErrorIs(t, err, ErrOperatorRequired)

	_, err = engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1"})
	assert.ErrorIs(t, err, ErrTokenRequired)
}

func TestAuthorizeStartVerdicts(t *testing.T) {
	engine := newTestEngine()
	engine.AddToken("authorized", types.VerdictAuthorized)
	engine.AddToken("blocked", types.VerdictBlocked)
	engine.AddToken("denied", types.VerdictNotAuthorized)

	result, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthUnspecified, result.Outcome)
	assert.Equal(t, "unknown token", result.Reason)

	result, err = engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "blocked"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthError, result.Outcome)
	assert.Equal(t, "token is blocked", result.Reason)
	_, found := engine.Session(result.SessionID)
	assert.False(t, found, "blocked token must not create a session")

	result, err = engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "denied"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthUnspecified, result.Outcome)

	result, err = engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "authorized"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthSuccess, result.Outcome)
	assert.Equal(t, types.ProviderID("DE*PRV"), result.ProviderID)
	require.True(t, result.SessionID.IsSet())

	session, found := engine.Session(result.SessionID)
	require.True(t, found)
	assert.Equal(t, types.TokenID("authorized"), session.Token)
}

func TestAuthorizeStopOutcomes(t *testing.T) {
	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)
	engine.AddToken("T2", types.VerdictAuthorized)
	engine.AddToken("blocked", types.VerdictBlocked)
	engine.AddToken("denied", types.VerdictNotAuthorized)

	started, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)
	sid := started.SessionID

	_, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", Token: "T1"})
	assert.ErrorIs(t, err, ErrSessionRequired)

	result, err := engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthUnspecified, result.Outcome)

	result, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "T2"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthError, result.Outcome)
	assert.Equal(t, "invalid token for given session", result.Reason)

	result, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: "missing", Token: "T2"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthError, result.Outcome)
	assert.Equal(t, "invalid session identification", result.Reason)

	result, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "blocked"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthError, result.Outcome)
	assert.Equal(t, "token is blocked", result.Reason)

	result, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "denied"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthError, result.Outcome)
	assert.Empty(t, result.Reason)

	result, err = engine.AuthorizeStop(context.Background(), AuthorizeStopRequest{OperatorID: "OP1", SessionID: sid, Token: "T1"})
	require.NoError(t, err)
	assert.Equal(t, types.AuthSuccess, result.Outcome)

	// The session survives AuthorizeStop; only settlement removes it.
	_, found := engine.Session(sid)
	assert.True(t, found)
}

func TestSendChargeDetailRecordValidation(t *testing.T) {
	engine := newTestEngine()

	cdr := validCDR("sid")
	cdr.EVSEID = ""
	_, err := engine.SendChargeDetailRecord(context.Background(), cdr)
	assert.ErrorIs(t, err, ErrEVSERequired)

	cdr = validCDR("")
	_, err = engine.SendChargeDetailRecord(context.Background(), cdr)
	assert.ErrorIs(t, err, ErrSessionRequired)

	cdr = validCDR("sid")
	cdr.SessionEnd = time.Time{}
	_, err = engine.SendChargeDetailRecord(context.Background(), cdr)
	assert.ErrorIs(t, err, ErrTimestampRequired)
}

func TestSendChargeDetailRecordRemovesSessionOnce(t *testing.T) {
	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)

	started, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)

	result, err := engine.SendChargeDetailRecord(context.Background(), validCDR(started.SessionID))
	require.NoError(t, err)
	assert.Equal(t, types.CDRForwarded, result.Outcome)

	result, err = engine.SendChargeDetailRecord(context.Background(), validCDR(started.SessionID))
	require.NoError(t, err)
	assert.Equal(t, types.CDRInvalidSessionID, result.Outcome)
}

func TestSettlementIndependentOfAuthorizeStop(t *testing.T) {
	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)

	started, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)

	// Field connectivity loss: no AuthorizeStop ever arrives.
	result, err := engine.SendChargeDetailRecord(context.Background(), validCDR(started.SessionID))
	require.NoError(t, err)
	assert.Equal(t, types.CDRForwarded, result.Outcome)
}

type captureSink struct {
	mu   sync.Mutex
	cdrs []ChargeDetailRecord
}

func (s *captureSink) Forward(_ context.Context, cdr ChargeDetailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cdrs = append(s.cdrs, cdr)
	return nil
}

func TestCDRSinkReceivesForwardedRecords(t *testing.T) {
	sink := &captureSink{}
	engine := newTestEngine(WithCDRSink(sink))
	engine.AddToken("T1", types.VerdictAuthorized)

	started, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)

	_, err = engine.SendChargeDetailRecord(context.Background(), validCDR(started.SessionID))
	require.NoError(t, err)

	require.Len(t, sink.cdrs, 1)
	assert.Equal(t, started.SessionID, sink.cdrs[0].SessionID)
}

func TestConcurrentAuthorizeStartsProduceDistinctSessions(t *testing.T) {
	const workers = 64

	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)

	var wg sync.WaitGroup
	results := make([]types.AuthorizationResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[types.SessionID]struct{}, workers)
	for _, result := range results {
		require.Equal(t, types.AuthSuccess, result.Outcome)
		require.True(t, result.SessionID.IsSet())
		if _, dup := seen[result.SessionID]; dup {
			t.Fatalf("duplicate session id %s", result.SessionID)
		}
		seen[result.SessionID] = struct{}{}
	}
}

func TestConcurrentSettlementSingleWinner(t *testing.T) {
	const workers = 16

	engine := newTestEngine()
	engine.AddToken("T1", types.VerdictAuthorized)
	started, err := engine.AuthorizeStart(context.Background(), AuthorizeStartRequest{OperatorID: "OP1", Token: "T1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]types.CDRResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.SendChargeDetailRecord(context.Background(), validCDR(started.SessionID))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	forwarded := 0
	for _, result := range results {
		if result.Outcome == types.CDRForwarded {
			forwarded++
		}
	}
	assert.Equal(t, 1, forwarded, "exactly one settlement must win")
}
