package remoteop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargenet/internal/station"
	"chargenet/internal/types"
)

func TestRemoteStartNoBackends(t *testing.T) {
	facade := NewFacade(nil)
	_, err := facade.RemoteStart(context.Background(), station.RemoteStartRequest{EVSEID: "E1"})
	assert.ErrorIs(t, err, ErrNoBackends)
}

func TestRemoteStartFirstDefinitiveWins(t *testing.T) {
	facade := NewFacade(nil)

	facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		return types.RemoteStartResult{Outcome: types.StartUnspecified}
	})
	facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		return types.RemoteStartResult{Outcome: types.StartSuccess, SessionID: "sid-from-second"}
	})
	facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		return types.RemoteStartResult{Outcome: types.StartAlreadyInUse}
	})

	result, err := facade.RemoteStart(context.Background(), station.RemoteStartRequest{EVSEID: "E1"})
	require.NoError(t, err)
	// Registration order breaks the tie between the two definitive answers.
	assert.Equal(t, types.StartSuccess, result.Outcome)
	assert.Equal(t, types.SessionID("sid-from-second"), result.SessionID)
}

func TestRemoteStartHandlersRunConcurrently(t *testing.T) {
	facade := NewFacade(nil)

	release := make(chan struct{})
	var entered sync.WaitGroup
	entered.Add(2)

	slow := func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		entered.Done()
		<-release
		return types.RemoteStartResult{Outcome: types.StartUnspecified}
	}
	facade.SubscribeEVSEStart(slow)
	facade.SubscribeEVSEStart(slow)

	// Both handlers must be in flight at once; a sequential dispatcher
	// would deadlock here.
	go func() {
		entered.Wait()
		close(release)
	}()

	done := make(chan struct{})
	go func() {
		facade.RemoteStart(context.Background(), station.RemoteStartRequest{EVSEID: "E1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run concurrently")
	}
}

func TestRemoteStartAllUnspecified(t *testing.T) {
	facade := NewFacade(nil)
	facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		return types.RemoteStartResult{Outcome: types.StartUnspecified}
	})

	result, err := facade.RemoteStart(context.Background(), station.RemoteStartRequest{EVSEID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, types.StartError, result.Outcome)
}

func TestUnsubscribe(t *testing.T) {
	facade := NewFacade(nil)
	unsubscribe := facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		return types.RemoteStartResult{Outcome: types.StartSuccess}
	})
	unsubscribe()

	_, err := facade.RemoteStart(context.Background(), station.RemoteStartRequest{EVSEID: "E1"})
	assert.ErrorIs(t, err, ErrNoBackends)
}

func TestStationStartFanOut(t *testing.T) {
	facade := NewFacade(nil)
	facade.SubscribeStationStart(func(ctx context.Context, stationID types.StationID, req station.RemoteStartRequest) types.RemoteStartResult {
		if stationID == "S1" {
			return types.RemoteStartResult{Outcome: types.StartOutOfService}
		}
		return types.RemoteStartResult{Outcome: types.StartUnspecified}
	})

	result, err := facade.RemoteStartStation(context.Background(), "S1", station.RemoteStartRequest{})
	require.NoError(t, err)
	assert.Equal(t, types.StartOutOfService, result.Outcome)
}

func TestRemoteStopUnimplemented(t *testing.T) {
	facade := NewFacade(nil)
	_, err := facade.RemoteStop(context.Background(), station.RemoteStopRequest{EVSEID: "E1", SessionID: "sid"})
	assert.ErrorIs(t, err, ErrNotImplemented)
}
