package remoteop

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"chargenet/internal/station"
	"chargenet/internal/types"
)

var (
	// ErrNoBackends is returned when no remote backend is subscribed.
	ErrNoBackends = errors.New("remoteop: no remote backend configured")
	// ErrNotImplemented marks paths the facade does not support.
	ErrNotImplemented = errors.New("remoteop: not implemented")
)

// EVSEStartHandler answers a remote start aimed at a single EVSE.
type EVSEStartHandler func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult

// StationStartHandler answers a remote start aimed at a whole station.
type StationStartHandler func(ctx context.Context, stationID types.StationID, req station.RemoteStartRequest) types.RemoteStartResult

type evseEntry struct {
	id      int
	handler EVSEStartHandler
}

type stationEntry struct {
	id      int
	handler StationStartHandler
}

// Facade fans a remote start out to every subscribed backend and
// returns the first definitive answer. Backends run concurrently with
// identical arguments; when several answer definitively, registration
// order breaks the tie.
type Facade struct {
	logger *zap.Logger

	mu              sync.RWMutex
	nextID          int
	evseHandlers    []evseEntry
	stationHandlers []stationEntry
}

// NewFacade builds an empty dispatcher.
func NewFacade(logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{logger: logger}
}

// SubscribeEVSEStart registers a backend for EVSE-level remote starts.
// The returned function removes the subscription.
func (f *Facade) SubscribeEVSEStart(handler EVSEStartHandler) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.evseHandlers = append(f.evseHandlers, evseEntry{id: id, handler: handler})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, entry := range f.evseHandlers {
			if entry.id == id {
				f.evseHandlers = append(f.evseHandlers[:i], f.evseHandlers[i+1:]...)
				return
			}
		}
	}
}

// SubscribeStationStart registers a backend for station-level remote
// starts. The returned function removes the subscription.
func (f *Facade) SubscribeStationStart(handler StationStartHandler) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.stationHandlers = append(f.stationHandlers, stationEntry{id: id, handler: handler})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, entry := range f.stationHandlers {
			if entry.id == id {
				f.stationHandlers = append(f.stationHandlers[:i], f.stationHandlers[i+1:]...)
				return
			}
		}
	}
}

// RemoteStart fans the request out to every EVSE-level backend.
func (f *Facade) RemoteStart(ctx context.Context, req station.RemoteStartRequest) (types.RemoteStartResult, error) {
	f.mu.RLock()
	handlers := make([]EVSEStartHandler, len(f.evseHandlers))
	for i, entry := range f.evseHandlers {
		handlers[i] = entry.handler
	}
	f.mu.RUnlock()

	if len(handlers) == 0 {
		return types.RemoteStartResult{}, ErrNoBackends
	}

	results := make([]types.RemoteStartResult, len(handlers))
	var wg sync.WaitGroup
	for i, handler := range handlers {
		wg.Add(1)
		go func(i int, handler EVSEStartHandler) {
			defer wg.Done()
			results[i] = handler(ctx, req)
		}(i, handler)
	}
	wg.Wait()

	return f.pickDefinitive(results, req.EVSEID.String()), nil
}

// RemoteStartStation fans the request out to every station-level backend.
func (f *Facade) RemoteStartStation(ctx context.Context, stationID types.StationID, req station.RemoteStartRequest) (types.RemoteStartResult, error) {
	f.mu.RLock()
	handlers := make([]StationStartHandler, len(f.stationHandlers))
	for i, entry := range f.stationHandlers {
		handlers[i] = entry.handler
	}
	f.mu.RUnlock()

	if len(handlers) == 0 {
		return types.RemoteStartResult{}, ErrNoBackends
	}

	results := make([]types.RemoteStartResult, len(handlers))
	var wg sync.WaitGroup
	for i, handler := range handlers {
		wg.Add(1)
		go func(i int, handler StationStartHandler) {
			defer wg.Done()
			results[i] = handler(ctx, stationID, req)
		}(i, handler)
	}
	wg.Wait()

	return f.pickDefinitive(results, stationID.String()), nil
}

// RemoteStop is not supported through the facade; callers get a typed
// failure rather than a crash.
func (f *Facade) RemoteStop(ctx context.Context, req station.RemoteStopRequest) (types.RemoteStopResult, error) {
	return types.RemoteStopResult{}, ErrNotImplemented
}

// pickDefinitive returns the first non-Unspecified result in
// registration order, or an Error result when every backend abstained.
func (f *Facade) pickDefinitive(results []types.RemoteStartResult, target string) types.RemoteStartResult {
	for _, result := range results {
		if result.Definitive() {
			return result
		}
	}
	f.logger.Warn("all remote backends abstained", zap.String("target", target))
	return types.RemoteStartResult{Outcome: types.StartError, Reason: "no remote backend produced a definitive result"}
}
