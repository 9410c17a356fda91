package station

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargenet/internal/types"
)

var (
	// ErrEVSEExists is returned when an EVSE id is already registered.
	ErrEVSEExists = errors.New("station: evse already exists")
	// ErrAdditionVetoed is returned when a hook rejects a new EVSE.
	ErrAdditionVetoed = errors.New("station: evse addition vetoed")
)

// AddHookContext is handed to hooks around an EVSE addition.
type AddHookContext struct {
	Timestamp time.Time
	StationID types.StationID
	EVSE      *EVSE
}

// AddHook observes EVSE additions. BeforeAdd runs before the EVSE is
// committed to the station and may veto it; AfterAdd runs after commit.
type AddHook interface {
	BeforeAdd(ctx AddHookContext) bool
	AfterAdd(ctx AddHookContext)
}

// ChargingStation groups EVSEs under one identifier and dispatches
// reserve/start/stop requests to the right one. Requests against
// different EVSEs never contend: the station lock only guards the map,
// each EVSE serializes its own mutation.
type ChargingStation struct {
	id     types.StationID
	logger *zap.Logger

	mu     sync.RWMutex
	evses  map[types.EVSEID]*EVSE
	status types.EVSEStatus
	hooks  []AddHook
}

// NewChargingStation builds an empty station.
func NewChargingStation(id types.StationID, logger *zap.Logger) *ChargingStation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChargingStation{
		id:     id,
		logger: logger,
		evses:  make(map[types.EVSEID]*EVSE),
		status: types.StatusAvailable,
	}
}

// ID returns the station identifier.
func (s *ChargingStation) ID() types.StationID {
	return s.id
}

// RegisterAddHook attaches an observer for EVSE additions.
func (s *ChargingStation) RegisterAddHook(hook AddHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// CreateEVSE registers a new EVSE, rejecting duplicates. Configurators
// run before hooks see the candidate. Any hook may veto the addition;
// accepted additions are announced to all hooks after commit.
func (s *ChargingStation) CreateEVSE(id types.EVSEID, configurators ...func(*EVSE)) (*EVSE, error) {
	evse := NewEVSE(id)
	for _, configure := range configurators {
		if configure != nil {
			configure(evse)
		}
	}

	hookCtx := AddHookContext{Timestamp: time.Now().UTC(), StationID: s.id, EVSE: evse}

	s.mu.Lock()
	if _, exists := s.evses[id]; exists {
		s.mu.Unlock()
		return nil, ErrEVSEExists
	}
	for _, hook := range s.hooks {
		if !hook.BeforeAdd(hookCtx) {
			s.mu.Unlock()
			return nil, ErrAdditionVetoed
		}
	}
	s.evses[id] = evse
	hooks := make([]AddHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook.AfterAdd(hookCtx)
	}

	s.logger.Info("evse added",
		zap.String("station_id", s.id.String()),
		zap.String("evse_id", id.String()))
	return evse, nil
}

// EVSE looks up a charge point by id.
func (s *ChargingStation) EVSE(id types.EVSEID) (*EVSE, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evse, ok := s.evses[id]
	return evse, ok
}

// Reserve dispatches a reservation request to the target EVSE.
func (s *ChargingStation) Reserve(evseID types.EVSEID, res types.Reservation) types.ReservationResult {
	evse, ok := s.EVSE(evseID)
	if !ok {
		return types.ReservationResult{Outcome: types.ReserveUnknownEVSE}
	}
	res.StationID = s.id
	return evse.Reserve(res)
}

// RemoteStart dispatches a start request to the target EVSE.
func (s *ChargingStation) RemoteStart(req RemoteStartRequest) types.RemoteStartResult {
	evse, ok := s.EVSE(req.EVSEID)
	if !ok {
		return types.RemoteStartResult{Outcome: types.StartUnknownEVSE}
	}
	result := evse.RemoteStart(req)
	if result.Outcome == types.StartSuccess {
		s.logger.Info("remote start accepted",
			zap.String("station_id", s.id.String()),
			zap.String("evse_id", req.EVSEID.String()),
			zap.String("session_id", result.SessionID.String()))
	}
	return result
}

// RemoteStop dispatches a stop request to the target EVSE.
func (s *ChargingStation) RemoteStop(req RemoteStopRequest) types.RemoteStopResult {
	evse, ok := s.EVSE(req.EVSEID)
	if !ok {
		return types.RemoteStopResult{Outcome: types.StopUnknownEVSE}
	}
	result := evse.RemoteStop(req)
	if result.Outcome == types.StopSuccess {
		s.logger.Info("remote stop accepted",
			zap.String("station_id", s.id.String()),
			zap.String("evse_id", req.EVSEID.String()),
			zap.String("session_id", result.SessionID.String()))
	}
	return result
}

// RemoteStartStation handles a start request addressed to the station
// with no target EVSE. Target selection is not wired up; the request is
// answered with a fixed OutOfService.
func (s *ChargingStation) RemoteStartStation(req RemoteStartRequest) types.RemoteStartResult {
	return types.RemoteStartResult{Outcome: types.StartOutOfService}
}

// SetOnline restores every Offline EVSE on the station. The aggregate
// status is informational only; request routing is per-EVSE.
func (s *ChargingStation) SetOnline() {
	s.mu.Lock()
	s.status = types.StatusAvailable
	s.mu.Unlock()
	for _, evse := range s.evseList() {
		evse.SetOnline()
	}
}

// SetOffline marks every EVSE on the station unreachable.
func (s *ChargingStation) SetOffline() {
	s.mu.Lock()
	s.status = types.StatusOffline
	s.mu.Unlock()
	for _, evse := range s.evseList() {
		evse.SetOffline()
	}
}

func (s *ChargingStation) evseList() []*EVSE {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*EVSE, 0, len(s.evses))
	for _, evse := range s.evses {
		list = append(list, evse)
	}
	return list
}

// StationSnapshot is a point-in-time copy of station state.
type StationSnapshot struct {
	ID     types.StationID  `json:"id"`
	Status types.EVSEStatus `json:"status"`
	EVSEs  []Snapshot       `json:"evses"`
}

// Snapshot returns a weakly-consistent copy of the station and its
// EVSEs; concurrent mutation may or may not be visible.
func (s *ChargingStation) Snapshot() StationSnapshot {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	evses := s.evseList()
	snap := StationSnapshot{ID: s.id, Status: status, EVSEs: make([]Snapshot, 0, len(evses))}
	for _, evse := range evses {
		snap.EVSEs = append(snap.EVSEs, evse.Snapshot())
	}
	return snap
}
