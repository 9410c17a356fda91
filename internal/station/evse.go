package station

import (
	"sync"

	"github.com/google/uuid"

	"chargenet/internal/types"
)

// idGenerator produces session identifiers; swappable in tests.
var idGenerator = func() types.SessionID {
	return types.SessionID(uuid.NewString())
}

// RemoteStartRequest carries the parameters of a remote start.
type RemoteStartRequest struct {
	EVSEID        types.EVSEID
	ProductID     types.ProductID
	ReservationID types.ReservationID
	SessionID     types.SessionID
	ProviderID    types.ProviderID
	AccountID     types.AccountID
}

// RemoteStopRequest carries the parameters of a remote stop.
type RemoteStopRequest struct {
	EVSEID              types.EVSEID
	SessionID           types.SessionID
	ReservationHandling types.ReservationHandling
	ProviderID          types.ProviderID
}

// EVSE is one charge point. It owns its status, the active session id
// and the active reservation, and serializes all mutation behind its
// own mutex so concurrent requests against the same EVSE never observe
// a torn state. EVSEs on the same station do not share a lock.
//
// Invariant: a session id is recorded iff status is Charging, and a
// reservation is recorded iff status is Reserved.
type EVSE struct {
	id types.EVSEID

	mu          sync.Mutex
	status      types.EVSEStatus
	sessionID   types.SessionID
	reservation *types.Reservation
}

// NewEVSE returns an EVSE in the Available state.
func NewEVSE(id types.EVSEID) *EVSE {
	return &EVSE{id: id, status: types.StatusAvailable}
}

// ID returns the EVSE identifier.
func (e *EVSE) ID() types.EVSEID {
	return e.id
}

// Status returns the current state.
func (e *EVSE) Status() types.EVSEStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SessionID returns the active session id, empty unless Charging.
func (e *EVSE) SessionID() types.SessionID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// ReservationID returns the active reservation id, empty unless Reserved.
func (e *EVSE) ReservationID() types.ReservationID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reservation == nil {
		return ""
	}
	return e.reservation.ID
}

// Reservation returns a copy of the active reservation, if any.
func (e *EVSE) Reservation() (types.Reservation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reservation == nil {
		return types.Reservation{}, false
	}
	return *e.reservation, true
}

// Reserve places a hold on the EVSE if it is Available.
func (e *EVSE) Reserve(res types.Reservation) types.ReservationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case types.StatusAvailable:
		res.EVSEID = e.id
		e.reservation = &res
		e.status = types.StatusReserved
		return types.ReservationResult{Outcome: types.ReserveSuccess, Reservation: &res}
	case types.StatusReserved:
		return types.ReservationResult{Outcome: types.ReserveAlreadyReserved}
	case types.StatusCharging:
		return types.ReservationResult{Outcome: types.ReserveAlreadyInUse}
	case types.StatusOutOfService:
		return types.ReservationResult{Outcome: types.ReserveOutOfService}
	default:
		return types.ReservationResult{Outcome: types.ReserveError, Reason: "unexpected EVSE state"}
	}
}

// RemoteStart starts a charging session. On an Available EVSE it always
// succeeds; on a Reserved EVSE only when the request presents the
// reservation on file. A second start while Charging is rejected and
// leaves the running session untouched.
func (e *EVSE) RemoteStart(req RemoteStartRequest) types.RemoteStartResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case types.StatusAvailable:
		return e.beginSession(req.SessionID)
	case types.StatusReserved:
		if e.reservation != nil && req.ReservationID.IsSet() && e.reservation.ID == req.ReservationID {
			e.reservation = nil
			return e.beginSession(req.SessionID)
		}
		return types.RemoteStartResult{Outcome: types.StartReserved}
	case types.StatusCharging:
		return types.RemoteStartResult{Outcome: types.StartAlreadyInUse}
	case types.StatusOutOfService:
		return types.RemoteStartResult{Outcome: types.StartOutOfService}
	case types.StatusOffline:
		return types.RemoteStartResult{Outcome: types.StartOffline}
	default:
		return types.RemoteStartResult{Outcome: types.StartError, Reason: "unexpected EVSE state"}
	}
}

// beginSession transitions to Charging. Caller holds e.mu.
func (e *EVSE) beginSession(sessionID types.SessionID) types.RemoteStartResult {
	if !sessionID.IsSet() {
		sessionID = idGenerator()
	}
	e.sessionID = sessionID
	e.status = types.StatusCharging
	return types.RemoteStartResult{Outcome: types.StartSuccess, SessionID: sessionID}
}

// RemoteStop ends the session identified by the request. The
// reservation-handling flag is echoed back for the caller to apply.
func (e *EVSE) RemoteStop(req RemoteStopRequest) types.RemoteStopResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case types.StatusAvailable, types.StatusReserved:
		return types.RemoteStopResult{Outcome: types.StopInvalidSessionID}
	case types.StatusCharging:
		if e.sessionID != req.SessionID {
			return types.RemoteStopResult{Outcome: types.StopInvalidSessionID}
		}
		stopped := e.sessionID
		e.sessionID = ""
		e.status = types.StatusAvailable
		return types.RemoteStopResult{
			Outcome:             types.StopSuccess,
			SessionID:           stopped,
			ReservationHandling: req.ReservationHandling,
		}
	case types.StatusOutOfService:
		return types.RemoteStopResult{Outcome: types.StopOutOfService}
	case types.StatusOffline:
		return types.RemoteStopResult{Outcome: types.StopOffline}
	default:
		return types.RemoteStopResult{Outcome: types.StopError, Reason: "unexpected EVSE state"}
	}
}

// CancelReservation releases the hold identified by id. Returns false
// when no matching reservation is active.
func (e *EVSE) CancelReservation(id types.ReservationID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != types.StatusReserved || e.reservation == nil || e.reservation.ID != id {
		return false
	}
	e.reservation = nil
	e.status = types.StatusAvailable
	return true
}

// SetOnline brings the EVSE back from Offline. The state machine never
// flips these itself; the connectivity collaborator does.
func (e *EVSE) SetOnline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == types.StatusOffline {
		e.status = types.StatusAvailable
	}
}

// SetOffline marks the EVSE unreachable, dropping any session or
// reservation state.
func (e *EVSE) SetOffline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionID = ""
	e.reservation = nil
	e.status = types.StatusOffline
}

// SetOutOfService takes the EVSE out of rotation for maintenance.
func (e *EVSE) SetOutOfService() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionID = ""
	e.reservation = nil
	e.status = types.StatusOutOfService
}

// Snapshot is a point-in-time copy of EVSE state.
type Snapshot struct {
	ID            types.EVSEID        `json:"id"`
	Status        types.EVSEStatus    `json:"status"`
	SessionID     types.SessionID     `json:"session_id,omitempty"`
	ReservationID types.ReservationID `json:"reservation_id,omitempty"`
}

// Snapshot returns a consistent copy of the EVSE state.
func (e *EVSE) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{ID: e.id, Status: e.status, SessionID: e.sessionID}
	if e.reservation != nil {
		snap.ReservationID = e.reservation.ID
	}
	return snap
}
