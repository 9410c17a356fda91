package types

// Domain rejections are delivered as typed results, not errors; callers
// branch on the outcome. Only validation failures and infrastructure
// faults travel as Go errors.

// ReservationOutcome classifies the result of a Reserve request.
type ReservationOutcome string

const (
	ReserveSuccess         ReservationOutcome = "Success"
	ReserveAlreadyReserved ReservationOutcome = "AlreadyReserved"
	ReserveAlreadyInUse    ReservationOutcome = "AlreadyInUse"
	ReserveOutOfService    ReservationOutcome = "OutOfService"
	ReserveUnknownEVSE     ReservationOutcome = "UnknownEVSE"
	ReserveError           ReservationOutcome = "Error"
)

// ReservationResult is the outcome of a Reserve request.
type ReservationResult struct {
	Outcome     ReservationOutcome `json:"outcome"`
	Reservation *Reservation       `json:"reservation,omitempty"`
	Reason      string             `json:"reason,omitempty"`
}

// RemoteStartOutcome classifies the result of a RemoteStart request.
type RemoteStartOutcome string

const (
	StartSuccess      RemoteStartOutcome = "Success"
	StartReserved     RemoteStartOutcome = "Reserved"
	StartAlreadyInUse RemoteStartOutcome = "AlreadyInUse"
	StartOutOfService RemoteStartOutcome = "OutOfService"
	StartOffline      RemoteStartOutcome = "Offline"
	StartUnknownEVSE  RemoteStartOutcome = "UnknownEVSE"
	StartUnspecified  RemoteStartOutcome = "Unspecified"
	StartError        RemoteStartOutcome = "Error"
)

// RemoteStartResult is the outcome of a RemoteStart request.
type RemoteStartResult struct {
	Outcome   RemoteStartOutcome `json:"outcome"`
	SessionID SessionID          `json:"session_id,omitempty"`
	Reason    string             `json:"reason,omitempty"`
}

// Definitive reports whether the result settles the request. Fan-out
// dispatch keeps polling other backends while results are Unspecified.
func (r RemoteStartResult) Definitive() bool {
	return r.Outcome != StartUnspecified && r.Outcome != ""
}

// RemoteStopOutcome classifies the result of a RemoteStop request.
type RemoteStopOutcome string

const (
	StopSuccess          RemoteStopOutcome = "Success"
	StopInvalidSessionID RemoteStopOutcome = "InvalidSessionId"
	StopOutOfService     RemoteStopOutcome = "OutOfService"
	StopOffline          RemoteStopOutcome = "Offline"
	StopUnknownEVSE      RemoteStopOutcome = "UnknownEVSE"
	StopError            RemoteStopOutcome = "Error"
)

// RemoteStopResult is the outcome of a RemoteStop request.
type RemoteStopResult struct {
	Outcome             RemoteStopOutcome   `json:"outcome"`
	SessionID           SessionID           `json:"session_id,omitempty"`
	ReservationHandling ReservationHandling `json:"reservation_handling,omitempty"`
	Reason              string              `json:"reason,omitempty"`
}

// AuthorizationOutcome classifies an authorization decision.
type AuthorizationOutcome string

const (
	AuthSuccess     AuthorizationOutcome = "Success"
	AuthError       AuthorizationOutcome = "Error"
	AuthUnspecified AuthorizationOutcome = "Unspecified"
)

// AuthorizationResult is the outcome of AuthorizeStart or AuthorizeStop.
type AuthorizationResult struct {
	Outcome    AuthorizationOutcome `json:"outcome"`
	SessionID  SessionID            `json:"session_id,omitempty"`
	ProviderID ProviderID           `json:"provider_id,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

// CDROutcome classifies the result of submitting a charge detail record.
type CDROutcome string

const (
	CDRForwarded        CDROutcome = "Forwarded"
	CDRInvalidSessionID CDROutcome = "InvalidSessionId"
)

// CDRResult is the outcome of SendChargeDetailRecord.
type CDRResult struct {
	Outcome CDROutcome `json:"outcome"`
	Reason  string     `json:"reason,omitempty"`
}
