package types

// EVSEStatus is the state of a single charge point.
type EVSEStatus string

// EVSE states. Checks against these always evaluate in the order
// Available, Reserved, Charging, OutOfService, Offline so behavior stays
// deterministic if the states ever stop being mutually exclusive.
const (
	StatusAvailable    EVSEStatus = "Available"
	StatusReserved     EVSEStatus = "Reserved"
	StatusCharging     EVSEStatus = "Charging"
	StatusOutOfService EVSEStatus = "OutOfService"
	StatusOffline      EVSEStatus = "Offline"
)

// TokenVerdict is the stored authorization decision for a token.
type TokenVerdict string

const (
	VerdictAuthorized    TokenVerdict = "Authorized"
	VerdictNotAuthorized TokenVerdict = "NotAuthorized"
	VerdictBlocked       TokenVerdict = "Blocked"
)

// ReservationHandling tells RemoteStop what to do with a follow-up
// reservation. The station core passes it through untouched; applying
// the policy is the caller's concern.
type ReservationHandling string

const (
	ReservationClose ReservationHandling = "Close"
	ReservationKeep  ReservationHandling = "Keep"
)
