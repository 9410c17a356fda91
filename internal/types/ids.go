package types

// Identifiers are operator-namespaced opaque strings. The empty value
// means "not set"; callers check presence with IsSet instead of
// comparing against "".

// StationID identifies a charging station.
type StationID string

// EVSEID identifies a single charge point.
type EVSEID string

// SessionID identifies a charging session.
type SessionID string

// ReservationID identifies a reservation.
type ReservationID string

// TokenID identifies an authentication token (e.g. RFID UID).
type TokenID string

// ProviderID identifies an e-mobility service provider.
type ProviderID string

// OperatorID identifies a charging-network operator.
type OperatorID string

// ProductID identifies a charging product / tariff.
type ProductID string

// AccountID identifies a customer account at a provider.
type AccountID string

func (id StationID) IsSet() bool     { return id != "" }
func (id EVSEID) IsSet() bool        { return id != "" }
func (id SessionID) IsSet() bool     { return id != "" }
func (id ReservationID) IsSet() bool { return id != "" }
func (id TokenID) IsSet() bool       { return id != "" }
func (id ProviderID) IsSet() bool    { return id != "" }
func (id OperatorID) IsSet() bool    { return id != "" }
func (id ProductID) IsSet() bool     { return id != "" }
func (id AccountID) IsSet() bool     { return id != "" }

func (id StationID) String() string     { return string(id) }
func (id EVSEID) String() string        { return string(id) }
func (id SessionID) String() string     { return string(id) }
func (id ReservationID) String() string { return string(id) }
func (id TokenID) String() string       { return string(id) }
func (id ProviderID) String() string    { return string(id) }
func (id OperatorID) String() string    { return string(id) }
func (id ProductID) String() string     { return string(id) }
func (id AccountID) String() string     { return string(id) }
