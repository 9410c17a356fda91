package types

import "time"

// ReservationRestrictions optionally narrows who may consume a
// reservation. Empty lists mean "no restriction". PINs are stored as
// bcrypt hashes, never in the clear.
type ReservationRestrictions struct {
	Tokens    []TokenID
	Accounts  []AccountID
	PINHashes []string
}

// Reservation is a time-windowed hold on an EVSE for one provider.
type Reservation struct {
	ID           ReservationID           `json:"id"`
	ProviderID   ProviderID              `json:"provider_id"`
	EVSEID       EVSEID                  `json:"evse_id"`
	StationID    StationID               `json:"station_id"`
	Start        time.Time               `json:"start"`
	Duration     time.Duration           `json:"duration"`
	Restrictions ReservationRestrictions `json:"-"`
}

// ExpiresAt returns the end of the reservation window.
func (r Reservation) ExpiresAt() time.Time {
	return r.Start.Add(r.Duration)
}

// Expired reports whether the window has passed at the given instant.
func (r Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt())
}

// AllowsToken reports whether the token may consume the reservation.
// An empty restriction list allows any token.
func (r Reservation) AllowsToken(token TokenID) bool {
	if len(r.Restrictions.Tokens) == 0 {
		return true
	}
	for _, t := range r.Restrictions.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// AllowsAccount reports whether the account may consume the reservation.
func (r Reservation) AllowsAccount(account AccountID) bool {
	if len(r.Restrictions.Accounts) == 0 {
		return true
	}
	for _, a := range r.Restrictions.Accounts {
		if a == account {
			return true
		}
	}
	return false
}
