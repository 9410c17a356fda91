package authorizer

import (
	"time"

	"chargenet/internal/types"
)

// ChargeDetailRecord summarizes a completed session for settlement.
// Meter fields are optional; nil means the station did not report them.
type ChargeDetailRecord struct {
	EVSEID               types.EVSEID
	SessionID            types.SessionID
	ProductID            types.ProductID
	SessionStart         time.Time
	SessionEnd           time.Time
	Token                types.TokenID
	MeterValueStart      *float64
	MeterValueEnd        *float64
	MeterValuesInBetween []float64
	ConsumedEnergy       *float64
	MeteringSignature    string
	HubOperatorID        types.OperatorID
	HubProviderID        types.ProviderID
}
