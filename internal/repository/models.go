package repository

import "time"

// StoredCDR is a settled charge detail record as persisted.
type StoredCDR struct {
	SessionID    string    `db:"session_id" json:"session_id"`
	EVSEID       string    `db:"evse_id" json:"evse_id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	Token        string    `db:"token" json:"token"`
	SessionStart time.Time `db:"session_start" json:"session_start"`
	SessionEnd   time.Time `db:"session_end" json:"session_end"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
