package repository

import (
	"context"
	"database/sql"

	"chargenet/internal/authorizer"
)

// CDRRepository persists forwarded charge detail records for billing.
type CDRRepository struct {
	db *sql.DB
}

// NewCDRRepository returns the repository.
func NewCDRRepository(db *sql.DB) *CDRRepository {
	return &CDRRepository{db: db}
}

// Forward inserts a settled record. Re-settlement of the same session id
// is rejected by the unique constraint upstream of billing.
func (r *CDRRepository) Forward(ctx context.Context, cdr authorizer.ChargeDetailRecord) error {
	const query = `
		INSERT INTO charge_detail_records
			(session_id, evse_id, product_id, token, session_start, session_end,
			 meter_start, meter_end, consumed_energy_kwh, metering_signature,
			 hub_operator_id, hub_provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		cdr.SessionID.String(),
		cdr.EVSEID.String(),
		cdr.ProductID.String(),
		cdr.Token.String(),
		cdr.SessionStart,
		cdr.SessionEnd,
		cdr.MeterValueStart,
		cdr.MeterValueEnd,
		cdr.ConsumedEnergy,
		cdr.MeteringSignature,
		cdr.HubOperatorID.String(),
		cdr.HubProviderID.String(),
	)
	return err
}

// Recent returns the last N settled records, newest first.
func (r *CDRRepository) Recent(ctx context.Context, limit int) ([]StoredCDR, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT session_id, evse_id, product_id, token, session_start, session_end, created_at
		FROM charge_detail_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []StoredCDR
	for rows.Next() {
		var rec StoredCDR
		if err := rows.Scan(
			&rec.SessionID,
			&rec.EVSEID,
			&rec.ProductID,
			&rec.Token,
			&rec.SessionStart,
			&rec.SessionEnd,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
