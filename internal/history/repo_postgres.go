package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRepo persists historical records in Postgres via database/sql
// (pgx stdlib driver).
//
// The table is insert-only; there are deliberately no UPDATE or DELETE
// statements in this file.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// Schema is the reference DDL for the call_history table.
const Schema = `
CREATE TABLE IF NOT EXISTS call_history (
    call_id          TEXT PRIMARY KEY,
    campaign_id      TEXT NOT NULL DEFAULT '',
    destination      TEXT NOT NULL,
    role             TEXT NOT NULL,
    amd_result       TEXT NOT NULL DEFAULT '',
    hangup_cause     TEXT NOT NULL DEFAULT '',
    final_state      TEXT NOT NULL,
    duration_seconds INT  NOT NULL DEFAULT 0,
    transcript       TEXT NOT NULL DEFAULT '',
    dialed_at        TIMESTAMPTZ NOT NULL,
    answered_at      TIMESTAMPTZ,
    terminated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_call_history_campaign ON call_history (campaign_id, terminated_at);
`

// EnsureSchema creates the table when it does not exist yet.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Append(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO call_history
    (call_id, campaign_id, destination, role, amd_result, hangup_cause,
     final_state, duration_seconds, transcript, dialed_at, answered_at, terminated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (call_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		rec.CallID,
		rec.CampaignID,
		rec.Destination,
		rec.Role,
		rec.AMDResult,
		rec.HangupCause,
		rec.FinalState,
		rec.DurationSeconds,
		rec.Transcript,
		rec.DialedAt,
		rec.AnsweredAt,
		rec.TerminatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: append %s: %w", rec.CallID, err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, campaignID string, from, to time.Time) ([]Record, error) {
	const q = `
SELECT call_id, campaign_id, destination, role, amd_result, hangup_cause,
       final_state, duration_seconds, transcript, dialed_at, answered_at, terminated_at
FROM call_history
WHERE ($1 = '' OR campaign_id = $1)
  AND terminated_at >= $2
  AND terminated_at < $3
ORDER BY terminated_at`
	rows, err := r.db.QueryContext(ctx, q, campaignID, from, to)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var answered sql.NullTime
		if err := rows.Scan(
			&rec.CallID,
			&rec.CampaignID,
			&rec.Destination,
			&rec.Role,
			&rec.AMDResult,
			&rec.HangupCause,
			&rec.FinalState,
			&rec.DurationSeconds,
			&rec.Transcript,
			&rec.DialedAt,
			&answered,
			&rec.TerminatedAt,
		); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if answered.Valid {
			t := answered.Time
			rec.AnsweredAt = &t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
