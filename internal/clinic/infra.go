package clinic

import (
	"context"
	"database/sql"
)

// Schema creates the audit table. It is safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS ai_invocations (
	id          BIGSERIAL PRIMARY KEY,
	request_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	status      INTEGER NOT NULL,
	error_kind  TEXT,
	latency_ms  BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type auditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) AuditRepo {
	return &auditRepo{db: db}
}

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func (r *auditRepo) Record(ctx context.Context, inv Invocation) error {
	action := inv.Action
	if action == "" {
		action = "unknown"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_invocations (request_id, action, status, error_kind, latency_ms)
		VALUES ($1, $2, $3, $4, $5)
	`,
		inv.RequestID,
		action,
		inv.Status,
		sql.NullString{String: inv.ErrorKind, Valid: inv.ErrorKind != ""},
		inv.Latency.Milliseconds(),
	)
	return err
}

// NopAudit discards records; used when no database is configured.
type NopAudit struct{}

func (NopAudit) Record(context.Context, Invocation) error { return nil }
