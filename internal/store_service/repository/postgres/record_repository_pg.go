package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/store_service/domain"
)

// PgxIface is the slice of pgxpool.Pool this repository uses; pgxmock satisfies
// it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgRecordRepository persists delivery records in the sms_records table. The
// table carries a unique constraint on event_id; that constraint, not this code,
// is what makes the upsert idempotent under concurrent re-delivery.
type PgRecordRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgRecordRepository(db PgxIface, logger *slog.Logger) *PgRecordRepository {
	return &PgRecordRepository{db: db, logger: logger.With("component", "record_repository_pg")}
}

var _ domain.RecordRepository = (*PgRecordRepository)(nil)

func (r *PgRecordRepository) Upsert(ctx context.Context, rec domain.Record) (bool, error) {
	query := `
		INSERT INTO sms_records (event_id, recipient, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, rec.EventID, rec.Recipient, rec.Body, string(rec.Status), rec.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert record", "error", err, "event_id", rec.EventID)
		return false, fmt.Errorf("upserting record %s: %w", rec.EventID, err)
	}

	inserted := tag.RowsAffected() == 1
	if !inserted {
		r.logger.DebugContext(ctx, "Record already exists, upsert was a no-op", "event_id", rec.EventID)
	}
	return inserted, nil
}

func (r *PgRecordRepository) ListByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Record, error) {
	query := `
		SELECT id, event_id, recipient, body, status, created_at
		FROM sms_records
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, recipient, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query records by recipient", "error", err, "recipient", recipient)
		return nil, fmt.Errorf("listing records for %s: %w", recipient, err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var rec domain.Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Recipient, &rec.Body, &status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		rec.Status = coredomain.DeliveryStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}
	return records, nil
}
