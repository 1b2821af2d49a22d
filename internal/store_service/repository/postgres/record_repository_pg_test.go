package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredomain "github.com/ramG-reddy/sms-pipeline/internal/core_sms/domain"
	"github.com/ramG-reddy/sms-pipeline/internal/store_service/domain"
)

func newTestRepo(t *testing.T) (*PgRecordRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPgRecordRepository(mockPool, logger), mockPool
}

func sampleRecord() domain.Record {
	return domain.Record{
		EventID:   "5f8b7a1c-4a2d-4e9b-8c3f-1d2e3f4a5b6c",
		Recipient: "+14155552671",
		Body:      "hello",
		Status:    coredomain.StatusSuccess,
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestUpsert_InsertsNewRecord(t *testing.T) {
	repo, mockPool := newTestRepo(t)
	rec := sampleRecord()

	mockPool.ExpectExec("INSERT INTO sms_records").
		WithArgs(rec.EventID, rec.Recipient, rec.Body, string(rec.Status), rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := repo.Upsert(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUpsert_DuplicateEventIsNoOp(t *testing.T) {
	repo, mockPool := newTestRepo(t)
	rec := sampleRecord()

	mockPool.ExpectExec("INSERT INTO sms_records").
		WithArgs(rec.EventID, rec.Recipient, rec.Body, string(rec.Status), rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.Upsert(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, inserted, "a re-delivered event must not count as a new insert")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUpsert_ExecError(t *testing.T) {
	repo, mockPool := newTestRepo(t)
	rec := sampleRecord()

	dbErr := errors.New("connection refused")
	mockPool.ExpectExec("INSERT INTO sms_records").
		WithArgs(rec.EventID, rec.Recipient, rec.Body, string(rec.Status), rec.CreatedAt).
		WillReturnError(dbErr)

	_, err := repo.Upsert(context.Background(), rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListByRecipient_ReturnsRowsNewestFirst(t *testing.T) {
	repo, mockPool := newTestRepo(t)
	recipient := "+14155552671"
	newer := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := pgxmock.NewRows([]string{"id", "event_id", "recipient", "body", "status", "created_at"}).
		AddRow(int64(2), "aaaaaaaa-0000-0000-0000-000000000002", recipient, "second", "FAILED", newer).
		AddRow(int64(1), "aaaaaaaa-0000-0000-0000-000000000001", recipient, "first", "SUCCESS", older)

	mockPool.ExpectQuery(`SELECT (.+) FROM sms_records`).
		WithArgs(recipient, 100).
		WillReturnRows(rows)

	records, err := repo.ListByRecipient(context.Background(), recipient, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Body)
	assert.Equal(t, coredomain.StatusFailed, records[0].Status)
	assert.Equal(t, "first", records[1].Body)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListByRecipient_NoRowsYieldsEmptySlice(t *testing.T) {
	repo, mockPool := newTestRepo(t)
	recipient := "+19998887777"

	mockPool.ExpectQuery(`SELECT (.+) FROM sms_records`).
		WithArgs(recipient, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_id", "recipient", "body", "status", "created_at"}))

	records, err := repo.ListByRecipient(context.Background(), recipient, 100)
	require.NoError(t, err)
	assert.NotNil(t, records, "callers serialize this slice; it must be empty, never nil")
	assert.Empty(t, records)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListByRecipient_QueryError(t *testing.T) {
	repo, mockPool := newTestRepo(t)

	dbErr := errors.New("relation does not exist")
	mockPool.ExpectQuery(`SELECT (.+) FROM sms_records`).
		WithArgs("+14155552671", 100).
		WillReturnError(dbErr)

	_, err := repo.ListByRecipient(context.Background(), "+14155552671", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
