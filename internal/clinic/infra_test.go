package clinic

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepo(db)

	tests := []struct {
		name string
		inv  Invocation
		args []driver.Value
	}{
		{
			name: "success",
			inv:  Invocation{RequestID: "req-1", Action: "symptom-check", Status: 200, Latency: 1500 * time.Millisecond},
			args: []driver.Value{"req-1", "symptom-check", int64(200), nil, int64(1500)},
		},
		{
			name: "invalid action",
			inv:  Invocation{RequestID: "req-2", Status: 400, ErrorKind: "invalid_action"},
			args: []driver.Value{"req-2", "unknown", int64(400), "invalid_action", int64(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectExec("INSERT INTO ai_invocations").
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(1, 1))

			assert.NoError(t, repo.Record(context.Background(), tt.inv))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO ai_invocations").WillReturnError(errors.New("connection reset"))

	err = NewAuditRepo(db).Record(context.Background(), Invocation{RequestID: "r", Action: "risk-flag", Status: 500})
	assert.EqualError(t, err, "connection reset")
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ai_invocations").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNopAudit(t *testing.T) {
	assert.NoError(t, NopAudit{}.Record(context.Background(), Invocation{}))
}
