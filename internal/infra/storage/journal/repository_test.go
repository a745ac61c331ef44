package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db), mock
}

func TestRecord(t *testing.T) {
	repo, mock := newMock(t)

	status := domain.StatusApproved
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	record := &domain.ActionRecord{
		BookingID:    "B1",
		DriverID:     "D1",
		Kind:         domain.ActionApprove,
		Outcome:      domain.OutcomeApplied,
		ResultStatus: &status,
		RequestID:    "6f1c1c2e-8d4a-4a43-9d43-0f2b8f0f6a11",
		StartedAt:    started,
		FinishedAt:   started.Add(300 * time.Millisecond),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO driver_actions")).
		WithArgs("B1", "D1", "approve", "applied", "APPROVED", nil, record.RequestID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repo.Record(context.Background(), record))
	assert.Equal(t, int64(42), record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Declined(t *testing.T) {
	repo, mock := newMock(t)

	msg := "Could not reject booking B1. Server error 409."
	record := &domain.ActionRecord{
		BookingID: "B1",
		DriverID:  "D1",
		Kind:      domain.ActionCancel,
		Outcome:   domain.OutcomeFailed,
		Message:   &msg,
		RequestID: "req-1",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO driver_actions")).
		WithArgs("B1", "D1", "cancel", "failed", nil, msg, "req-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.Record(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Errors(t *testing.T) {
	t.Run("invalid record", func(t *testing.T) {
		repo, _ := newMock(t)

		err := repo.Record(context.Background(), &domain.ActionRecord{BookingID: "B1"})
		assert.ErrorIs(t, err, ErrInvalidRecord)

		err = repo.Record(context.Background(), nil)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("insert fails", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO driver_actions")).
			WillReturnError(errors.New("connection reset"))

		err := repo.Record(context.Background(), &domain.ActionRecord{
			BookingID: "B1",
			Kind:      domain.ActionApprove,
			Outcome:   domain.OutcomeDeclined,
			RequestID: "req-2",
		})
		assert.ErrorIs(t, err, ErrExecQuery)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListRecent(t *testing.T) {
	repo, mock := newMock(t)

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow(int64(2), "B2", "D1", "cancel", "failed", nil, "Server error 409.", "req-2", started.Add(time.Minute), started.Add(time.Minute)).
		AddRow(int64(1), "B1", "D1", "approve", "applied", "APPROVED", nil, "req-1", started, started.Add(time.Second))

	mock.ExpectQuery(regexp.QuoteMeta("FROM driver_actions WHERE driver_id = $1 ORDER BY started_at DESC, id DESC LIMIT 50")).
		WithArgs("D1").
		WillReturnRows(rows)

	records, err := repo.ListRecent(context.Background(), "D1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "B2", records[0].BookingID)
	assert.Equal(t, domain.ActionCancel, records[0].Kind)
	assert.Nil(t, records[0].ResultStatus)
	require.NotNil(t, records[0].Message)
	assert.Equal(t, "Server error 409.", *records[0].Message)

	assert.Equal(t, domain.OutcomeApplied, records[1].Outcome)
	require.NotNil(t, records[1].ResultStatus)
	assert.Equal(t, domain.StatusApproved, *records[1].ResultStatus)
	assert.Nil(t, records[1].Message)
	assert.Equal(t, time.Second, records[1].Duration())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByBooking_ClampsLimit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM driver_actions WHERE booking_id = $1 ORDER BY started_at DESC, id DESC LIMIT 500")).
		WithArgs("B1").
		WillReturnRows(sqlmock.NewRows(columns))

	records, err := repo.ListByBooking(context.Background(), "B1", 10000)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent_QueryError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM driver_actions")).
		WillReturnError(errors.New("relation does not exist"))

	_, err := repo.ListRecent(context.Background(), "D1", 10)
	assert.ErrorIs(t, err, ErrExecQuery)
}
