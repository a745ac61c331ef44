package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/pkg/psqlbuilder"
)

const table = "driver_actions"

var columns = []string{
	"id",
	"booking_id",
	"driver_id",
	"kind",
	"outcome",
	"result_status",
	"message",
	"request_id",
	"started_at",
	"finished_at",
}

// Repository журнал решений водителя (append-only)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Record сохраняет завершённое действие водителя и заполняет record.ID
func (r *Repository) Record(ctx context.Context, record *domain.ActionRecord) error {
	if record == nil || record.BookingID == "" || record.RequestID == "" {
		return fmt.Errorf("%w: booking id and request id are required", ErrInvalidRecord)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"booking_id",
			"driver_id",
			"kind",
			"outcome",
			"result_status",
			"message",
			"request_id",
			"started_at",
			"finished_at",
		).
		Values(
			record.BookingID,
			record.DriverID,
			string(record.Kind),
			string(record.Outcome),
			nullableStatus(record.ResultStatus),
			nullableString(record.Message),
			record.RequestID,
			record.StartedAt,
			record.FinishedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Record - build insert query: %v", ErrBuildQuery, err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&record.ID); err != nil {
		return fmt.Errorf("%w: Record - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListRecent возвращает последние действия водителя, новые первыми
func (r *Repository) ListRecent(ctx context.Context, driverID string, limit int) ([]*domain.ActionRecord, error) {
	return r.list(ctx, "ListRecent", squirrel.Eq{"driver_id": driverID}, limit)
}

// ListByBooking возвращает историю действий по бронированию, новые первыми
func (r *Repository) ListByBooking(ctx context.Context, bookingID string, limit int) ([]*domain.ActionRecord, error) {
	return r.list(ctx, "ListByBooking", squirrel.Eq{"booking_id": bookingID}, limit)
}

func (r *Repository) list(ctx context.Context, op string, filter squirrel.Eq, limit int) ([]*domain.ActionRecord, error) {
	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(filter).
		OrderBy("started_at DESC", "id DESC").
		Limit(uint64(normalizeLimit(limit))).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	records := make([]*domain.ActionRecord, 0)
	for rows.Next() {
		var (
			record       domain.ActionRecord
			resultStatus sql.NullString
			message      sql.NullString
		)

		err := rows.Scan(
			&record.ID,
			&record.BookingID,
			&record.DriverID,
			&record.Kind,
			&record.Outcome,
			&resultStatus,
			&message,
			&record.RequestID,
			&record.StartedAt,
			&record.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan action: %v", ErrScanRow, op, err)
		}

		if resultStatus.Valid {
			status := domain.BookingStatus(resultStatus.String)
			record.ResultStatus = &status
		}
		if message.Valid {
			record.Message = &message.String
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - iterate rows: %v", ErrScanRow, op, err)
	}

	return records, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return domain.DefaultJournalListLimit
	}
	if limit > domain.MaxJournalListLimit {
		return domain.MaxJournalListLimit
	}
	return limit
}

func nullableStatus(s *domain.BookingStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
