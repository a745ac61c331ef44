package get_action_history

import (
	"context"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

type ActionJournal interface {
	ListRecent(ctx context.Context, driverID string, limit int) ([]*domain.ActionRecord, error)
	ListByBooking(ctx context.Context, bookingID string, limit int) ([]*domain.ActionRecord, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
