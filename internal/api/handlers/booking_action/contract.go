package booking_action

import (
	"context"

	"github.com/m04kA/SMC-DriverBookingSync/internal/service/executor"
)

type ActionExecutor interface {
	Approve(ctx context.Context, bookingID string, confirm executor.Confirmation) (*executor.Result, error)
	Reject(ctx context.Context, bookingID string, confirm executor.Confirmation) (*executor.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
