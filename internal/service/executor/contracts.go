package executor

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/internal/integrations/backend"
)

// BackendClient интерфейс клиента backend для действий водителя
type BackendClient interface {
	Approve(ctx context.Context, bookingID, driverID, requestID string) (*backend.ActionResponse, error)
	Reject(ctx context.Context, bookingID, driverID, requestID string) (*backend.ActionResponse, error)
}

// BookingStore интерфейс хранилища бронирований
type BookingStore interface {
	Get(bookingID string) (domain.Booking, bool)
	MergeAction(bookingID string, patch domain.BookingPatch) bool
}

// Refresher интерфейс принудительного обновления снимка
type Refresher interface {
	RefreshNow()
}

// Notifier интерфейс транзиентных уведомлений
type Notifier interface {
	Success(bookingID, message string)
	Failure(bookingID, message string)
}

// Journal интерфейс журнала действий водителя
type Journal interface {
	Record(ctx context.Context, record *domain.ActionRecord) error
}

// Metrics интерфейс метрик действий
type Metrics interface {
	ObserveAction(kind, outcome string, duration time.Duration)
	SetActionsInFlight(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopMetrics struct{}

func (nopMetrics) ObserveAction(string, string, time.Duration) {}
func (nopMetrics) SetActionsInFlight(int)                      {}
