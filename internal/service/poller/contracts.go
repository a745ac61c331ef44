package poller

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

// BookingFetcher интерфейс получения снимка бронирований водителя
type BookingFetcher interface {
	FetchDriverBookings(ctx context.Context, driverID string) ([]domain.Booking, error)
}

// BookingStore интерфейс хранилища, принимающего снимки целиком
type BookingStore interface {
	ApplyServerUpdate(snapshot []domain.Booking)
}

// Notifier интерфейс транзиентных уведомлений для слоя представления
type Notifier interface {
	Info(bookingID, message string)
	Failure(bookingID, message string)
}

// Metrics интерфейс метрик опроса
type Metrics interface {
	ObservePoll(result string, duration time.Duration)
	IncPollCoalesced(trigger string)
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopMetrics struct{}

func (nopMetrics) ObservePoll(string, time.Duration) {}
func (nopMetrics) IncPollCoalesced(string)           {}
