package get_bookings

import (
	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/poller"
)

type BookingReader interface {
	Read() []domain.Booking
}

type PollState interface {
	Status() poller.Status
}

type ActionTracker interface {
	Pending() []domain.PendingAction
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
