package refresh_bookings

import "github.com/m04kA/SMC-DriverBookingSync/internal/service/poller"

type Refresher interface {
	RefreshNow()
	Status() poller.Status
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}
