package get_notifications

import (
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/service/notifications"
)

type NotificationFeed interface {
	Recent() []notifications.Notification
	Since(t time.Time) []notifications.Notification
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}
