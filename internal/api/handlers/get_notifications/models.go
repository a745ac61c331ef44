package get_notifications

import (
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/service/notifications"
)

// NotificationResponse уведомление для toast/banner
type NotificationResponse struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	BookingID string    `json:"bookingId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func newNotificationsResponse(items []notifications.Notification) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		result = append(result, NotificationResponse{
			ID:        n.ID,
			Level:     string(n.Level),
			BookingID: n.BookingID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return result
}
