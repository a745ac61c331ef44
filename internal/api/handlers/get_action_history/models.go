package get_action_history

import (
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

// ActionRecordResponse запись журнала действий водителя
type ActionRecordResponse struct {
	ID           int64     `json:"id"`
	BookingID    string    `json:"bookingId"`
	Action       string    `json:"action"`
	Outcome      string    `json:"outcome"`
	ResultStatus *string   `json:"resultStatus,omitempty"`
	Message      *string   `json:"message,omitempty"`
	RequestID    string    `json:"requestId"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMs   int64     `json:"durationMs"`
}

func newHistoryResponse(records []*domain.ActionRecord) []ActionRecordResponse {
	result := make([]ActionRecordResponse, 0, len(records))
	for _, r := range records {
		item := ActionRecordResponse{
			ID:         r.ID,
			BookingID:  r.BookingID,
			Action:     string(r.Kind),
			Outcome:    string(r.Outcome),
			Message:    r.Message,
			RequestID:  r.RequestID,
			StartedAt:  r.StartedAt,
			DurationMs: r.Duration().Milliseconds(),
		}
		if r.ResultStatus != nil {
			status := string(*r.ResultStatus)
			item.ResultStatus = &status
		}
		result = append(result, item)
	}
	return result
}
