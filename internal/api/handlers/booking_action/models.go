package booking_action

import "github.com/m04kA/SMC-DriverBookingSync/internal/service/executor"

// ActionRequest HTTP request model.
// Confirmed отражает ответ водителя в диалоге подтверждения и обязателен.
type ActionRequest struct {
	Confirmed *bool `json:"confirmed"`
}

// ActionResponse результат действия водителя
type ActionResponse struct {
	BookingID string `json:"bookingId"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
}

func newActionResponse(res *executor.Result) *ActionResponse {
	return &ActionResponse{
		BookingID: res.BookingID,
		Action:    string(res.Kind),
		Outcome:   string(res.Outcome),
		Status:    string(res.Status),
		RequestID: res.RequestID,
	}
}
