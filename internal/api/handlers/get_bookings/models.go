package get_bookings

import (
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/poller"
)

// BookingResponse бронирование в ответе API
type BookingResponse struct {
	BookingID      string  `json:"bookingId"`
	Status         string  `json:"status"`
	PickupLocation string  `json:"pickupLocation"`
	Destination    string  `json:"destination"`
	PickupDate     string  `json:"pickupDate"`
	PickupTime     string  `json:"pickupTime"`
	Notes          *string `json:"notes,omitempty"`
	RiderMobile    string  `json:"riderMobile"`
	RiderName      *string `json:"riderName,omitempty"`
	Vehicle        *string `json:"vehicle,omitempty"`
	TotalPayment   float64 `json:"totalPayment"`
	PaymentMethod  string  `json:"paymentMethod"`
	Actionable     bool    `json:"actionable"`
	ActionInFlight bool    `json:"actionInFlight"`
}

// PollErrorResponse содержимое слота ошибки опроса
type PollErrorResponse struct {
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BookingsResponse снимок бронирований с состоянием синхронизации
type BookingsResponse struct {
	Bookings      []BookingResponse  `json:"bookings"`
	InFlight      []string           `json:"inFlight"`
	Polling       bool               `json:"polling"`
	Refreshing    bool               `json:"refreshing"`
	LastSuccessAt *time.Time         `json:"lastSuccessAt,omitempty"`
	LastError     *PollErrorResponse `json:"lastError,omitempty"`
}

func newBookingResponse(b domain.Booking, inFlight bool) BookingResponse {
	return BookingResponse{
		BookingID:      b.ID,
		Status:         string(b.Status),
		PickupLocation: b.PickupLocation,
		Destination:    b.Destination,
		PickupDate:     b.PickupDate,
		PickupTime:     b.PickupTime,
		Notes:          b.Notes,
		RiderMobile:    b.RiderMobile,
		RiderName:      b.RiderName,
		Vehicle:        b.Vehicle,
		TotalPayment:   b.TotalPayment,
		PaymentMethod:  b.PaymentMethod,
		Actionable:     b.IsActionable() && !inFlight,
		ActionInFlight: inFlight,
	}
}

func newBookingsResponse(bookings []domain.Booking, pending []domain.PendingAction, status poller.Status) *BookingsResponse {
	inFlight := make(map[string]struct{}, len(pending))
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		inFlight[p.BookingID] = struct{}{}
		ids = append(ids, p.BookingID)
	}

	resp := &BookingsResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		InFlight:   ids,
		Polling:    status.Running,
		Refreshing: status.InFlight,
	}
	for _, b := range bookings {
		_, busy := inFlight[b.ID]
		resp.Bookings = append(resp.Bookings, newBookingResponse(b, busy))
	}

	if !status.LastSuccess.IsZero() {
		ts := status.LastSuccess
		resp.LastSuccessAt = &ts
	}
	if status.LastError != nil {
		resp.LastError = &PollErrorResponse{
			Message:    status.LastError.Message,
			OccurredAt: status.LastError.OccurredAt,
		}
	}

	return resp
}
