package backend

import "github.com/m04kA/SMC-DriverBookingSync/internal/domain"

// Booking модель бронирования из backend
type Booking struct {
	BookingID      string  `json:"bookingId"`
	Status         string  `json:"status"`
	PickupLocation string  `json:"pickupLocation"`
	Destination    string  `json:"destination"`
	PickupDate     string  `json:"pickupDate"`
	PickupTime     string  `json:"pickupTime"`
	Notes          *string `json:"notes,omitempty"`
	RiderMobile    string  `json:"riderMobile"`
	RiderName      *string `json:"riderName,omitempty"`
	Vehicle        *string `json:"vehicle,omitempty"` // make/model
	TotalPayment   float64 `json:"totalPayment"`
	PaymentMethod  string  `json:"paymentMethod"`
}

// BookingsResponse ответ на GET списка бронирований водителя
type BookingsResponse struct {
	Success *bool      `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *[]Booking `json:"data"`
}

// ActionResponse ответ на approve/reject.
// Все поля кроме status опциональны.
type ActionResponse struct {
	Status         *string  `json:"status"`
	Message        string   `json:"message,omitempty"`
	PickupLocation *string  `json:"pickupLocation,omitempty"`
	Destination    *string  `json:"destination,omitempty"`
	PickupDate     *string  `json:"pickupDate,omitempty"`
	PickupTime     *string  `json:"pickupTime,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	RiderMobile    *string  `json:"riderMobile,omitempty"`
	RiderName      *string  `json:"riderName,omitempty"`
	Vehicle        *string  `json:"vehicle,omitempty"`
	TotalPayment   *float64 `json:"totalPayment,omitempty"`
	PaymentMethod  *string  `json:"paymentMethod,omitempty"`
}

// ErrorResponse модель ошибки от backend
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToDomain конвертирует модель backend в domain модель
func (b *Booking) ToDomain() (domain.Booking, error) {
	status := domain.BookingStatus(b.Status)
	if b.BookingID == "" || !status.IsValid() {
		return domain.Booking{}, ErrMalformedResponse
	}

	return domain.Booking{
		ID:             b.BookingID,
		Status:         status,
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
	}, nil
}

// ToPatch конвертирует ответ на действие в патч бронирования.
// status должен быть уже проверен вызывающей стороной.
func (r *ActionResponse) ToPatch(status domain.BookingStatus) domain.BookingPatch {
	return domain.BookingPatch{
		Status:         &status,
		PickupLocation: r.PickupLocation,
		Destination:    r.Destination,
		PickupDate:     r.PickupDate,
		PickupTime:     r.PickupTime,
		Notes:          r.Notes,
		RiderMobile:    r.RiderMobile,
		RiderName:      r.RiderName,
		Vehicle:        r.Vehicle,
		TotalPayment:   r.TotalPayment,
		PaymentMethod:  r.PaymentMethod,
	}
}
