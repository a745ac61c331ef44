package domain

// BookingStatus represents the status of a ride booking
type BookingStatus string

const (
	StatusBooked    BookingStatus = "BOOKED"
	StatusApproved  BookingStatus = "APPROVED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusBooked, StatusApproved, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition is allowed from the status
func (s BookingStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusCancelled
}

// CanTransitionTo returns true if the status may move to next.
// Only BOOKED -> APPROVED and BOOKED -> CANCELLED are allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == StatusBooked && next.IsTerminal()
}

// Booking represents a ride booking visible to the signed-in driver
type Booking struct {
	ID     string
	Status BookingStatus

	// Trip
	PickupLocation string
	Destination    string
	PickupDate     string
	PickupTime     string
	Notes          *string

	// Party
	RiderMobile string
	RiderName   *string
	Vehicle     *string // make/model

	// Commercial
	TotalPayment  float64
	PaymentMethod string
}

// IsActionable returns true if the driver may still approve or reject the booking
func (b *Booking) IsActionable() bool {
	return b.Status == StatusBooked
}

// BookingPatch partial booking applied over an existing record.
// nil fields are left untouched.
type BookingPatch struct {
	Status         *BookingStatus
	PickupLocation *string
	Destination    *string
	PickupDate     *string
	PickupTime     *string
	Notes          *string
	RiderMobile    *string
	RiderName      *string
	Vehicle        *string
	TotalPayment   *float64
	PaymentMethod  *string
}

// Apply returns a copy of b with the non-nil patch fields merged over it
func (p BookingPatch) Apply(b Booking) Booking {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PickupLocation != nil {
		b.PickupLocation = *p.PickupLocation
	}
	if p.Destination != nil {
		b.Destination = *p.Destination
	}
	if p.PickupDate != nil {
		b.PickupDate = *p.PickupDate
	}
	if p.PickupTime != nil {
		b.PickupTime = *p.PickupTime
	}
	if p.Notes != nil {
		b.Notes = p.Notes
	}
	if p.RiderMobile != nil {
		b.RiderMobile = *p.RiderMobile
	}
	if p.RiderName != nil {
		b.RiderName = p.RiderName
	}
	if p.Vehicle != nil {
		b.Vehicle = p.Vehicle
	}
	if p.TotalPayment != nil {
		b.TotalPayment = *p.TotalPayment
	}
	if p.PaymentMethod != nil {
		b.PaymentMethod = *p.PaymentMethod
	}
	return b
}
