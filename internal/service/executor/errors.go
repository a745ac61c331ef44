package executor

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирования нет в текущем снимке
	ErrBookingNotFound = errors.New("executor: booking not found")

	// ErrNotActionable возвращается, когда бронирование не в статусе BOOKED
	ErrNotActionable = errors.New("executor: booking is not awaiting a decision")

	// ErrActionInFlight возвращается, когда по бронированию уже выполняется действие
	ErrActionInFlight = errors.New("executor: action already in flight for booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("executor: invalid input data")
)

// ActionError неуспешное действие водителя с сообщением для водителя.
// Err содержит классифицированную ошибку backend клиента.
type ActionError struct {
	BookingID string
	Kind      domain.ActionKind
	Message   string
	Err       error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("executor: %s booking %s failed: %v", e.Kind, e.BookingID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
