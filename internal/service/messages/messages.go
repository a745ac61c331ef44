package messages

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-DriverBookingSync/internal/integrations/backend"
)

const (
	MsgCheckConnection    = "Could not reach the server. Please check your connection and try again."
	MsgPermissionConflict = "The server refused this action. The booking may be assigned to another driver or you may not have permission to change it."
	MsgMalformedResponse  = "The server returned an unexpected response. Please try again."
	MsgServerFailure      = "The server could not complete the request. Please try again."
	MsgUnknown            = "Something went wrong. Please try again."
)

// ForError переводит ошибку backend клиента в сообщение для водителя
func ForError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrTimeout), errors.Is(err, backend.ErrTransportUnavailable):
		return MsgCheckConnection
	case errors.Is(err, backend.ErrMalformedResponse):
		return MsgMalformedResponse
	}

	var failure *backend.ServerFailureError
	if errors.As(err, &failure) {
		if failure.Message != "" {
			return failure.Message
		}
		return MsgServerFailure
	}

	var rejected *backend.ServerRejectedError
	if errors.As(err, &rejected) {
		if rejected.Code == http.StatusInternalServerError {
			return MsgPermissionConflict
		}
		if rejected.Message != "" {
			return rejected.Message
		}
		return fmt.Sprintf("Server error %d.", rejected.Code)
	}

	return MsgUnknown
}

// PollFailure сообщение об ошибке обновления списка бронирований
func PollFailure(err error) string {
	return "Failed to refresh bookings. " + ForError(err)
}

// ActionFailure сообщение об ошибке действия водителя над бронированием
func ActionFailure(verb, bookingID string, err error) string {
	return fmt.Sprintf("Could not %s booking %s. %s", verb, bookingID, ForError(err))
}

// ActionSuccess сообщение об успешном действии
func ActionSuccess(pastVerb, bookingID string) string {
	return fmt.Sprintf("Booking %s %s.", bookingID, pastVerb)
}
