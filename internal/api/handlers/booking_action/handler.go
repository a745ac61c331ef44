package booking_action

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
	"github.com/m04kA/SMC-DriverBookingSync/internal/integrations/backend"
	"github.com/m04kA/SMC-DriverBookingSync/internal/service/executor"
)

const (
	msgInvalidBookingID   = "invalid booking id"
	msgInvalidRequestBody = "invalid request body"
	msgMissingConfirmed   = "confirmed is required"
	msgNotFound           = "booking not found"
	msgNotActionable      = "booking is no longer awaiting your decision"
	msgInFlight           = "an action for this booking is already in progress"
)

type actionFunc func(ctx context.Context, bookingID string, confirm executor.Confirmation) (*executor.Result, error)

type Handler struct {
	executor ActionExecutor
	logger   Logger
}

func NewHandler(executor ActionExecutor, logger Logger) *Handler {
	return &Handler{
		executor: executor,
		logger:   logger,
	}
}

// Approve POST /api/v1/bookings/{bookingId}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "approve", h.executor.Approve)
}

// Reject POST /api/v1/bookings/{bookingId}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "reject", h.executor.Reject)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, action actionFunc) {
	bookingID := mux.Vars(r)["bookingId"]
	if bookingID == "" {
		h.logger.Warn("POST /bookings/{id}/%s - Empty booking ID", route)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req ActionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Confirmed == nil {
		h.logger.Warn("POST /bookings/{id}/%s - Missing confirmed flag: booking_id=%s", route, bookingID)
		handlers.RespondBadRequest(w, msgMissingConfirmed)
		return
	}

	result, err := action(r.Context(), bookingID, executor.ConfirmWith(*req.Confirmed))
	if err != nil {
		h.respondError(w, route, bookingID, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/%s - Finished: booking_id=%s, outcome=%s, status=%s",
		route, bookingID, result.Outcome, result.Status)
	handlers.RespondJSON(w, http.StatusOK, newActionResponse(result))
}

func (h *Handler) respondError(w http.ResponseWriter, route, bookingID string, err error) {
	var actionErr *executor.ActionError

	switch {
	case errors.Is(err, executor.ErrInvalidInput):
		h.logger.Warn("POST /bookings/{id}/%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)

	case errors.Is(err, executor.ErrBookingNotFound):
		h.logger.Warn("POST /bookings/{id}/%s - Booking not found: booking_id=%s", route, bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, executor.ErrNotActionable):
		h.logger.Warn("POST /bookings/{id}/%s - Not actionable: booking_id=%s", route, bookingID)
		handlers.RespondConflict(w, msgNotActionable)

	case errors.Is(err, executor.ErrActionInFlight):
		h.logger.Warn("POST /bookings/{id}/%s - Action in flight: booking_id=%s", route, bookingID)
		handlers.RespondConflict(w, msgInFlight)

	case errors.As(err, &actionErr):
		h.logger.Warn("POST /bookings/{id}/%s - Backend failure: booking_id=%s, error=%v", route, bookingID, err)
		if errors.Is(err, backend.ErrTimeout) {
			handlers.RespondError(w, http.StatusGatewayTimeout, actionErr.Message)
			return
		}
		handlers.RespondBadGateway(w, actionErr.Message)

	default:
		h.logger.Error("POST /bookings/{id}/%s - Unexpected error: booking_id=%s, error=%v", route, bookingID, err)
		handlers.RespondInternalError(w)
	}
}
