package refresh_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
)

const (
	msgPollerStopped = "booking sync is not running"
)

type Handler struct {
	refresher Refresher
	logger    Logger
}

func NewHandler(refresher Refresher, logger Logger) *Handler {
	return &Handler{
		refresher: refresher,
		logger:    logger,
	}
}

// Handle POST /api/v1/bookings/refresh
// Запрос не ждёт завершения опроса: результат появится в GET /bookings.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	status := h.refresher.Status()
	if !status.Running {
		h.logger.Warn("POST /bookings/refresh - Poller is stopped")
		handlers.RespondServiceUnavailable(w, msgPollerStopped)
		return
	}

	h.refresher.RefreshNow()

	h.logger.Info("POST /bookings/refresh - Refresh requested, coalesced=%t", status.InFlight)
	handlers.RespondJSON(w, http.StatusAccepted, &RefreshResponse{
		Accepted:  true,
		Coalesced: status.InFlight,
	})
}
