package get_bookings

import (
	"net/http"
	"strings"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

const (
	msgInvalidStatus = "invalid status filter"
)

type Handler struct {
	store    BookingReader
	poller   PollState
	executor ActionTracker
	logger   Logger
}

func NewHandler(store BookingReader, poller PollState, executor ActionTracker, logger Logger) *Handler {
	return &Handler{
		store:    store,
		poller:   poller,
		executor: executor,
		logger:   logger,
	}
}

// Handle GET /api/v1/bookings
// Опциональный фильтр ?status=BOOKED не меняет порядок снимка.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var filter *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.BookingStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			h.logger.Warn("GET /bookings - Invalid status filter: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		filter = &status
	}

	bookings := h.store.Read()
	if filter != nil {
		filtered := bookings[:0]
		for _, b := range bookings {
			if b.Status == *filter {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}

	resp := newBookingsResponse(bookings, h.executor.Pending(), h.poller.Status())

	h.logger.Info("GET /bookings - Snapshot returned: count=%d, in_flight=%d, stale=%t",
		len(resp.Bookings), len(resp.InFlight), resp.LastError != nil)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
