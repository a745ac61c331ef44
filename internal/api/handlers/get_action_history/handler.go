package get_action_history

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

const (
	msgInvalidLimit = "limit must be a positive integer"
)

type Handler struct {
	journal  ActionJournal
	driverID string
	logger   Logger
}

func NewHandler(journal ActionJournal, driverID string, logger Logger) *Handler {
	return &Handler{
		journal:  journal,
		driverID: driverID,
		logger:   logger,
	}
}

// Handle GET /api/v1/actions?bookingId=...&limit=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.logger.Warn("GET /actions - Invalid limit: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		limit = v
	}

	bookingID := query.Get("bookingId")

	var (
		records []*domain.ActionRecord
		err     error
	)
	if bookingID != "" {
		records, err = h.journal.ListByBooking(r.Context(), bookingID, limit)
	} else {
		records, err = h.journal.ListRecent(r.Context(), h.driverID, limit)
	}
	if err != nil {
		h.logger.Error("GET /actions - Failed to read journal: booking_id=%q, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /actions - Journal returned: booking_id=%q, count=%d", bookingID, len(records))
	handlers.RespondJSON(w, http.StatusOK, newHistoryResponse(records))
}
