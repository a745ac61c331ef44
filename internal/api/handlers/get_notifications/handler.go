package get_notifications

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
)

const (
	msgInvalidSince = "since must be an RFC3339 timestamp"
	msgInvalidLimit = "limit must be a positive integer"
)

type Handler struct {
	feed   NotificationFeed
	logger Logger
}

func NewHandler(feed NotificationFeed, logger Logger) *Handler {
	return &Handler{
		feed:   feed,
		logger: logger,
	}
}

// Handle GET /api/v1/notifications?since=...&limit=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items := h.feed.Recent()
	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.logger.Warn("GET /notifications - Invalid since: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSince)
			return
		}
		items = h.feed.Since(since)
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.logger.Warn("GET /notifications - Invalid limit: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		if limit < len(items) {
			items = items[:limit]
		}
	}

	h.logger.Info("GET /notifications - Returned %d notifications", len(items))
	handlers.RespondJSON(w, http.StatusOK, newNotificationsResponse(items))
}
