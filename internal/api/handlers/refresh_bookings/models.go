package refresh_bookings

// RefreshResponse ответ на ручное обновление
type RefreshResponse struct {
	Accepted bool `json:"accepted"`
	// Coalesced true, если запрос объединён с уже выполняющимся опросом
	Coalesced bool `json:"coalesced"`
}
