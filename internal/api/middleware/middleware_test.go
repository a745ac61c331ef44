package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (m *recordingMetrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := &recordingMetrics{}

	r := mux.NewRouter()
	r.Use(Metrics(m))
	r.HandleFunc("/api/v1/bookings/{bookingId}/approve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/B42/approve", nil))

	require.Len(t, m.obs, 1)
	assert.Equal(t, observation{
		method: http.MethodPost,
		route:  "/api/v1/bookings/{bookingId}/approve",
		status: http.StatusConflict,
	}, m.obs[0])
}

func TestRateLimiter_MemoryStore(t *testing.T) {
	rl, err := NewRateLimiter("2-M", "", "test_refresh", "D1")
	require.NoError(t, err)
	defer rl.Close()

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/refresh", nil))
		codes = append(codes, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_InvalidConfig(t *testing.T) {
	_, err := NewRateLimiter("six per minute", "", "test", "D1")
	assert.Error(t, err)

	_, err = NewRateLimiter("6-M", "not a url", "test", "D1")
	assert.Error(t, err)
}
