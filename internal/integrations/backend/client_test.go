package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/pkg/logger"
)

var testPaths = Paths{
	Bookings: "/api/driver/{driverId}/bookings",
	Approve:  "/api/bookings/{bookingId}/approve/{driverId}",
	Reject:   "/api/bookings/{bookingId}/reject/{driverId}",
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log, err := logger.NewWithWriter(io.Discard, "debug")
	require.NoError(t, err)

	return NewClient(srv.URL, testPaths, "session-token", 2*time.Second, log)
}

func TestFetchDriverBookings_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/driver/D1/bookings", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(headerRequestID))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"bookingId":"B1","status":"BOOKED","pickupLocation":"Airport","destination":"Center",
			 "pickupDate":"2026-10-20","pickupTime":"09:30","riderMobile":"+100","totalPayment":42.5,
			 "paymentMethod":"cash","vehicle":"Toyota Prius"}
		]}`))
	})

	bookings, err := client.FetchDriverBookings(context.Background(), "D1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	b := bookings[0]
	assert.Equal(t, "B1", b.ID)
	assert.Equal(t, domain.StatusBooked, b.Status)
	assert.Equal(t, 42.5, b.TotalPayment)
	require.NotNil(t, b.Vehicle)
	assert.Equal(t, "Toyota Prius", *b.Vehicle)
	assert.Nil(t, b.RiderName)
}

func TestFetchDriverBookings_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"success false", http.StatusOK, `{"success":false,"message":"driver suspended"}`, ErrServerFailure},
		{"success false without message", http.StatusOK, `{"success":false}`, ErrServerFailure},
		{"missing success", http.StatusOK, `{"data":[]}`, ErrMalformedResponse},
		{"missing data", http.StatusOK, `{"success":true}`, ErrMalformedResponse},
		{"invalid json", http.StatusOK, `<html>`, ErrMalformedResponse},
		{"unknown status", http.StatusOK, `{"success":true,"data":[{"bookingId":"B1","status":"PAID"}]}`, ErrMalformedResponse},
		{"missing id", http.StatusOK, `{"success":true,"data":[{"status":"BOOKED"}]}`, ErrMalformedResponse},
		{"server error", http.StatusBadGateway, `{"message":"upstream down"}`, ErrServerRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchDriverBookings(context.Background(), "D1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchDriverBookings_ServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"message":"not your bookings"}`))
	})

	_, err := client.FetchDriverBookings(context.Background(), "D1")

	var rejected *ServerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusForbidden, rejected.Code)
	assert.Equal(t, "not your bookings", rejected.Message)
}

func TestFetchDriverBookings_SuccessFalseOn200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	_, err := client.FetchDriverBookings(context.Background(), "D1")

	assert.ErrorIs(t, err, ErrServerFailure)
	assert.NotErrorIs(t, err, ErrServerRejected)

	var failure *ServerFailureError
	require.ErrorAs(t, err, &failure)
	assert.Empty(t, failure.Message)
}

func TestFetchDriverBookings_TransportUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	log, err := logger.NewWithWriter(io.Discard, "debug")
	require.NoError(t, err)
	client := NewClient(url, testPaths, "", time.Second, log)

	_, err = client.FetchDriverBookings(context.Background(), "D1")
	assert.ErrorIs(t, err, ErrTransportUnavailable)
}

func TestApprove_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings/B1/approve/D1", r.URL.Path)
		assert.Equal(t, "req-1", r.Header.Get(headerRequestID))

		_, _ = w.Write([]byte(`{"status":"APPROVED","notes":"on my way"}`))
	})

	resp, err := client.Approve(context.Background(), "B1", "D1", "req-1")
	require.NoError(t, err)
	require.NotNil(t, resp.Status)
	assert.Equal(t, "APPROVED", *resp.Status)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "on my way", *resp.Notes)
}

func TestReject_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/B1/reject/D1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Reject(context.Background(), "B1", "D1", "req-2")
	require.NoError(t, err)
	assert.Nil(t, resp.Status)
}

func TestAction_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCode int
	}{
		{"internal error", http.StatusInternalServerError, `{"message":"booking belongs to another driver"}`, ErrServerRejected, 500},
		{"not found", http.StatusNotFound, ``, ErrServerRejected, 404},
		{"created is not ok", http.StatusCreated, `{"status":"APPROVED"}`, ErrMalformedResponse, 0},
		{"broken json", http.StatusOK, `{"status":`, ErrMalformedResponse, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Approve(context.Background(), "B1", "D1", "req")
			assert.ErrorIs(t, err, tt.wantErr)

			code := 0
			var rejected *ServerRejectedError
			if errors.As(err, &rejected) {
				code = rejected.Code
			}
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestAction_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Approve(ctx, "B1", "D1", "req")
	assert.ErrorIs(t, err, ErrTimeout)
}
