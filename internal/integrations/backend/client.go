package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

const (
	headerRequestID = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// Paths шаблоны путей backend с плейсхолдерами {bookingId} и {driverId}
type Paths struct {
	Bookings string
	Approve  string
	Reject   string
}

// Client клиент для работы с REST backend маркетплейса
type Client struct {
	baseURL    string
	paths      Paths
	token      string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента backend.
// timeout используется как транспортный таймаут по умолчанию.
func NewClient(baseURL string, paths Paths, token string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchDriverBookings получает полный список бронирований, видимых водителю
func (c *Client) FetchDriverBookings(ctx context.Context, driverID string) ([]domain.Booking, error) {
	url := c.buildURL(c.paths.Bookings, "", driverID)

	resp, err := c.do(ctx, http.MethodGet, url, uuid.NewString())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejection(resp)
	}

	var body BookingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode bookings: %v", ErrMalformedResponse, err)
	}

	if body.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", ErrMalformedResponse)
	}
	if !*body.Success {
		return nil, &ServerFailureError{Message: body.Message}
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	bookings := make([]domain.Booking, 0, len(*body.Data))
	for i := range *body.Data {
		b, err := (*body.Data)[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: booking #%d has invalid id or status %q",
				ErrMalformedResponse, i, (*body.Data)[i].Status)
		}
		bookings = append(bookings, b)
	}

	return bookings, nil
}

// Approve подтверждает бронирование водителем
func (c *Client) Approve(ctx context.Context, bookingID, driverID, requestID string) (*ActionResponse, error) {
	return c.action(ctx, c.paths.Approve, bookingID, driverID, requestID)
}

// Reject отклоняет бронирование водителем
func (c *Client) Reject(ctx context.Context, bookingID, driverID, requestID string) (*ActionResponse, error) {
	return c.action(ctx, c.paths.Reject, bookingID, driverID, requestID)
}

func (c *Client) action(ctx context.Context, path, bookingID, driverID, requestID string) (*ActionResponse, error) {
	url := c.buildURL(path, bookingID, driverID)
	c.log.Debug("POST %s request_id=%s", url, requestID)

	resp, err := c.do(ctx, http.MethodPost, url, requestID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Продолжаем обработку
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrMalformedResponse, resp.StatusCode)
	default:
		return nil, rejection(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	var body ActionResponse
	if len(bytes.TrimSpace(raw)) == 0 {
		return &body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode action response: %v", ErrMalformedResponse, err)
	}

	return &body, nil
}

func (c *Client) do(ctx context.Context, method, url, requestID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	return resp, nil
}

func (c *Client) buildURL(path, bookingID, driverID string) string {
	r := strings.NewReplacer("{bookingId}", bookingID, "{driverId}", driverID)
	return c.baseURL + r.Replace(path)
}

// classifyTransport отделяет таймауты от прочих транспортных ошибок
func classifyTransport(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
}

func rejection(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = ""
	}

	return &ServerRejectedError{Code: resp.StatusCode, Message: body.Message}
}
