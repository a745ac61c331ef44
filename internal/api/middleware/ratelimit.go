package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/m04kA/SMC-DriverBookingSync/internal/api/handlers"
)

const msgTooManyRefreshes = "too many refresh requests, please wait"

// RateLimiter ограничение частоты запросов одного водителя
type RateLimiter struct {
	middleware *stdlib.Middleware
	client     *redis.Client
}

// NewRateLimiter создаёт ограничитель с форматом ulule/limiter ("6-M", "10-S").
// При пустом redisURL счётчики хранятся в памяти процесса.
func NewRateLimiter(rate, redisURL, prefix, driverID string) (*RateLimiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	opts := limiter.StoreOptions{
		Prefix:          prefix,
		MaxRetry:        3,
		CleanUpInterval: parsed.Period,
	}

	var (
		store  limiter.Store
		client *redis.Client
	)
	if redisURL == "" {
		store = memorystore.NewStoreWithOptions(opts)
	} else {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client = redis.NewClient(redisOpts)

		store, err = redisstore.NewStoreWithOptions(client, opts)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
	}

	mw := stdlib.NewMiddleware(
		limiter.New(store, parsed),
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return driverID
		}),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			handlers.RespondTooManyRequests(w, msgTooManyRefreshes)
		}),
	)

	return &RateLimiter{middleware: mw, client: client}, nil
}

// Handler оборачивает обработчик ограничением частоты
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return l.middleware.Handler(next)
}

// Close закрывает соединение с Redis, если оно использовалось
func (l *RateLimiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
