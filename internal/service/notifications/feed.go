package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level уровень уведомления
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification транзиентное уведомление для слоя представления (toast/banner)
type Notification struct {
	ID        string
	Level     Level
	BookingID string // пусто для уведомлений об опросе
	Message   string
	CreatedAt time.Time
}

// Feed ограниченная лента последних уведомлений
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	limit int
	now   func() time.Time
}

// NewFeed создает ленту, хранящую не более limit уведомлений
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 1
	}
	return &Feed{
		items: make([]Notification, 0, limit),
		limit: limit,
		now:   time.Now,
	}
}

func (f *Feed) Info(bookingID, message string) {
	f.push(LevelInfo, bookingID, message)
}

func (f *Feed) Success(bookingID, message string) {
	f.push(LevelSuccess, bookingID, message)
}

func (f *Feed) Failure(bookingID, message string) {
	f.push(LevelError, bookingID, message)
}

// Recent возвращает уведомления от новых к старым
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]Notification, len(f.items))
	for i, n := range f.items {
		result[len(f.items)-1-i] = n
	}
	return result
}

// Since возвращает уведомления, созданные строго после t, от новых к старым
func (f *Feed) Since(t time.Time) []Notification {
	all := f.Recent()
	for i, n := range all {
		if !n.CreatedAt.After(t) {
			return all[:i]
		}
	}
	return all
}

func (f *Feed) push(level Level, bookingID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.limit {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}

	f.items = append(f.items, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		BookingID: bookingID,
		Message:   message,
		CreatedAt: f.now(),
	})
}
