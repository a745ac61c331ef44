package store

import (
	"sync"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
)

// Store единственный источник правды о бронированиях водителя в текущей сессии.
// Изменяется только через ApplyServerUpdate и MergeAction.
type Store struct {
	mu       sync.RWMutex
	order    []string
	bookings map[string]domain.Booking

	// terminal хранит все бронирования, увиденные в терминальном статусе за сессию,
	// даже если они пропали из последующих снимков
	terminal map[string]domain.Booking

	subMu   sync.Mutex
	subs    map[int]chan []domain.Booking
	nextSub int

	snapshotSize SnapshotMetrics
	logger       Logger
}

// New создает пустое хранилище бронирований
func New(logger Logger) *Store {
	return &Store{
		bookings: make(map[string]domain.Booking),
		terminal: make(map[string]domain.Booking),
		subs:     make(map[int]chan []domain.Booking),
		logger:   logger,
	}
}

// WithSnapshotMetrics подключает gauge размера снимка
func (s *Store) WithSnapshotMetrics(m SnapshotMetrics) *Store {
	s.snapshotSize = m
	return s
}

// ApplyServerUpdate целиком заменяет набор бронирований снимком с сервера.
// Бронирования, уже бывшие терминальными в этой сессии, не меняются.
func (s *Store) ApplyServerUpdate(snapshot []domain.Booking) {
	order := make([]string, 0, len(snapshot))
	bookings := make(map[string]domain.Booking, len(snapshot))

	s.mu.Lock()
	for _, b := range snapshot {
		if _, dup := bookings[b.ID]; dup {
			s.logger.Warn("ApplyServerUpdate: duplicate booking id=%s in snapshot, keeping first", b.ID)
			continue
		}

		if prev, ok := s.terminal[b.ID]; ok {
			if prev.Status != b.Status {
				s.logger.Warn("ApplyServerUpdate: ignoring status %s for booking id=%s, already %s",
					b.Status, b.ID, prev.Status)
			}
			b = prev
		} else if b.Status.IsTerminal() {
			s.terminal[b.ID] = b
		}

		order = append(order, b.ID)
		bookings[b.ID] = b
	}

	s.order = order
	s.bookings = bookings
	view := s.readLocked()
	s.publishLocked(view)
	s.mu.Unlock()

	if s.snapshotSize != nil {
		s.snapshotSize.Set(float64(len(view)))
	}
}

// MergeAction накладывает patch на бронирование bookingID.
// Возвращает false, если бронирования нет или оно уже терминальное.
func (s *Store) MergeAction(bookingID string, patch domain.BookingPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[bookingID]
	if !ok {
		s.logger.Info("MergeAction: booking id=%s not in store, skipping", bookingID)
		return false
	}

	if current.Status.IsTerminal() {
		s.logger.Warn("MergeAction: booking id=%s is already %s, skipping", bookingID, current.Status)
		return false
	}

	merged := patch.Apply(current)
	if merged.Status != current.Status && !current.Status.CanTransitionTo(merged.Status) {
		s.logger.Warn("MergeAction: invalid transition %s -> %s for booking id=%s",
			current.Status, merged.Status, bookingID)
		return false
	}

	s.bookings[bookingID] = merged
	if merged.Status.IsTerminal() {
		s.terminal[bookingID] = merged
	}

	s.publishLocked(s.readLocked())
	return true
}

// Read возвращает копию текущего набора бронирований в порядке последнего снимка
func (s *Store) Read() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readLocked()
}

// Get возвращает бронирование по ID
func (s *Store) Get(bookingID string) (domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	return b, ok
}

// Subscribe возвращает канал с актуальным набором бронирований.
// В канале всегда лежит только последнее состояние; cancel закрывает канал.
func (s *Store) Subscribe() (<-chan []domain.Booking, func()) {
	ch := make(chan []domain.Booking, 1)

	// Порядок блокировок mu -> subMu совпадает с publishLocked
	s.mu.RLock()
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.readLocked()
	s.subMu.Unlock()
	s.mu.RUnlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}

	return ch, cancel
}

func (s *Store) readLocked() []domain.Booking {
	result := make([]domain.Booking, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.bookings[id])
	}
	return result
}

// publishLocked вызывается под s.mu, поэтому подписчики видят изменения в порядке применения
func (s *Store) publishLocked(view []domain.Booking) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// latest-wins: выбрасываем непрочитанное состояние
		select {
		case <-ch:
		default:
		}
		// у каждого подписчика своя копия, чтобы изменения одного не видели другие
		ch <- append([]domain.Booking(nil), view...)
	}
}
