package store

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DriverBookingSync/internal/domain"
	"github.com/m04kA/SMC-DriverBookingSync/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log, err := logger.NewWithWriter(io.Discard, "debug")
	require.NoError(t, err)

	return New(log)
}

func booking(id string, status domain.BookingStatus) domain.Booking {
	return domain.Booking{
		ID:             id,
		Status:         status,
		PickupLocation: "Airport",
		Destination:    "Center",
		RiderMobile:    "+100",
		TotalPayment:   30,
	}
}

func statusPtr(s domain.BookingStatus) *domain.BookingStatus { return &s }

func TestApplyServerUpdate_SingleBooking(t *testing.T) {
	s := newTestStore(t)

	s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

	got := s.Read()
	require.Len(t, got, 1)
	assert.Equal(t, "B1", got[0].ID)
	assert.Equal(t, domain.StatusBooked, got[0].Status)
}

func TestApplyServerUpdate_ReplacesWholesale(t *testing.T) {
	s := newTestStore(t)

	s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked), booking("B2", domain.StatusBooked)})
	s.ApplyServerUpdate([]domain.Booking{booking("B3", domain.StatusBooked)})

	got := s.Read()
	require.Len(t, got, 1)
	assert.Equal(t, "B3", got[0].ID)

	_, ok := s.Get("B1")
	assert.False(t, ok)
}

func TestApplyServerUpdate_KeepsSnapshotOrderAndDropsDuplicates(t *testing.T) {
	s := newTestStore(t)

	dup := booking("B2", domain.StatusBooked)
	dup.Destination = "Elsewhere"

	s.ApplyServerUpdate([]domain.Booking{
		booking("B3", domain.StatusBooked),
		booking("B2", domain.StatusBooked),
		dup,
		booking("B1", domain.StatusBooked),
	})

	got := s.Read()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B3", "B2", "B1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "Center", got[1].Destination)
}

func TestStatusMonotonicity(t *testing.T) {
	t.Run("poll cannot revert a terminal booking", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusApproved)})

		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})
		b, _ := s.Get("B1")
		assert.Equal(t, domain.StatusApproved, b.Status)

		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusCancelled)})
		b, _ = s.Get("B1")
		assert.Equal(t, domain.StatusApproved, b.Status)
	})

	t.Run("re-delivered terminal record is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusCancelled)})
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusCancelled)})

		got := s.Read()
		require.Len(t, got, 1)
		assert.Equal(t, domain.StatusCancelled, got[0].Status)
	})

	t.Run("terminal state survives a snapshot that omits the booking", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusApproved)})
		s.ApplyServerUpdate(nil)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

		b, ok := s.Get("B1")
		require.True(t, ok)
		assert.Equal(t, domain.StatusApproved, b.Status)
	})

	t.Run("merge cannot change a terminal booking", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

		require.True(t, s.MergeAction("B1", domain.BookingPatch{Status: statusPtr(domain.StatusApproved)}))
		assert.False(t, s.MergeAction("B1", domain.BookingPatch{Status: statusPtr(domain.StatusCancelled)}))
		assert.False(t, s.MergeAction("B1", domain.BookingPatch{Status: statusPtr(domain.StatusBooked)}))

		b, _ := s.Get("B1")
		assert.Equal(t, domain.StatusApproved, b.Status)

		// поздний снимок, начатый до действия, не откатывает статус
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})
		b, _ = s.Get("B1")
		assert.Equal(t, domain.StatusApproved, b.Status)
	})
}

func TestMergeAction(t *testing.T) {
	t.Run("absent booking is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

		assert.False(t, s.MergeAction("B9", domain.BookingPatch{Status: statusPtr(domain.StatusApproved)}))
		assert.Len(t, s.Read(), 1)
	})

	t.Run("shallow merge keeps other fields", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

		notes := "arriving in 5"
		require.True(t, s.MergeAction("B1", domain.BookingPatch{
			Status: statusPtr(domain.StatusApproved),
			Notes:  &notes,
		}))

		b, _ := s.Get("B1")
		assert.Equal(t, domain.StatusApproved, b.Status)
		assert.Equal(t, "arriving in 5", *b.Notes)
		assert.Equal(t, "Airport", b.PickupLocation)
	})

	t.Run("field-only patch on a booked record", func(t *testing.T) {
		s := newTestStore(t)
		s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

		dest := "Harbor"
		require.True(t, s.MergeAction("B1", domain.BookingPatch{Destination: &dest}))

		b, _ := s.Get("B1")
		assert.Equal(t, domain.StatusBooked, b.Status)
		assert.Equal(t, "Harbor", b.Destination)
	})
}

func TestRead_ReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

	got := s.Read()
	got[0].Status = domain.StatusCancelled

	b, _ := s.Get("B1")
	assert.Equal(t, domain.StatusBooked, b.Status)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

	ch, cancel := s.Subscribe()

	initial := <-ch
	require.Len(t, initial, 1)

	// два обновления подряд без чтения: подписчик видит только последнее
	s.ApplyServerUpdate([]domain.Booking{booking("B2", domain.StatusBooked)})
	require.True(t, s.MergeAction("B2", domain.BookingPatch{Status: statusPtr(domain.StatusCancelled)}))

	latest := <-ch
	require.Len(t, latest, 1)
	assert.Equal(t, "B2", latest[0].ID)
	assert.Equal(t, domain.StatusCancelled, latest[0].Status)

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// публикация после отписки не паникует
	s.ApplyServerUpdate(nil)
}

func TestSubscribe_EachSubscriberOwnsItsView(t *testing.T) {
	s := newTestStore(t)

	first, cancelFirst := s.Subscribe()
	defer cancelFirst()
	second, cancelSecond := s.Subscribe()
	defer cancelSecond()

	<-first
	<-second

	s.ApplyServerUpdate([]domain.Booking{booking("B1", domain.StatusBooked)})

	a := <-first
	b := <-second
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	a[0].Status = domain.StatusCancelled
	a[0].PickupLocation = "Elsewhere"

	assert.Equal(t, domain.StatusBooked, b[0].Status)
	assert.Equal(t, "Airport", b[0].PickupLocation)

	current, ok := s.Get("B1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusBooked, current.Status)
}
