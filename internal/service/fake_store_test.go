package service_test

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeStore keeps staff and bookings in memory. Its insert checks for conflicts and appends in
// two separate critical sections, so it only stays conflict-free under an external per-staff lock.
type fakeStore struct {
	mu       sync.Mutex
	staff    map[string]models.Staff
	bookings []models.Booking
	takenIDs map[string]bool

	staffErr  error
	findErr   error
	insertErr error
	listErr   error
	upsertErr error

	insertCalls int
}

func newFakeStore(staff ...models.Staff) *fakeStore {
	store := &fakeStore{staff: make(map[string]models.Staff), takenIDs: make(map[string]bool)}
	for _, member := range staff {
		store.staff[member.ID] = member
	}

	return store
}

func (f *fakeStore) GetStaffByID(_ context.Context, id string) (models.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.staffErr != nil {
		return models.Staff{}, f.staffErr
	}
	member, ok := f.staff[id]
	if !ok {
		return models.Staff{}, repository.ErrStaffNotFound
	}

	return member, nil
}

func (f *fakeStore) ListStaff(_ context.Context) ([]models.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	staff := make([]models.Staff, 0, len(f.staff))
	for _, member := range f.staff {
		staff = append(staff, member)
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })

	return staff, nil
}

func (f *fakeStore) UpsertStaff(_ context.Context, staff models.Staff) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.staff[staff.ID] = staff

	return nil
}

func (f *fakeStore) FindOverlapping(
	_ context.Context,
	staffID string,
	interval models.Interval,
) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}

	return f.overlapping(staffID, interval), nil
}

func (f *fakeStore) InsertIfNoConflict(_ context.Context, booking models.Booking) (models.Booking, error) {
	f.mu.Lock()
	f.insertCalls++
	if f.insertErr != nil {
		f.mu.Unlock()
		return models.Booking{}, f.insertErr
	}
	if f.takenIDs[booking.ID] {
		f.mu.Unlock()
		return models.Booking{}, repository.ErrBookingIDTaken
	}
	if _, ok := f.staff[booking.StaffID]; !ok {
		f.mu.Unlock()
		return models.Booking{}, repository.ErrStaffNotFound
	}
	conflict := len(f.overlapping(booking.StaffID, booking.Interval)) > 0
	f.mu.Unlock()

	if conflict {
		return models.Booking{}, repository.ErrBookingConflict
	}

	runtime.Gosched()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.takenIDs[booking.ID] = true
	f.bookings = append(f.bookings, booking)

	return booking, nil
}

func (f *fakeStore) ListBookingsByStart(_ context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	bookings := make([]models.Booking, len(f.bookings))
	copy(bookings, f.bookings)
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].Start().Before(bookings[j].Start()) })

	return bookings, nil
}

func (f *fakeStore) snapshot() []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()

	bookings := make([]models.Booking, len(f.bookings))
	copy(bookings, f.bookings)

	return bookings
}

func (f *fakeStore) overlapping(staffID string, interval models.Interval) []models.Booking {
	var result []models.Booking
	for _, booking := range f.bookings {
		if (staffID == "" || booking.StaffID == staffID) && booking.Interval.Overlaps(interval) {
			result = append(result, booking)
		}
	}

	return result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}
