package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/chronos/internal/i18n"
	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

// fakeContext overrides the telebot.Context methods the handlers use. Any other call panics.
type fakeContext struct {
	telebot.Context

	args      []string
	sender    *telebot.User
	callback  *telebot.Callback
	sent      []any
	responses []*telebot.CallbackResponse
}

func (f *fakeContext) Args() []string              { return f.args }
func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	text, ok := f.sent[len(f.sent)-1].(string)
	require.True(t, ok, "last reply is %T", f.sent[len(f.sent)-1])
	return text
}

type fakeServices struct {
	staff     []models.Staff
	bookings  []models.Booking
	available []models.Staff
	err       error

	lastStart   time.Time
	lastMinutes int
	lastRequest service.ReservationRequest
}

func (f *fakeServices) FindAvailable(_ context.Context, start time.Time, minutes int) ([]models.Staff, error) {
	f.lastStart, f.lastMinutes = start, minutes
	return f.available, f.err
}

func (f *fakeServices) Reserve(_ context.Context, req service.ReservationRequest) (models.Booking, error) {
	f.lastRequest = req
	if f.err != nil {
		return models.Booking{}, f.err
	}
	interval, err := models.IntervalFromDuration(req.Start, req.DurationMinutes)
	if err != nil {
		return models.Booking{}, err
	}
	return models.Booking{ID: "b-1", StaffID: req.StaffID, Interval: interval, Customer: req.Customer}, nil
}

func (f *fakeServices) ListBookings(context.Context) ([]models.Booking, error) {
	return f.bookings, f.err
}

func (f *fakeServices) ExportCSV(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "id,staff_id,start,end,customer_name,customer_phone,customer_email\n")
	return err
}

func (f *fakeServices) List(context.Context) ([]models.Staff, error) {
	return f.staff, f.err
}

func newTestBot(t *testing.T, fake *fakeServices) (*Bot, *metrics.Metrics) {
	t.Helper()
	localizer, err := i18n.NewLocalizer()
	require.NoError(t, err)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	services := Services{Availability: fake, Reservations: fake, Listings: fake, Staff: fake}
	return newBot(slog.New(slog.NewTextHandler(io.Discard, nil)), services, appMetrics, localizer, time.Second),
		appMetrics
}

func newContext(args ...string) *fakeContext {
	return &fakeContext{args: args, sender: &telebot.User{ID: 42, LanguageCode: "en-US"}}
}

var nine = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestParseFreeArgs(t *testing.T) {
	t.Parallel()

	start, minutes, err := parseFreeArgs([]string{"2025-01-01T09:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, nine, start)
	assert.Equal(t, defaultDurationMinutes, minutes)

	_, minutes, err = parseFreeArgs([]string{"2025-01-01T11:00:00+02:00", "30"})
	require.NoError(t, err)
	assert.Equal(t, 30, minutes)

	for _, args := range [][]string{nil, {"tomorrow"}, {"2025-01-01T09:00:00Z", "half"}, {"a", "b", "c"}} {
		_, _, err = parseFreeArgs(args)
		require.ErrorIs(t, err, errUsage, fmt.Sprint(args))
	}
}

func TestParseBookArgs(t *testing.T) {
	t.Parallel()

	req, err := parseBookArgs([]string{"A", "2025-01-01T09:00:00Z", "45", "c@example.com", "+380", "Carol", "Ann"})
	require.NoError(t, err)
	assert.Equal(t, service.ReservationRequest{
		StaffID:         "A",
		Start:           nine,
		DurationMinutes: 45,
		Customer:        models.Customer{Name: "Carol Ann", Phone: "+380", Email: "c@example.com"},
	}, req)

	_, err = parseBookArgs([]string{"A", "2025-01-01T09:00:00Z", "45", "c@example.com", "+380"})
	require.ErrorIs(t, err, errUsage)

	_, err = parseBookArgs([]string{"A", "9am", "45", "c@example.com", "+380", "Carol"})
	require.ErrorIs(t, err, errUsage)
}

func TestFreeHandler(t *testing.T) {
	t.Parallel()

	t.Run("lists free staff", func(t *testing.T) {
		t.Parallel()
		fake := &fakeServices{available: []models.Staff{{ID: "B", Name: "Bob"}}}
		b, _ := newTestBot(t, fake)
		ctx := newContext("2025-01-01T09:30:00Z", "30")

		require.NoError(t, b.freeHandler(ctx))

		assert.Equal(t, "✅ Free from 2025-01-01T09:30:00Z for 30 min:\n• B: Bob", ctx.lastText(t))
		assert.Equal(t, nine.Add(30*time.Minute), fake.lastStart)
		assert.Equal(t, 30, fake.lastMinutes)
	})

	t.Run("nobody free", func(t *testing.T) {
		t.Parallel()
		b, _ := newTestBot(t, &fakeServices{})
		ctx := newContext("2025-01-01T09:00:00Z")

		require.NoError(t, b.freeHandler(ctx))

		assert.Equal(t, "😔 Nobody is free from 2025-01-01T09:00:00Z for 60 min.", ctx.lastText(t))
	})

	t.Run("bad arguments show usage", func(t *testing.T) {
		t.Parallel()
		b, _ := newTestBot(t, &fakeServices{})
		ctx := newContext("soon")

		require.NoError(t, b.freeHandler(ctx))

		assert.Contains(t, ctx.lastText(t), "Usage: /free")
	})
}

func TestBookHandler(t *testing.T) {
	t.Parallel()

	args := []string{"A", "2025-01-01T09:00:00Z", "60", "carol@example.com", "+380501112233", "Carol"}

	t.Run("confirms the booking", func(t *testing.T) {
		t.Parallel()
		fake := &fakeServices{}
		b, _ := newTestBot(t, fake)
		ctx := newContext(args...)

		require.NoError(t, b.bookHandler(ctx))

		assert.Equal(t,
			"✅ Booked A from 2025-01-01T09:00:00Z to 2025-01-01T10:00:00Z.\nBooking ID: b-1", ctx.lastText(t))
		assert.Equal(t, "Carol", fake.lastRequest.Customer.Name)
	})

	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "unavailable", err: service.ErrStaffUnavailable, expected: "⛔ The staff member is already booked for that time."},
		{name: "not found", err: service.ErrStaffNotFound, expected: "❌ Staff member not found."},
		{name: "store failure", err: service.ErrStoreUnavailable, expected: "🚫 Internal server error, please try again later"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b, _ := newTestBot(t, &fakeServices{err: tc.err})
			ctx := newContext(args...)

			require.NoError(t, b.bookHandler(ctx))

			assert.Equal(t, tc.expected, ctx.lastText(t))
		})
	}

	t.Run("invalid input carries the detail", func(t *testing.T) {
		t.Parallel()
		b, _ := newTestBot(t, &fakeServices{err: fmt.Errorf("%w: bad email", service.ErrInvalidInput)})
		ctx := newContext(args...)

		require.NoError(t, b.bookHandler(ctx))

		assert.Equal(t, "❌ The request is invalid: invalid input: bad email", ctx.lastText(t))
	})
}

func TestListingHandlers(t *testing.T) {
	t.Parallel()

	interval, err := models.IntervalFromDuration(nine, 60)
	require.NoError(t, err)
	fake := &fakeServices{
		staff:    []models.Staff{{ID: "A", Name: "Alice"}},
		bookings: []models.Booking{{ID: "b-1", StaffID: "A", Interval: interval, Customer: models.Customer{Name: "Carol"}}},
	}
	b, _ := newTestBot(t, fake)

	ctx := newContext()
	require.NoError(t, b.staffHandler(ctx))
	assert.Equal(t, "👥 Staff members:\n• A: Alice", ctx.lastText(t))

	ctx = newContext()
	require.NoError(t, b.bookingsHandler(ctx))
	assert.Equal(t, "📋 Bookings:\n• 2025-01-01T09:00:00Z - 2025-01-01T10:00:00Z | A | Carol", ctx.lastText(t))

	ctx = newContext()
	require.NoError(t, b.exportHandler(ctx))
	require.Len(t, ctx.sent, 1)
	document, ok := ctx.sent[0].(*telebot.Document)
	require.True(t, ok)
	assert.Equal(t, "bookings.csv", document.FileName)
	assert.Equal(t, "text/csv", document.MIME)
}

func TestEmptyListings(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, &fakeServices{})

	ctx := newContext()
	require.NoError(t, b.staffHandler(ctx))
	assert.Equal(t, "No staff members yet.", ctx.lastText(t))

	ctx = newContext()
	require.NoError(t, b.bookingsHandler(ctx))
	assert.Equal(t, "No bookings yet.", ctx.lastText(t))
}

func TestLanguageChange(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, &fakeServices{})

	ctx := newContext()
	ctx.callback = &telebot.Callback{Unique: btnLanguageUkrainian.Unique}
	require.NoError(t, b.languageChangeHandler(ctx))
	assert.Equal(t, "✅ Мову змінено на українську", ctx.lastText(t))

	ctx = newContext()
	require.NoError(t, b.staffHandler(ctx))
	assert.Equal(t, "Працівників ще немає.", ctx.lastText(t))

	ctx = newContext()
	ctx.callback = &telebot.Callback{Unique: "language_de"}
	require.NoError(t, b.languageChangeHandler(ctx))
	require.Len(t, ctx.responses, 1)
	assert.Equal(t, "Невідома мова", ctx.responses[0].Text)
}

func TestClientLanguage(t *testing.T) {
	t.Parallel()

	b, _ := newTestBot(t, &fakeServices{})
	ctx := &fakeContext{sender: &telebot.User{ID: 7, LanguageCode: "uk"}}

	require.NoError(t, b.startHandler(ctx))

	assert.Contains(t, ctx.lastText(t), "Помічник бронювання")
}

func TestTrackMiddleware(t *testing.T) {
	t.Parallel()

	b, appMetrics := newTestBot(t, &fakeServices{})
	handler := b.track("start")(b.startHandler)

	require.NoError(t, handler(newContext()))
	require.NoError(t, handler(newContext()))

	assert.InDelta(t, 2.0, testutil.ToFloat64(appMetrics.BotCommands.WithLabelValues("start")), 0)
}
