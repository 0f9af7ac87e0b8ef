// Package bot exposes the booking core as a Telegram bot.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/chronos/internal/i18n"
	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/service"
	"gopkg.in/telebot.v4"
)

// AvailabilityFinder answers who is free for an interval.
type AvailabilityFinder interface {
	FindAvailable(ctx context.Context, start time.Time, durationMinutes int) ([]models.Staff, error)
}

// Reserver creates bookings.
type Reserver interface {
	Reserve(ctx context.Context, req service.ReservationRequest) (models.Booking, error)
}

// BookingLister lists and exports bookings.
type BookingLister interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// StaffLister lists staff members.
type StaffLister interface {
	List(ctx context.Context) ([]models.Staff, error)
}

// Services groups the core operations reachable from the bot.
type Services struct {
	Availability AvailabilityFinder
	Reservations Reserver
	Listings     BookingLister
	Staff        StaffLister
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot         *telebot.Bot
	log         *slog.Logger
	services    Services
	metrics     *metrics.Metrics
	localizer   *i18n.Localizer
	preferences *Preferences
	timeout     time.Duration
}

var (
	btnLanguageEnglish   = telebot.InlineButton{Unique: "language_en"}
	btnLanguageUkrainian = telebot.InlineButton{Unique: "language_uk"}
)

// NewBot creates a new bot with the given token.
func NewBot(
	log *slog.Logger,
	services Services,
	appMetrics *metrics.Metrics,
	token string,
	poller time.Duration,
	timeout time.Duration,
) (*Bot, error) {
	api, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", api.Me.Username)

	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}

	botInstance := newBot(log, services, appMetrics, localizer, timeout)
	botInstance.bot = api
	botInstance.registerRoutes()

	return botInstance, nil
}

func newBot(
	log *slog.Logger,
	services Services,
	appMetrics *metrics.Metrics,
	localizer *i18n.Localizer,
	timeout time.Duration,
) *Bot {
	return &Bot{
		log:         log,
		services:    services,
		metrics:     appMetrics,
		localizer:   localizer,
		preferences: NewPreferences(),
		timeout:     timeout,
	}
}

// Start launches the bot to listen for updates. It blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler, b.track("start"))
	b.bot.Handle("/help", b.startHandler, b.track("help"))
	b.bot.Handle("/staff", b.staffHandler, b.track("staff"))
	b.bot.Handle("/free", b.freeHandler, b.track("free"))
	b.bot.Handle("/book", b.bookHandler, b.track("book"))
	b.bot.Handle("/bookings", b.bookingsHandler, b.track("bookings"))
	b.bot.Handle("/export", b.exportHandler, b.track("export"))
	b.bot.Handle("/language", b.languageHandler, b.track("language"))

	b.bot.Handle(&btnLanguageEnglish, b.languageChangeHandler)
	b.bot.Handle(&btnLanguageUkrainian, b.languageChangeHandler)
}

// language resolves the reply language: an explicit choice first, then the Telegram client language.
func (b *Bot) language(tCtx telebot.Context) string {
	sender := tCtx.Sender()
	if sender == nil {
		return i18n.NormalizeLanguageCode("")
	}
	if lang, ok := b.preferences.Language(sender.ID); ok {
		return lang
	}

	return i18n.NormalizeLanguageCode(sender.LanguageCode)
}

// t is a shorthand method for getting translations.
func (b *Bot) t(tCtx telebot.Context, key string) string {
	return b.localizer.Get(b.language(tCtx), key)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(tCtx telebot.Context, key string, data map[string]any) string {
	return b.localizer.GetWithData(b.language(tCtx), key, data)
}

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}
