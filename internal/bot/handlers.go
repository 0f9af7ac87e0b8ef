package bot

import (
	"bytes"
	"errors"
	"strings"

	"github.com/UnknownOlympus/chronos/internal/service"
	"gopkg.in/telebot.v4"
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	return ctx.Send(b.t(ctx, "start.help"))
}

func (b *Bot) staffHandler(ctx telebot.Context) error {
	timeoutCtx, cancel := b.requestContext()
	defer cancel()

	staff, err := b.services.Staff.List(timeoutCtx)
	if err != nil {
		return b.replyError(ctx, err)
	}
	if len(staff) == 0 {
		return ctx.Send(b.t(ctx, "staff.empty"))
	}

	var builder strings.Builder
	builder.WriteString(b.t(ctx, "staff.header"))
	for _, member := range staff {
		builder.WriteString("\n")
		builder.WriteString(b.tWithData(ctx, "staff.line", map[string]any{"id": member.ID, "name": member.Name}))
	}

	return ctx.Send(builder.String())
}

// freeHandler answers /free <start> [minutes] with the staff members free for that interval.
func (b *Bot) freeHandler(ctx telebot.Context) error {
	start, minutes, err := parseFreeArgs(ctx.Args())
	if err != nil {
		return ctx.Send(b.t(ctx, "free.usage"))
	}

	timeoutCtx, cancel := b.requestContext()
	defer cancel()

	available, err := b.services.Availability.FindAvailable(timeoutCtx, start, minutes)
	if err != nil {
		return b.replyError(ctx, err)
	}

	data := map[string]any{"start": formatTime(start), "minutes": minutes}
	if len(available) == 0 {
		return ctx.Send(b.tWithData(ctx, "free.none", data))
	}

	var builder strings.Builder
	builder.WriteString(b.tWithData(ctx, "free.header", data))
	for _, member := range available {
		builder.WriteString("\n")
		builder.WriteString(b.tWithData(ctx, "staff.line", map[string]any{"id": member.ID, "name": member.Name}))
	}

	return ctx.Send(builder.String())
}

// bookHandler reserves a staff member from /book arguments.
func (b *Bot) bookHandler(ctx telebot.Context) error {
	req, err := parseBookArgs(ctx.Args())
	if err != nil {
		return ctx.Send(b.t(ctx, "book.usage"))
	}

	timeoutCtx, cancel := b.requestContext()
	defer cancel()

	booking, err := b.services.Reservations.Reserve(timeoutCtx, req)
	if err != nil {
		return b.replyError(ctx, err)
	}

	return ctx.Send(b.tWithData(ctx, "book.success", map[string]any{
		"staff": booking.StaffID,
		"start": formatTime(booking.Start()),
		"end":   formatTime(booking.End()),
		"id":    booking.ID,
	}))
}

func (b *Bot) bookingsHandler(ctx telebot.Context) error {
	timeoutCtx, cancel := b.requestContext()
	defer cancel()

	bookings, err := b.services.Listings.ListBookings(timeoutCtx)
	if err != nil {
		return b.replyError(ctx, err)
	}
	if len(bookings) == 0 {
		return ctx.Send(b.t(ctx, "bookings.empty"))
	}

	var builder strings.Builder
	builder.WriteString(b.t(ctx, "bookings.header"))
	for _, booking := range bookings {
		builder.WriteString("\n")
		builder.WriteString(b.tWithData(ctx, "bookings.line", map[string]any{
			"start":    formatTime(booking.Start()),
			"end":      formatTime(booking.End()),
			"staff":    booking.StaffID,
			"customer": booking.Customer.Name,
		}))
	}

	return ctx.Send(builder.String())
}

// exportHandler sends all bookings as a CSV document.
func (b *Bot) exportHandler(ctx telebot.Context) error {
	timeoutCtx, cancel := b.requestContext()
	defer cancel()

	var buf bytes.Buffer
	if err := b.services.Listings.ExportCSV(timeoutCtx, &buf); err != nil {
		return b.replyError(ctx, err)
	}

	return ctx.Send(&telebot.Document{
		File:     telebot.FromReader(&buf),
		FileName: "bookings.csv",
		MIME:     "text/csv",
		Caption:  b.t(ctx, "export.caption"),
	})
}

// replyError maps a service error to a localized reply. Unexpected errors are logged.
func (b *Bot) replyError(ctx telebot.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return ctx.Send(b.tWithData(ctx, "error.invalid_input", map[string]any{"detail": err.Error()}))
	case errors.Is(err, service.ErrStaffNotFound):
		return ctx.Send(b.t(ctx, "error.staff_not_found"))
	case errors.Is(err, service.ErrStaffUnavailable):
		return ctx.Send(b.t(ctx, "error.staff_unavailable"))
	default:
		b.log.Error("Command failed", "error", err)
		return ctx.Send(b.t(ctx, "error.internal"))
	}
}
