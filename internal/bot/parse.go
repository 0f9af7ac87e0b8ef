package bot

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/service"
)

const defaultDurationMinutes = 60

var errUsage = errors.New("wrong number of arguments")

// parseFreeArgs reads "<start> [minutes]".
func parseFreeArgs(args []string) (time.Time, int, error) {
	if len(args) < 1 || len(args) > 2 {
		return time.Time{}, 0, errUsage
	}

	start, err := time.Parse(time.RFC3339, args[0])
	if err != nil {
		return time.Time{}, 0, errUsage
	}

	minutes := defaultDurationMinutes
	if len(args) == 2 {
		if minutes, err = strconv.Atoi(args[1]); err != nil {
			return time.Time{}, 0, errUsage
		}
	}

	return start, minutes, nil
}

// parseBookArgs reads "<staff_id> <start> <minutes> <email> <phone> <name...>".
func parseBookArgs(args []string) (service.ReservationRequest, error) {
	const minArgs = 6
	if len(args) < minArgs {
		return service.ReservationRequest{}, errUsage
	}

	start, err := time.Parse(time.RFC3339, args[1])
	if err != nil {
		return service.ReservationRequest{}, errUsage
	}
	minutes, err := strconv.Atoi(args[2])
	if err != nil {
		return service.ReservationRequest{}, errUsage
	}

	return service.ReservationRequest{
		StaffID:         args[0],
		Start:           start,
		DurationMinutes: minutes,
		Customer: models.Customer{
			Email: args[3],
			Phone: args[4],
			Name:  strings.Join(args[5:], " "),
		},
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
