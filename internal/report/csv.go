package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/UnknownOlympus/chronos/internal/models"
)

// TimestampLayout is the textual form of booking timestamps in exports.
const TimestampLayout = time.RFC3339

// CSVHeader is the fixed column order of the delimited export.
var CSVHeader = []string{"id", "staff_id", "start", "end", "customer_name", "customer_phone", "customer_email"}

// WriteCSV writes the header and one row per booking, in the given order.
// Fields are quoted when needed and never truncated.
func WriteCSV(w io.Writer, bookings []models.Booking) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, booking := range bookings {
		record := []string{
			booking.ID,
			booking.StaffID,
			formatTimestamp(booking.Start()),
			formatTimestamp(booking.End()),
			booking.Customer.Name,
			booking.Customer.Phone,
			booking.Customer.Email,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for booking %s: %w", booking.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
