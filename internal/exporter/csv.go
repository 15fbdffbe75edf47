// Package exporter serializes derived booking data to CSV for download.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"hoteldash/internal/analytics"
	"hoteldash/internal/dataset"
)

// ExportFilename is the attachment name for the filtered-bookings download.
const ExportFilename = "no_cancel_bookings.csv"

// BookingHeaders is the header row of the filtered-bookings export, in the
// column order of the preview table.
var BookingHeaders = []string{"hotel", "arrival_date"}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteBookings streams the filtered bookings as CSV to w, header row
// included. Dates are written in the same format the loader accepts, so
// an exported file re-parses to an equal table.
func WriteBookings(w io.Writer, bookings []analytics.ActiveBooking, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(BookingHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, b := range bookings {
		record := []string{b.Hotel, b.ArrivalDate.Format(dataset.DateFormat)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadBookings parses a CSV produced by WriteBookings back into bookings.
// Used by tests to verify the export round-trip and available to tooling
// that consumes previously exported files.
func ReadBookings(r io.Reader) ([]analytics.ActiveBooking, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) != len(BookingHeaders) || header[0] != BookingHeaders[0] || header[1] != BookingHeaders[1] {
		return nil, fmt.Errorf("unexpected header row: %v", header)
	}

	var bookings []analytics.ActiveBooking
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV at line %d: %w", line, err)
		}

		arrival, err := parseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid arrival_date at line %d: %w", line, err)
		}
		bookings = append(bookings, analytics.ActiveBooking{
			Hotel:       row[0],
			ArrivalDate: arrival,
		})
	}

	return bookings, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dataset.DateFormat, s)
}
