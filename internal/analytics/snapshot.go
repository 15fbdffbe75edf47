package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hoteldash/internal/dataset"
)

// Snapshot is the immutable startup artifact shared by all handlers: the
// raw dataset plus the three derived display artifacts. Nothing mutates a
// snapshot after Build returns, so concurrent reads need no locking.
type Snapshot struct {
	Records   []dataset.BookingRecord
	BusyMonth *BusyMonthTable
	ADR       []ADRCell
	Active    []ActiveBooking
}

// Build loads the dataset from path and derives the display artifacts.
// The three aggregations are independent and run concurrently.
func Build(ctx context.Context, path string) (*Snapshot, error) {
	records, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return BuildFromRecords(ctx, records)
}

// BuildFromRecords derives the display artifacts from already-loaded records.
func BuildFromRecords(ctx context.Context, records []dataset.BookingRecord) (*Snapshot, error) {
	snapshot := &Snapshot{Records: records}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snapshot.BusyMonth = BusyMonthCrosstab(records)
		return ctx.Err()
	})
	g.Go(func() error {
		snapshot.ADR = MeanADRByMonthHotel(records)
		return ctx.Err()
	})
	g.Go(func() error {
		snapshot.Active = FilterActiveBookings(records)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dataset snapshot: %w", err)
	}

	slog.InfoContext(ctx, "dataset snapshot built",
		slog.Int("records", len(records)),
		slog.Int("active_bookings", len(snapshot.Active)),
		slog.Int("adr_cells", len(snapshot.ADR)),
		slog.Int("hotel_categories", len(snapshot.BusyMonth.Hotels)))

	return snapshot, nil
}

// Preview returns the first limit active bookings for the table control.
func (s *Snapshot) Preview(limit int) []ActiveBooking {
	if limit <= 0 || limit > len(s.Active) {
		limit = len(s.Active)
	}
	return s.Active[:limit]
}
