// Package dataset defines the hotel booking record model and loads the
// source CSV into the immutable in-memory dataset used for the process
// lifetime.
package dataset

import "time"

// DateFormat is the wire format for arrival dates, both in the source
// dataset and in exported CSV files.
const DateFormat = "2006-01-02"

// BookingRecord is a single row of the hotel booking dataset.
// Records are immutable once loaded; the full dataset is loaded once at
// startup and held for the process lifetime.
type BookingRecord struct {
	Hotel       string    `json:"hotel"`
	IsCanceled  bool      `json:"is_canceled"`
	ArrivalDate time.Time `json:"arrival_date"`
	ADR         float64   `json:"adr"`
}

// ArrivalMonth returns the calendar month name of the arrival date.
func (r BookingRecord) ArrivalMonth() string {
	return r.ArrivalDate.Month().String()
}

// MonthNames is the fixed calendar ordering used wherever month is a
// grouping dimension. Aggregates keyed by month are presented in this
// order, never alphabetical or insertion order.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// monthIndex maps month name to its calendar position (0-based).
var monthIndex = func() map[string]int {
	m := make(map[string]int, len(MonthNames))
	for i, name := range MonthNames {
		m[name] = i
	}
	return m
}()

// MonthIndex returns the 0-based calendar position of a month name and
// whether the name is a valid month.
func MonthIndex(name string) (int, bool) {
	i, ok := monthIndex[name]
	return i, ok
}
