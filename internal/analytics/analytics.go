// Package analytics derives the display artifacts from the raw booking
// dataset: the monthly booking-volume crosstab, the mean ADR by month and
// hotel category, and the filtered non-canceled view used for the preview
// table and the CSV export. All transformations are deterministic and
// side-effect free.
package analytics

import (
	"math"
	"sort"
	"time"

	"hoteldash/internal/dataset"
)

// BusyMonthRow is one month of the booking-volume crosstab.
// Counts maps hotel category to the number of non-canceled bookings; a
// category with no bookings that month is absent from the map, not zero.
type BusyMonthRow struct {
	Month  string         `json:"month"`
	Counts map[string]int `json:"counts"`
}

// BusyMonthTable is the monthly booking-volume crosstab by hotel category.
// Rows always cover the 12 calendar months in calendar order.
type BusyMonthTable struct {
	Hotels []string       `json:"hotels"`
	Rows   []BusyMonthRow `json:"rows"`
}

// ADRCell is the mean average daily rate for one (month, hotel) group,
// rounded to 2 decimal places.
type ADRCell struct {
	Month string  `json:"month"`
	Hotel string  `json:"hotel"`
	ADR   float64 `json:"adr"`
}

// ActiveBooking is a non-canceled booking projected to the two columns
// shown in the preview table and written to the CSV export.
type ActiveBooking struct {
	Hotel       string    `json:"hotel"`
	ArrivalDate time.Time `json:"arrival_date"`
}

// BusyMonthCrosstab counts non-canceled bookings per (arrival month, hotel
// category). Every calendar month appears as a row in calendar order even
// when no hotel had bookings that month.
func BusyMonthCrosstab(records []dataset.BookingRecord) *BusyMonthTable {
	counts := make(map[string]map[string]int, len(dataset.MonthNames))
	hotelSet := make(map[string]struct{})

	for _, r := range records {
		if r.IsCanceled {
			continue
		}
		month := r.ArrivalMonth()
		if counts[month] == nil {
			counts[month] = make(map[string]int)
		}
		counts[month][r.Hotel]++
		hotelSet[r.Hotel] = struct{}{}
	}

	hotels := make([]string, 0, len(hotelSet))
	for hotel := range hotelSet {
		hotels = append(hotels, hotel)
	}
	sort.Strings(hotels)

	rows := make([]BusyMonthRow, 0, len(dataset.MonthNames))
	for _, month := range dataset.MonthNames {
		rows = append(rows, BusyMonthRow{
			Month:  month,
			Counts: counts[month],
		})
	}

	return &BusyMonthTable{Hotels: hotels, Rows: rows}
}

// MeanADRByMonthHotel computes the mean ADR per (arrival month, hotel
// category) over the full dataset, canceled bookings included, rounded to
// 2 decimal places. Cells are sorted by calendar month then hotel name;
// groups with no records are absent.
func MeanADRByMonthHotel(records []dataset.BookingRecord) []ADRCell {
	type group struct {
		sum   float64
		count int
	}
	type key struct {
		month string
		hotel string
	}

	groups := make(map[key]*group)
	for _, r := range records {
		k := key{month: r.ArrivalMonth(), hotel: r.Hotel}
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
		}
		g.sum += r.ADR
		g.count++
	}

	cells := make([]ADRCell, 0, len(groups))
	for k, g := range groups {
		cells = append(cells, ADRCell{
			Month: k.month,
			Hotel: k.hotel,
			ADR:   round2(g.sum / float64(g.count)),
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		mi, _ := dataset.MonthIndex(cells[i].Month)
		mj, _ := dataset.MonthIndex(cells[j].Month)
		if mi != mj {
			return mi < mj
		}
		return cells[i].Hotel < cells[j].Hotel
	})

	return cells
}

// FilterActiveBookings selects non-canceled bookings projected to
// (hotel, arrival_date), preserving the original record order.
func FilterActiveBookings(records []dataset.BookingRecord) []ActiveBooking {
	bookings := make([]ActiveBooking, 0, len(records))
	for _, r := range records {
		if r.IsCanceled {
			continue
		}
		bookings = append(bookings, ActiveBooking{
			Hotel:       r.Hotel,
			ArrivalDate: r.ArrivalDate,
		})
	}
	return bookings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
