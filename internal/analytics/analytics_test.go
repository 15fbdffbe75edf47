package analytics

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldash/internal/dataset"
)

func booking(hotel string, canceled bool, date string, adr float64) dataset.BookingRecord {
	arrival, err := time.Parse(dataset.DateFormat, date)
	if err != nil {
		panic(err)
	}
	return dataset.BookingRecord{
		Hotel:       hotel,
		IsCanceled:  canceled,
		ArrivalDate: arrival,
		ADR:         adr,
	}
}

func TestBusyMonthCrosstab_AllTwelveMonthsInOrder(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("City Hotel", false, "2016-12-24", 80),
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("City Hotel", false, "2016-07-15", 90),
		booking("Resort Hotel", false, "2016-01-02", 40),
	}
	// Shuffle to prove output order does not depend on input order
	rand.New(rand.NewSource(1)).Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	table := BusyMonthCrosstab(records)

	require.Len(t, table.Rows, 12)
	for i, row := range table.Rows {
		assert.Equal(t, dataset.MonthNames[i], row.Month)
	}
	assert.Equal(t, []string{"City Hotel", "Resort Hotel"}, table.Hotels)
}

func TestBusyMonthCrosstab_ExcludesCanceled(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("Resort Hotel", true, "2016-07-02", 100),
		booking("Resort Hotel", true, "2016-08-02", 100),
	}

	table := BusyMonthCrosstab(records)

	july := table.Rows[6]
	require.Equal(t, "July", july.Month)
	assert.Equal(t, 1, july.Counts["Resort Hotel"])

	// August had only canceled bookings: the row exists but has no cells
	august := table.Rows[7]
	require.Equal(t, "August", august.Month)
	assert.Empty(t, august.Counts)
}

func TestBusyMonthCrosstab_CellAbsentNotZero(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("City Hotel", false, "2016-08-01", 100),
	}

	table := BusyMonthCrosstab(records)

	july := table.Rows[6]
	_, cityInJuly := july.Counts["City Hotel"]
	assert.False(t, cityInJuly)
	assert.Equal(t, 1, july.Counts["Resort Hotel"])
}

func TestMeanADRByMonthHotel_IncludesCanceledAndRounds(t *testing.T) {
	// The mean runs over the full dataset, canceled bookings included.
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("Resort Hotel", true, "2016-07-20", 100.555),
		booking("City Hotel", false, "2016-01-10", 33.333),
	}

	cells := MeanADRByMonthHotel(records)

	require.Len(t, cells, 2)
	// Calendar order: January before July
	assert.Equal(t, ADRCell{Month: "January", Hotel: "City Hotel", ADR: 33.33}, cells[0])
	assert.Equal(t, ADRCell{Month: "July", Hotel: "Resort Hotel", ADR: 100.28}, cells[1])
}

func TestMeanADRByMonthHotel_NoZeroFill(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
	}

	cells := MeanADRByMonthHotel(records)

	require.Len(t, cells, 1)
	assert.Equal(t, "July", cells[0].Month)
}

func TestMeanADRByMonthHotel_CalendarNotLexicalOrder(t *testing.T) {
	// Lexically April < August < December < February; calendar order differs.
	records := []dataset.BookingRecord{
		booking("City Hotel", false, "2016-12-01", 10),
		booking("City Hotel", false, "2016-04-01", 10),
		booking("City Hotel", false, "2016-08-01", 10),
		booking("City Hotel", false, "2016-02-01", 10),
	}

	cells := MeanADRByMonthHotel(records)

	months := make([]string, len(cells))
	for i, c := range cells {
		months[i] = c.Month
	}
	assert.Equal(t, []string{"February", "April", "August", "December"}, months)
}

func TestFilterActiveBookings_OrderAndProjection(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("City Hotel", true, "2016-07-02", 90),
		booking("City Hotel", false, "2016-07-03", 80),
		booking("Resort Hotel", false, "2015-01-01", 70),
	}

	active := FilterActiveBookings(records)

	require.Len(t, active, 3)
	assert.Equal(t, "Resort Hotel", active[0].Hotel)
	assert.Equal(t, "City Hotel", active[1].Hotel)
	assert.Equal(t, "Resort Hotel", active[2].Hotel)
	// Input order preserved, no re-sorting by date
	assert.Equal(t, "2016-07-01", active[0].ArrivalDate.Format(dataset.DateFormat))
	assert.Equal(t, "2015-01-01", active[2].ArrivalDate.Format(dataset.DateFormat))

	for _, b := range active {
		assert.NotEmpty(t, b.Hotel)
	}
}

func TestSingleRecordScenario(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100.0),
	}

	table := BusyMonthCrosstab(records)
	for i, row := range table.Rows {
		if row.Month == "July" {
			assert.Equal(t, 1, row.Counts["Resort Hotel"])
		} else {
			assert.Empty(t, row.Counts, "month %s (row %d) should be empty", row.Month, i)
		}
	}

	cells := MeanADRByMonthHotel(records)
	require.Len(t, cells, 1)
	assert.Equal(t, ADRCell{Month: "July", Hotel: "Resort Hotel", ADR: 100.00}, cells[0])
}

func TestBuildFromRecords(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("City Hotel", true, "2016-08-01", 50),
	}

	snapshot, err := BuildFromRecords(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, snapshot.Records, 2)
	assert.Len(t, snapshot.Active, 1)
	assert.Len(t, snapshot.ADR, 2)
	require.NotNil(t, snapshot.BusyMonth)
	assert.Len(t, snapshot.BusyMonth.Rows, 12)
}

func TestSnapshotPreview(t *testing.T) {
	records := []dataset.BookingRecord{
		booking("Resort Hotel", false, "2016-07-01", 100),
		booking("Resort Hotel", false, "2016-07-02", 100),
		booking("Resort Hotel", false, "2016-07-03", 100),
	}
	snapshot, err := BuildFromRecords(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, snapshot.Preview(2), 2)
	assert.Len(t, snapshot.Preview(5), 3)
	assert.Len(t, snapshot.Preview(0), 3)
}
