package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Required dataset columns. The source file may carry additional columns;
// the loader ignores them.
const (
	columnHotel       = "hotel"
	columnIsCanceled  = "is_canceled"
	columnArrivalDate = "arrival_date"
	columnADR         = "adr"
)

// Load reads the booking dataset from a CSV file at path.
// Any missing required column, empty required field, or parse failure
// aborts the load: aggregation is a batch computation with no recovery
// path for partial rows.
func Load(path string) ([]BookingRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	records, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	slog.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	return records, nil
}

// Read parses booking records from CSV content. The first row must be a
// header containing the hotel, is_canceled, arrival_date and adr columns;
// column order does not matter and extra columns are ignored.
func Read(r io.Reader) ([]BookingRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []BookingRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV at line %d: %w", line, err)
		}

		record, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("data integrity error at line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// columnMap holds the index of each required column in the header row.
type columnMap struct {
	hotel       int
	isCanceled  int
	arrivalDate int
	adr         int
}

func mapColumns(header []string) (columnMap, error) {
	indexes := map[string]int{}
	for i, name := range header {
		indexes[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cols := columnMap{hotel: -1, isCanceled: -1, arrivalDate: -1, adr: -1}
	required := map[string]*int{
		columnHotel:       &cols.hotel,
		columnIsCanceled:  &cols.isCanceled,
		columnArrivalDate: &cols.arrivalDate,
		columnADR:         &cols.adr,
	}

	for name, target := range required {
		idx, ok := indexes[name]
		if !ok {
			return columnMap{}, fmt.Errorf("missing required column: %s", name)
		}
		*target = idx
	}

	return cols, nil
}

func parseRow(row []string, cols columnMap) (BookingRecord, error) {
	field := func(idx int, name string) (string, error) {
		if idx >= len(row) {
			return "", fmt.Errorf("row has no %s column", name)
		}
		value := strings.TrimSpace(row[idx])
		if value == "" {
			return "", fmt.Errorf("empty %s field", name)
		}
		return value, nil
	}

	hotel, err := field(cols.hotel, columnHotel)
	if err != nil {
		return BookingRecord{}, err
	}

	canceledRaw, err := field(cols.isCanceled, columnIsCanceled)
	if err != nil {
		return BookingRecord{}, err
	}
	canceled, err := parseCanceled(canceledRaw)
	if err != nil {
		return BookingRecord{}, err
	}

	dateRaw, err := field(cols.arrivalDate, columnArrivalDate)
	if err != nil {
		return BookingRecord{}, err
	}
	arrival, err := time.Parse(DateFormat, dateRaw)
	if err != nil {
		return BookingRecord{}, fmt.Errorf("invalid arrival_date %q: %w", dateRaw, err)
	}

	adrRaw, err := field(cols.adr, columnADR)
	if err != nil {
		return BookingRecord{}, err
	}
	adr, err := strconv.ParseFloat(adrRaw, 64)
	if err != nil {
		return BookingRecord{}, fmt.Errorf("invalid adr %q: %w", adrRaw, err)
	}

	return BookingRecord{
		Hotel:       hotel,
		IsCanceled:  canceled,
		ArrivalDate: arrival,
		ADR:         adr,
	}, nil
}

// parseCanceled interprets the boolean-as-category cancellation flag.
// The cleaned dataset encodes it as 0/1.
func parseCanceled(value string) (bool, error) {
	switch value {
	case "0", "false", "False":
		return false, nil
	case "1", "true", "True":
		return true, nil
	default:
		return false, fmt.Errorf("invalid is_canceled value %q", value)
	}
}
