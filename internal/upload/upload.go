// Package upload decodes user-supplied files into tabular previews.
//
// An upload arrives as a base64 payload plus the original filename and a
// Unix timestamp. The payload is decoded, dispatched by file kind, and
// parsed into an ephemeral table that is rendered once and discarded;
// nothing about an uploaded file is validated against the booking schema
// or persisted.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// rawExcerptLen is how many characters of the original encoded payload
// are echoed back for debugging.
const rawExcerptLen = 200

// Kind identifies how an uploaded file will be parsed, resolved once from
// the filename extension.
type Kind int

const (
	KindUnsupported Kind = iota
	KindCSV
	KindSpreadsheet
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindCSV:
		return "csv"
	case KindSpreadsheet:
		return "spreadsheet"
	default:
		return "unsupported"
	}
}

// DetectKind resolves the parse dispatch from the filename extension.
// Matching is on the lowercase suffix, so a name like "csv_report.xls"
// dispatches as a spreadsheet, not as CSV.
func DetectKind(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return KindCSV
	case ".xls", ".xlsx":
		return KindSpreadsheet
	default:
		return KindUnsupported
	}
}

// ErrUnsupportedFile marks an upload whose filename matches no known
// format. It is an explicit branch, never a silent fallthrough.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Request is one uploaded file: the browser-encoded contents, the original
// filename, and the file's last-modified time in Unix seconds.
type Request struct {
	Filename     string `json:"filename" validate:"required"`
	Content      string `json:"content" validate:"required"`
	LastModified int64  `json:"last_modified" validate:"gte=0"`
}

// Preview is the rendered result of a successful upload.
type Preview struct {
	Filename   string     `json:"filename"`
	UploadedAt time.Time  `json:"uploaded_at"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	RawExcerpt string     `json:"raw_excerpt"`
}

// Parser turns upload requests into previews. Each Parse call works on a
// fresh in-memory table; the parser itself holds no per-request state.
type Parser struct {
	logger   *slog.Logger
	validate *validator.Validate
	maxBytes int64
}

// NewParser creates an upload parser. maxBytes bounds the decoded payload
// size; zero or negative disables the bound.
func NewParser(logger *slog.Logger, maxBytes int64) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:   logger.With(slog.String("component", "upload_parser")),
		validate: validator.New(),
		maxBytes: maxBytes,
	}
}

// Parse decodes and parses one uploaded file into a preview. All failure
// modes return an error the caller surfaces to the user; the underlying
// cause is logged here for diagnostics.
func (p *Parser) Parse(ctx context.Context, req Request) (*Preview, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid upload request: %w", err)
	}

	kind := DetectKind(req.Filename)
	p.logger.InfoContext(ctx, "parsing uploaded file",
		slog.String("filename", req.Filename),
		slog.String("kind", kind.String()),
		slog.Int("content_length", len(req.Content)))

	if kind == KindUnsupported {
		p.logger.WarnContext(ctx, "rejected upload with unsupported extension",
			slog.String("filename", req.Filename))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, req.Filename)
	}

	decoded, err := decodePayload(req.Content)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to decode upload payload",
			slog.String("filename", req.Filename),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	if p.maxBytes > 0 && int64(len(decoded)) > p.maxBytes {
		return nil, fmt.Errorf("uploaded file exceeds %d bytes", p.maxBytes)
	}

	var columns []string
	var rows [][]string
	switch kind {
	case KindCSV:
		columns, rows, err = parseCSVTable(decoded)
	case KindSpreadsheet:
		columns, rows, err = parseSpreadsheetTable(decoded)
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to parse uploaded file",
			slog.String("filename", req.Filename),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to parse %s file: %w", kind, err)
	}

	preview := &Preview{
		Filename:   req.Filename,
		UploadedAt: time.Unix(req.LastModified, 0),
		Columns:    columns,
		Rows:       rows,
		RawExcerpt: excerpt(req.Content),
	}

	p.logger.InfoContext(ctx, "upload parsed",
		slog.String("filename", req.Filename),
		slog.Int("columns", len(columns)),
		slog.Int("rows", len(rows)))

	return preview, nil
}

// decodePayload strips an optional data-URL prefix ("data:<mime>;base64,")
// and base64-decodes the remainder.
func decodePayload(content string) ([]byte, error) {
	payload := content
	if idx := strings.IndexByte(content, ','); idx >= 0 && strings.HasPrefix(content, "data:") {
		payload = content[idx+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Browsers occasionally emit unpadded base64
		decoded, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid base64 content: %w", err)
	}
	return decoded, nil
}

// parseCSVTable parses UTF-8 delimited text; the first row becomes the
// column names.
func parseCSVTable(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	columns, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\uFEFF")
	}

	rows := [][]string{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("malformed CSV row: %w", err)
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// parseSpreadsheetTable parses an Excel workbook and extracts the first
// sheet; the first row becomes the column names. Legacy binary .xls
// containers are not understood by excelize and fail here with a parse
// error, which the caller surfaces like any other corrupt upload.
func parseSpreadsheetTable(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	return all[0], all[1:], nil
}

// excerpt returns the first 200 characters of the original encoded
// content, suffixed with an ellipsis marker.
func excerpt(content string) string {
	if len(content) > rawExcerptLen {
		content = content[:rawExcerptLen]
	}
	return content + "..."
}
