package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"trooplogistics/pkg/contracts/domain"
)

// Limits bounds the size of an accepted export. Zero disables a limit.
type Limits struct {
	MaxRows    int
	MaxColumns int
}

// NormalizeExtension lower-cases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// Ingest decodes an uploaded export into a RawTable. The extension selects the
// decoder: "csv" for delimited text and "xlsx" for a workbook.
func Ingest(data []byte, ext string, limits Limits) (*domain.RawTable, error) {
	var (
		records [][]string
		err     error
	)

	switch NormalizeExtension(ext) {
	case string(domain.FormatCSV):
		records, err = readCSV(data)
	case string(domain.FormatXLSX):
		records, err = readWorkbook(data)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return buildTable(records, limits)
}

// utf8BOM is the byte order mark some spreadsheet tools write before CSV text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads UTF-8 text, with or without a byte order mark. Invalid UTF-8
// and unbalanced quotes are parse errors rather than silently repaired.
func readCSV(data []byte) ([][]string, error) {
	if !utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		return nil, fmt.Errorf("%w: export is not valid UTF-8 text", ErrParse)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// readWorkbook reads the first worksheet of an xlsx workbook.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrParse, sheets[0], err)
	}

	slog.Debug("Workbook sheet read",
		slog.String("sheet_name", sheets[0]),
		slog.Int("total_rows", len(rows)))

	return rows, nil
}

// buildTable turns header plus records into a rectangular table with trimmed,
// unique column names.
func buildTable(records [][]string, limits Limits) (*domain.RawTable, error) {
	// Leading blank rows are not a header.
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: export is empty", ErrParse)
	}

	header := records[0]
	if limits.MaxColumns > 0 && len(header) > limits.MaxColumns {
		return nil, fmt.Errorf("%w: %d columns (limit %d)", ErrTableTooLarge, len(header), limits.MaxColumns)
	}

	columns, err := columnNames(header)
	if err != nil {
		return nil, err
	}

	table := &domain.RawTable{Columns: columns}
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		if len(record) > len(columns) && !isBlank(record[len(columns):]) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrParse, i+2, len(record), len(columns))
		}
		if limits.MaxRows > 0 && len(table.Rows) >= limits.MaxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrTableTooLarge, limits.MaxRows)
		}

		row := make([]domain.Value, len(columns))
		for j := range columns {
			if j < len(record) && strings.TrimSpace(record[j]) != "" {
				row[j] = domain.StringValue(record[j])
			} else {
				row[j] = domain.NullValue()
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// columnNames names unnamed headers, disambiguates repeated raw names and trims
// whitespace. Two different raw names that trim to the same name are rejected.
func columnNames(header []string) ([]string, error) {
	seenRaw := make(map[string]int, len(header))
	trimmedFrom := make(map[string]string, len(header))
	names := make([]string, len(header))

	for i, raw := range header {
		if strings.TrimSpace(raw) == "" {
			raw = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seenRaw[raw]; dup {
			seenRaw[raw] = n + 1
			raw = raw + "." + strconv.Itoa(n)
		} else {
			seenRaw[raw] = 1
		}

		name := strings.TrimSpace(raw)
		if prev, exists := trimmedFrom[name]; exists {
			return nil, fmt.Errorf("%w: %q and %q both become %q", ErrDuplicateColumn, prev, raw, name)
		}
		trimmedFrom[name] = raw
		names[i] = name
	}
	return names, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
