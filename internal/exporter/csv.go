package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"trooplogistics/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvEncoder writes pages as CSV. A page made of one plain table is written
// as just that table so it imports cleanly; other pages are written section
// by section with a heading row and blank separator rows.
type csvEncoder struct{}

func (csvEncoder) format() domain.DocumentFormat { return domain.FormatCSV }

func (csvEncoder) encode(_ context.Context, p *Page) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := newRecordWriter(&buf)

	if len(p.Sections) == 1 && len(p.Sections[0].Fields) == 0 && p.Sections[0].Table != nil {
		w.table(p.Sections[0].Table)
	} else {
		w.write(p.Title)
		if p.Subtitle != "" {
			w.write(p.Subtitle)
		}
		for _, s := range p.Sections {
			w.blank()
			w.write(s.Heading)
			for _, f := range s.Fields {
				w.write(f.Label, f.Value)
			}
			if s.Table != nil {
				w.table(s.Table)
			} else if s.Note != "" {
				w.write(s.Note)
			}
		}
	}

	w.csv.Flush()
	if w.err != nil {
		return nil, w.err
	}
	if err := w.csv.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// recordWriter keeps the first write error so the layout code stays linear.
type recordWriter struct {
	csv *csv.Writer
	n   int
	err error
}

func newRecordWriter(buf *bytes.Buffer) *recordWriter {
	return &recordWriter{csv: csv.NewWriter(buf)}
}

func (w *recordWriter) write(fields ...string) {
	if w.err != nil {
		return
	}
	if err := w.csv.Write(fields); err != nil {
		w.err = fmt.Errorf("failed to write record %d: %w", w.n, err)
	}
	w.n++
}

func (w *recordWriter) blank() {
	w.write()
}

func (w *recordWriter) table(t *Table) {
	w.write(t.Header...)
	for _, row := range t.Rows {
		w.write(cellTexts(row)...)
	}
	if t.Footer != nil {
		w.write(cellTexts(t.Footer)...)
	}
}

// cellTexts uses plain numbers for money so spreadsheets can sum them.
func cellTexts(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch {
		case c.Money && c.Number.Valid:
			out[i] = c.Number.Decimal.StringFixed(2)
		default:
			out[i] = c.Text
		}
	}
	return out
}
