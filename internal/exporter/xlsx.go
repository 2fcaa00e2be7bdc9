package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"trooplogistics/pkg/contracts/domain"
)

const (
	defaultSheet   = "Sheet1"
	maxSheetName   = 31
	headerFill     = "2E8B57"
	headerFontTint = "F5F5F5"
	moneyNumFmt    = `"$"#,##0.00`
)

// xlsxEncoder writes a page as a single worksheet laid out top to bottom.
type xlsxEncoder struct{}

func (xlsxEncoder) format() domain.DocumentFormat { return domain.FormatXLSX }

type xlsxStyles struct {
	title, heading, header, footer, money, footerMoney int
}

func (xlsxEncoder) encode(_ context.Context, p *Page) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(p.Name)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: sheet, row: 1}
	w.text(1, p.Title, styles.title)
	w.row++
	if p.Subtitle != "" {
		w.text(1, p.Subtitle, 0)
		w.row++
	}

	widest := 2
	for _, s := range p.Sections {
		w.row++
		w.text(1, s.Heading, styles.heading)
		w.row++
		for _, fld := range s.Fields {
			w.text(1, fld.Label, styles.heading)
			w.text(2, fld.Value, 0)
			w.row++
		}
		switch {
		case s.Table != nil:
			for i, h := range s.Table.Header {
				w.text(i+1, h, styles.header)
			}
			w.row++
			for _, cells := range s.Table.Rows {
				w.cells(cells, 0, styles.money)
				w.row++
			}
			if s.Table.Footer != nil {
				w.cells(s.Table.Footer, styles.footer, styles.footerMoney)
				w.row++
			}
			if n := len(s.Table.Header); n > widest {
				widest = n
			}
		case s.Note != "":
			w.text(1, s.Note, 0)
			w.row++
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}
	last, err := excelize.ColumnNumberToName(widest)
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", last, 14); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var (
		s   xlsxStyles
		err error
	)
	money := moneyNumFmt
	style := func(dst *int, st *excelize.Style) {
		if err == nil {
			*dst, err = f.NewStyle(st)
		}
	}
	style(&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	style(&s.heading, &excelize.Style{Font: &excelize.Font{Bold: true}})
	style(&s.header, &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontTint},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	style(&s.footer, &excelize.Style{Font: &excelize.Font{Bold: true}})
	style(&s.money, &excelize.Style{CustomNumFmt: &money})
	style(&s.footerMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &money})
	if err != nil {
		return xlsxStyles{}, fmt.Errorf("failed to create styles: %w", err)
	}
	return s, nil
}

// sheetWriter keeps the current row and the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) text(col int, value string, style int) {
	w.set(col, value, style)
}

func (w *sheetWriter) cells(cells []Cell, style, moneyStyle int) {
	for i, c := range cells {
		switch {
		case c.Number.Valid && c.Money:
			w.set(i+1, c.Number.Decimal.InexactFloat64(), moneyStyle)
		case c.Number.Valid:
			w.set(i+1, c.Number.Decimal.InexactFloat64(), style)
		default:
			w.set(i+1, c.Text, style)
		}
	}
}

func (w *sheetWriter) set(col int, value interface{}, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = fmt.Errorf("failed to set %s: %w", cell, err)
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
			w.err = fmt.Errorf("failed to style %s: %w", cell, err)
		}
	}
}

// sheetName strips the characters Excel rejects and enforces its length limit.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if strings.TrimSpace(name) == "" {
		return defaultSheet
	}
	return name
}
