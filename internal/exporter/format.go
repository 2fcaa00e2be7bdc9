package exporter

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"trooplogistics/pkg/contracts/domain"
)

// formatQuantity prints a box count without trailing zeros: 3, 2.5, -1.
func formatQuantity(d decimal.Decimal) string {
	return d.String()
}

// formatMoney prints an amount in dollars with grouping and exactly 2
// decimal places: $1,212.00, -$3.50.
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	p := message.NewPrinter(language.English)
	return sign + "$" + p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// ContentType returns the media type served for a document format.
func ContentType(format domain.DocumentFormat) string {
	switch format {
	case domain.FormatCSV:
		return "text/csv; charset=utf-8"
	case domain.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case domain.FormatHTML:
		return "text/html; charset=utf-8"
	case domain.FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension, without the dot, for a format.
func Extension(format domain.DocumentFormat) string {
	return string(format)
}

// ArchiveContentType is the media type of a packet archive.
const ArchiveContentType = "application/zip"
