// Package exporter renders aggregation results as printable documents.
//
// Every document is first laid out as a format neutral Page (title, sections,
// detail fields and tables of typed cells) and then encoded by one backend:
//
//   - csv: encoding/csv with a UTF-8 BOM for Excel
//   - xlsx: a single styled worksheet written with excelize
//   - html: markdown converted with goldmark and its table extension
//   - pdf: the html rendition printed by headless Chrome through chromedp
//
// The four documents are the troop summary, the recipient pick list, the
// packing slips and a recipient packet (pickup summary plus that recipient's
// slips). BuildArchive zips one packet per recipient, rendering them in
// parallel while keeping entries in first-appearance order.
//
// Example usage:
//
//	r, err := exporter.NewRenderer(domain.FormatXLSX, exporter.Options{Title: "Troop 1234"})
//	if err != nil {
//		return err
//	}
//	data, err := r.RenderTroopSummary(ctx, report.Result.TroopTotals)
package exporter
