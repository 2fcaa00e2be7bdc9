package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"trooplogistics/pkg/contracts/domain"
)

// Cell is one table cell. Numeric cells keep their value so spreadsheet
// backends can store numbers instead of text.
type Cell struct {
	Text   string
	Number decimal.NullDecimal
	Money  bool
}

func textCell(s string) Cell {
	return Cell{Text: s}
}

func quantityCell(d decimal.Decimal) Cell {
	return Cell{Text: formatQuantity(d), Number: decimal.NewNullDecimal(d)}
}

func moneyCell(d decimal.Decimal) Cell {
	return Cell{Text: formatMoney(d), Number: decimal.NewNullDecimal(d), Money: true}
}

// Table is a header, body rows and an optional totals row.
type Table struct {
	Header []string
	Rows   [][]Cell
	Footer []Cell
}

// Field is a labelled detail line above a section's table.
type Field struct {
	Label string
	Value string
}

// Section is a titled block of a page. Sections marked NewPage start on a
// fresh printed page.
type Section struct {
	Heading string
	Fields  []Field
	Table   *Table
	// Note replaces an empty table.
	Note    string
	NewPage bool
}

// Page is the format neutral layout every backend encodes.
type Page struct {
	// Name is a short label used for sheet names.
	Name     string
	Title    string
	Subtitle string
	Sections []Section
}

func troopSummaryPage(subtitle string, totals []domain.Quantity) *Page {
	section := Section{Heading: "Inventory to Pull"}
	if len(totals) == 0 {
		section.Note = "No boxes are needed for in-person delivery."
	} else {
		section.Table = quantityTable(totals)
	}
	return &Page{
		Name:     "Troop Summary",
		Title:    "Troop Summary",
		Subtitle: subtitle,
		Sections: []Section{section},
	}
}

func pickListPage(subtitle string, products []string, totals []domain.RecipientTotals) *Page {
	hasMoney := false
	for _, rt := range totals {
		if rt.Amount != nil {
			hasMoney = true
			break
		}
	}

	header := append([]string{"Recipient"}, products...)
	header = append(header, "Total Boxes")
	if hasMoney {
		header = append(header, "Amount")
	}

	table := &Table{Header: header}
	productSums := make([]decimal.Decimal, len(products))
	boxes, amount := decimal.Zero, decimal.Zero
	for _, rt := range totals {
		row := []Cell{textCell(rt.Recipient)}
		for i, p := range products {
			q := rt.Quantity(p)
			productSums[i] = productSums[i].Add(q)
			row = append(row, quantityCell(q))
		}
		row = append(row, quantityCell(rt.TotalBoxes))
		boxes = boxes.Add(rt.TotalBoxes)
		if hasMoney {
			a := decimal.Zero
			if rt.Amount != nil {
				a = *rt.Amount
			}
			amount = amount.Add(a)
			row = append(row, moneyCell(a))
		}
		table.Rows = append(table.Rows, row)
	}

	footer := []Cell{textCell("Total")}
	for _, sum := range productSums {
		footer = append(footer, quantityCell(sum))
	}
	footer = append(footer, quantityCell(boxes))
	if hasMoney {
		footer = append(footer, moneyCell(amount))
	}
	table.Footer = footer

	section := Section{Heading: "Pick List", Table: table}
	if len(totals) == 0 {
		section.Table = nil
		section.Note = "No recipient has boxes to pick up."
	}
	return &Page{
		Name:     "Pick List",
		Title:    "Pick List",
		Subtitle: subtitle,
		Sections: []Section{section},
	}
}

func packingSlipsPage(subtitle string, orders []domain.RecipientOrders) *Page {
	page := &Page{
		Name:     "Packing Slips",
		Title:    "Packing Slips",
		Subtitle: subtitle,
	}
	for _, ro := range orders {
		for _, li := range ro.Orders {
			section := slipSection(ro.Recipient, li)
			section.NewPage = len(page.Sections) > 0
			page.Sections = append(page.Sections, section)
		}
	}
	if len(page.Sections) == 0 {
		page.Sections = []Section{{Heading: "Packing Slips", Note: "No in-person orders."}}
	}
	return page
}

func packetPage(subtitle, recipient string, totals domain.RecipientTotals, orders domain.RecipientOrders) *Page {
	summary := Section{
		Heading: "Pickup Summary",
		Fields: []Field{
			{Label: "Recipient", Value: recipient},
			{Label: "Orders", Value: strconv.Itoa(len(orders.Orders))},
			{Label: "Total Boxes", Value: formatQuantity(totals.TotalBoxes)},
		},
	}
	if totals.Amount != nil {
		summary.Fields = append(summary.Fields, Field{Label: "Amount", Value: formatMoney(*totals.Amount)})
	}

	var positive []domain.Quantity
	for _, q := range totals.Products {
		if q.Quantity.IsPositive() {
			positive = append(positive, q)
		}
	}
	if len(positive) == 0 {
		summary.Note = "No boxes to pick up."
	} else {
		summary.Table = quantityTable(positive)
	}

	page := &Page{
		Name:     "Packet",
		Title:    "Pickup Packet: " + recipient,
		Subtitle: subtitle,
		Sections: []Section{summary},
	}
	for _, li := range orders.Orders {
		section := slipSection(recipient, li)
		section.NewPage = true
		page.Sections = append(page.Sections, section)
	}
	return page
}

func slipSection(recipient string, li domain.LineItem) Section {
	fields := []Field{{Label: "Recipient", Value: recipient}}
	if li.Customer != "" {
		fields = append(fields, Field{Label: "Customer", Value: li.Customer})
	}
	for _, c := range li.Contacts {
		fields = append(fields, Field{Label: c.Label, Value: c.Value})
	}
	if li.Amount != nil {
		fields = append(fields, Field{Label: "Amount", Value: formatMoney(*li.Amount)})
	}

	section := Section{Heading: slipHeading(li), Fields: fields}
	if len(li.Items) == 0 {
		section.Note = "No boxes on this order."
	} else {
		section.Table = quantityTable(li.Items)
	}
	return section
}

func slipHeading(li domain.LineItem) string {
	if li.OrderID != "" {
		return "Order " + li.OrderID
	}
	return "Order Row " + strconv.Itoa(li.RowIndex+1)
}

func quantityTable(items []domain.Quantity) *Table {
	t := &Table{Header: []string{"Product", "Boxes"}}
	total := decimal.Zero
	for _, q := range items {
		t.Rows = append(t.Rows, []Cell{textCell(q.Product), quantityCell(q.Quantity)})
		total = total.Add(q.Quantity)
	}
	t.Footer = []Cell{textCell("Total"), quantityCell(total)}
	return t
}
