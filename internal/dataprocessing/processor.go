package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"trooplogistics/pkg/contracts/domain"
)

// UnassignedRecipient labels retained rows whose recipient name cell is empty.
// When a real recipient already carries this name the label gets a _2, _3
// suffix so blank rows never merge into that recipient.
const UnassignedRecipient = "Unassigned"

// OrderProcessor selects in-person orders and normalizes their quantities and
// amounts.
type OrderProcessor struct {
	labels domain.Labels
	logger *slog.Logger
}

// NewOrderProcessor creates a processor using the accepted channel labels.
func NewOrderProcessor(labels domain.Labels, logger *slog.Logger) *OrderProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderProcessor{
		labels: labels,
		logger: logger.With(slog.String("component", "order_processor")),
	}
}

// Filter keeps the rows whose channel value matches an accepted channel label.
// Product cells that are absent or not numeric count as zero; negative values
// are kept as they are. When the export has a money column, every retained
// row's amount must parse or the whole stage fails.
func (p *OrderProcessor) Filter(table *domain.RawTable, res *domain.ColumnResolution) (*domain.FilteredOrderSet, error) {
	set := &domain.FilteredOrderSet{
		Products:   res.Products,
		HasMoney:   res.HasMoney(),
		Degraded:   res.Degraded(),
		SourceRows: table.NumRows(),
	}

	channelIdx := table.ColumnIndex(res.ChannelColumn)
	moneyIdx := table.ColumnIndex(res.MoneyColumn)
	recipientIdx := table.ColumnIndex(res.RecipientColumn)
	orderIdx := table.ColumnIndex(res.OrderIDColumn)
	unassigned := unassignedLabel(table, recipientIdx)

	type productCol struct {
		idx     int
		product string
	}
	cols := make([]productCol, 0, len(res.ProductColumns))
	for _, pc := range res.ProductColumns {
		cols = append(cols, productCol{idx: table.ColumnIndex(pc.Column), product: pc.Product})
	}

	for row := 0; row < table.NumRows(); row++ {
		channel := table.Cell(row, channelIdx).String()
		if !domain.ContainsAnyFold(channel, p.labels.AcceptedChannels) {
			continue
		}

		sums := make(map[string]decimal.Decimal, len(res.Products))
		for _, c := range cols {
			q := ParseQuantity(table.Cell(row, c.idx))
			sums[c.product] = sums[c.product].Add(q)
		}

		order := domain.Order{
			RowIndex:   row,
			Recipient:  recipientOf(table, row, recipientIdx, unassigned),
			Customer:   customerOf(table, row, res.CustomerColumns),
			OrderID:    strings.TrimSpace(table.Cell(row, orderIdx).String()),
			Channel:    channel,
			Quantities: make([]domain.Quantity, 0, len(res.Products)),
		}
		for _, product := range res.Products {
			order.Quantities = append(order.Quantities, domain.Quantity{Product: product, Quantity: sums[product]})
		}
		for _, c := range res.ContactColumns {
			if v := strings.TrimSpace(table.Lookup(row, c).String()); v != "" {
				order.Contacts = append(order.Contacts, domain.Contact{Label: c, Value: v})
			}
		}

		if moneyIdx >= 0 {
			amount, err := ParseMoney(table.Cell(row, moneyIdx))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", row, res.MoneyColumn, err)
			}
			order.Amount = &amount
		}

		set.Orders = append(set.Orders, order)
	}

	p.logger.Info("Orders filtered",
		slog.Int("source_rows", set.SourceRows),
		slog.Int("retained_rows", len(set.Orders)),
		slog.String("channel_column", res.ChannelColumn))

	return set, nil
}

// recipientOf returns the recipient identity of a row. Without a recipient
// column the row index is the identity; a blank name becomes unassigned.
func recipientOf(table *domain.RawTable, row, recipientIdx int, unassigned string) string {
	if recipientIdx < 0 {
		return strconv.Itoa(row)
	}
	name := strings.TrimSpace(table.Cell(row, recipientIdx).String())
	if name == "" {
		return unassigned
	}
	return name
}

// unassignedLabel picks the label for blank recipient cells that no named
// recipient in the table uses, compared case-insensitively.
func unassignedLabel(table *domain.RawTable, recipientIdx int) string {
	if recipientIdx < 0 {
		return UnassignedRecipient
	}
	taken := make(map[string]bool)
	for row := 0; row < table.NumRows(); row++ {
		name := strings.TrimSpace(table.Cell(row, recipientIdx).String())
		taken[strings.ToLower(name)] = true
	}
	label := UnassignedRecipient
	for n := 2; taken[strings.ToLower(label)]; n++ {
		label = UnassignedRecipient + "_" + strconv.Itoa(n)
	}
	return label
}

// customerOf joins the non-empty customer name cells of a row.
func customerOf(table *domain.RawTable, row int, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if v := strings.TrimSpace(table.Lookup(row, c).String()); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ParseQuantity reads a product cell. Null and non-numeric cells are zero.
func ParseQuantity(v domain.Value) decimal.Decimal {
	if v.IsNull() {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.Text))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseMoney reads a monetary cell after removing "$" and "," characters.
// Null and blank cells are zero.
func ParseMoney(v domain.Value) (decimal.Decimal, error) {
	if v.IsNull() {
		return decimal.Zero, nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(v.Text)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMoneyParse, v.Text)
	}
	return d, nil
}
