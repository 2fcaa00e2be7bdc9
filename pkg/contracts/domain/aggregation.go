package domain

import "github.com/shopspring/decimal"

// RecipientTotals is one row of the per-recipient pick list.
type RecipientTotals struct {
	Recipient string `json:"recipient"`
	// Products holds every resolved product in vocabulary order, zeros included.
	Products []Quantity `json:"products"`
	// Amount is nil when the export has no monetary column.
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	TotalBoxes decimal.Decimal  `json:"total_boxes"`
}

// Quantity returns the recipient's total for product.
func (r RecipientTotals) Quantity(product string) decimal.Decimal {
	for _, q := range r.Products {
		if q.Product == product {
			return q.Quantity
		}
	}
	return decimal.Zero
}

// LineItem is one customer order on a packing slip. Items only lists products
// with a positive quantity and may be empty.
type LineItem struct {
	RowIndex   int              `json:"row_index"`
	Customer   string           `json:"customer,omitempty"`
	OrderID    string           `json:"order_id,omitempty"`
	Items      []Quantity       `json:"items"`
	TotalBoxes decimal.Decimal  `json:"total_boxes"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Contacts   []Contact        `json:"contacts,omitempty"`
}

// RecipientOrders groups a recipient's line items in row order.
type RecipientOrders struct {
	Recipient string     `json:"recipient"`
	Orders    []LineItem `json:"orders"`
}

// TotalBoxes sums the line items' box counts.
func (r RecipientOrders) TotalBoxes() decimal.Decimal {
	total := decimal.Zero
	for _, li := range r.Orders {
		total = total.Add(li.TotalBoxes)
	}
	return total
}

// AggregationResult holds the three demand views derived from a filtered order set.
type AggregationResult struct {
	Products        []string          `json:"products"`
	HasMoney        bool              `json:"has_money"`
	TroopTotals     []Quantity        `json:"troop_totals"`
	RecipientTotals []RecipientTotals `json:"recipient_totals"`
	RecipientOrders []RecipientOrders `json:"recipient_orders"`
}

// Totals returns the pick list row of a recipient. Recipients suppressed for
// having no demand yield an all-zero row and false.
func (a *AggregationResult) Totals(recipient string) (RecipientTotals, bool) {
	for _, rt := range a.RecipientTotals {
		if rt.Recipient == recipient {
			return rt, true
		}
	}
	zero := RecipientTotals{Recipient: recipient, TotalBoxes: decimal.Zero}
	for _, p := range a.Products {
		zero.Products = append(zero.Products, Quantity{Product: p, Quantity: decimal.Zero})
	}
	if a.HasMoney {
		amount := decimal.Zero
		zero.Amount = &amount
	}
	return zero, false
}

// Orders returns the line items of a recipient.
func (a *AggregationResult) Orders(recipient string) (RecipientOrders, bool) {
	for _, ro := range a.RecipientOrders {
		if ro.Recipient == recipient {
			return ro, true
		}
	}
	return RecipientOrders{Recipient: recipient}, false
}

// Recipients lists every recipient in first-appearance order.
func (a *AggregationResult) Recipients() []string {
	ids := make([]string, len(a.RecipientOrders))
	for i, ro := range a.RecipientOrders {
		ids[i] = ro.Recipient
	}
	return ids
}
