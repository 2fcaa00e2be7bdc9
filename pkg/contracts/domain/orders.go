package domain

import "github.com/shopspring/decimal"

// Quantity is one canonical product and a number of boxes.
type Quantity struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Contact is a labelled customer detail printed on packing slips.
type Contact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Order is one retained export row after normalization.
type Order struct {
	// RowIndex is the zero based position of the row in the raw table.
	RowIndex  int    `json:"row_index"`
	Recipient string `json:"recipient"`
	Customer  string `json:"customer,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Channel   string `json:"channel"`
	// Quantities holds one entry per resolved product, in vocabulary order,
	// zeros included.
	Quantities []Quantity       `json:"quantities"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Contacts   []Contact        `json:"contacts,omitempty"`
}

// Quantity returns the number of boxes of product on this order.
func (o Order) Quantity(product string) decimal.Decimal {
	for _, q := range o.Quantities {
		if q.Product == product {
			return q.Quantity
		}
	}
	return decimal.Zero
}

// FilteredOrderSet is the channel filtered, normalized subset of an export.
type FilteredOrderSet struct {
	// Products lists the resolved canonical names in vocabulary order.
	Products []string `json:"products"`
	HasMoney bool     `json:"has_money"`
	Degraded bool     `json:"degraded"`
	Orders   []Order  `json:"orders"`
	// SourceRows is the number of rows in the raw table before filtering.
	SourceRows int `json:"source_rows"`
}
