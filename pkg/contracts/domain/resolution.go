package domain

// ProductColumn binds one raw export column to a canonical product.
type ProductColumn struct {
	Column  string `json:"column"`
	Product string `json:"product"`
	Alias   string `json:"alias"`
}

// ColumnResolution is the outcome of matching an export's columns against the
// vocabulary and the metadata labels.
type ColumnResolution struct {
	ChannelColumn string `json:"channel_column"`
	// MoneyColumn is empty when no monetary column was found.
	MoneyColumn string `json:"money_column,omitempty"`
	// RecipientColumn is empty in degraded mode, where each row is its own recipient.
	RecipientColumn string `json:"recipient_column,omitempty"`
	// ProductColumns is ordered by claim order (vocabulary, then alias order).
	ProductColumns []ProductColumn `json:"product_columns"`
	// Products lists the canonical names with at least one column, in vocabulary order.
	Products        []string `json:"products"`
	CustomerColumns []string `json:"customer_columns,omitempty"`
	OrderIDColumn   string   `json:"order_id_column,omitempty"`
	ContactColumns  []string `json:"contact_columns,omitempty"`
	// Unmatched lists the columns no rule claimed, in table order.
	Unmatched []string `json:"unmatched,omitempty"`
}

// HasMoney reports whether a monetary column was resolved.
func (r *ColumnResolution) HasMoney() bool {
	return r.MoneyColumn != ""
}

// Degraded reports whether recipients fall back to row identity.
func (r *ColumnResolution) Degraded() bool {
	return r.RecipientColumn == ""
}
