package domain

import "strings"

// Product is one entry of the canonical vocabulary: the user facing product
// name and the ordered aliases used to find its column in an export.
type Product struct {
	Name    string   `json:"name" yaml:"name" validate:"required"`
	Aliases []string `json:"aliases" yaml:"aliases" validate:"required,min=1,dive,required"`
}

// Vocabulary is the ordered canonical product table. Declaration order is
// significant: it decides which product claims a column first and breaks ties
// when sorting troop totals.
type Vocabulary struct {
	Products []Product `json:"products" yaml:"products" validate:"required,min=1,dive"`
}

// Names returns the canonical names in declaration order.
func (v Vocabulary) Names() []string {
	names := make([]string, len(v.Products))
	for i, p := range v.Products {
		names[i] = p.Name
	}
	return names
}

// Labels holds the fixed label substrings used to locate and filter metadata
// columns. All matching is case-insensitive substring matching.
type Labels struct {
	// Channel lists substrings identifying the delivery-channel column.
	Channel []string `json:"channel" yaml:"channel"`
	// AcceptedChannels lists substrings a channel value must contain for the
	// row to be kept.
	AcceptedChannels []string `json:"accepted_channels" yaml:"accepted_channels"`
	// Money lists substrings identifying the monetary column, in priority order.
	Money []string `json:"money" yaml:"money"`
	// Recipient lists substrings that must all appear in the recipient column name.
	Recipient []string `json:"recipient" yaml:"recipient"`
	// Customer lists substrings that must all appear in a customer name column.
	Customer []string `json:"customer" yaml:"customer"`
	// OrderID lists substrings identifying the order number column.
	OrderID []string `json:"order_id" yaml:"order_id"`
	// Contact lists substrings identifying customer contact columns.
	Contact []string `json:"contact" yaml:"contact"`
}

// DefaultLabels returns the label set of the reference deployment.
func DefaultLabels() Labels {
	return Labels{
		Channel:          []string{"delivery", "order type"},
		AcceptedChannels: []string{"girl", "in-person"},
		Money:            []string{"amount", "total"},
		Recipient:        []string{"girl", "name"},
		Customer:         []string{"customer", "name"},
		OrderID:          []string{"order number", "order id", "order #"},
		Contact:          []string{"address", "phone", "email"},
	}
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ContainsAnyFold reports whether s contains any of the substrings, ignoring case.
func ContainsAnyFold(s string, substrs []string) bool {
	for _, sub := range substrs {
		if ContainsFold(s, sub) {
			return true
		}
	}
	return false
}

// ContainsAllFold reports whether s contains every substring, ignoring case.
// An empty list never matches.
func ContainsAllFold(s string, substrs []string) bool {
	if len(substrs) == 0 {
		return false
	}
	for _, sub := range substrs {
		if !ContainsFold(s, sub) {
			return false
		}
	}
	return true
}
