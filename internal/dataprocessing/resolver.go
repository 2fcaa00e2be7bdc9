package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"trooplogistics/pkg/contracts/domain"
)

// Resolver maps an export's columns onto the canonical vocabulary and the
// metadata labels.
type Resolver struct {
	vocab  domain.Vocabulary
	labels domain.Labels
	logger *slog.Logger
}

// NewResolver creates a resolver for the given vocabulary and labels.
func NewResolver(vocab domain.Vocabulary, labels domain.Labels, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		vocab:  vocab,
		labels: labels,
		logger: logger.With(slog.String("component", "column_resolver")),
	}
}

// Resolve matches the table's columns. A missing channel column is checked
// first and is the only failure that precedes product matching.
func (r *Resolver) Resolve(table *domain.RawTable) (*domain.ColumnResolution, error) {
	res := &domain.ColumnResolution{}

	res.ChannelColumn = firstColumn(table.Columns, func(c string) bool {
		return domain.ContainsAnyFold(c, r.labels.Channel)
	})
	if res.ChannelColumn == "" {
		return nil, fmt.Errorf("%w (columns: %s)", ErrMissingChannelColumn, strings.Join(table.Columns, ", "))
	}

	// Only product matches claim columns here; the channel column may also
	// carry a product alias.
	claimed := make(map[string]bool)
	productSeen := make(map[string]bool)

	for _, product := range r.vocab.Products {
		for _, alias := range product.Aliases {
			if alias == "" {
				continue
			}
			col := firstColumn(table.Columns, func(c string) bool {
				return !claimed[c] && domain.ContainsFold(c, alias)
			})
			if col == "" {
				continue
			}
			claimed[col] = true
			res.ProductColumns = append(res.ProductColumns, domain.ProductColumn{
				Column:  col,
				Product: product.Name,
				Alias:   alias,
			})
			if !productSeen[product.Name] {
				productSeen[product.Name] = true
				res.Products = append(res.Products, product.Name)
			}
		}
	}
	if len(res.ProductColumns) == 0 {
		return nil, fmt.Errorf("%w (columns: %s)", ErrNoProductColumnsMatched, strings.Join(table.Columns, ", "))
	}
	claimed[res.ChannelColumn] = true

	// Money labels are tried in priority order so "Amount Due" wins over a
	// later "Total Packages".
	for _, label := range r.labels.Money {
		res.MoneyColumn = firstColumn(table.Columns, func(c string) bool {
			return !claimed[c] && domain.ContainsFold(c, label)
		})
		if res.MoneyColumn != "" {
			claimed[res.MoneyColumn] = true
			break
		}
	}

	res.RecipientColumn = firstColumn(table.Columns, func(c string) bool {
		return !claimed[c] && domain.ContainsAllFold(c, r.labels.Recipient)
	})
	if res.RecipientColumn != "" {
		claimed[res.RecipientColumn] = true
	}

	for _, c := range table.Columns {
		if !claimed[c] && domain.ContainsAllFold(c, r.labels.Customer) {
			res.CustomerColumns = append(res.CustomerColumns, c)
			claimed[c] = true
		}
	}

	res.OrderIDColumn = firstColumn(table.Columns, func(c string) bool {
		return !claimed[c] && domain.ContainsAnyFold(c, r.labels.OrderID)
	})
	if res.OrderIDColumn != "" {
		claimed[res.OrderIDColumn] = true
	}

	for _, c := range table.Columns {
		if !claimed[c] && domain.ContainsAnyFold(c, r.labels.Contact) {
			res.ContactColumns = append(res.ContactColumns, c)
			claimed[c] = true
		}
	}

	for _, c := range table.Columns {
		if !claimed[c] {
			res.Unmatched = append(res.Unmatched, c)
		}
	}

	r.logger.Info("Columns resolved",
		slog.String("channel_column", res.ChannelColumn),
		slog.String("money_column", res.MoneyColumn),
		slog.String("recipient_column", res.RecipientColumn),
		slog.Int("product_columns", len(res.ProductColumns)),
		slog.Int("unmatched_columns", len(res.Unmatched)))
	if res.Degraded() {
		r.logger.Warn("No recipient name column found, each order is its own recipient")
	}

	return res, nil
}

// firstColumn returns the first column, in table order, accepted by match.
func firstColumn(columns []string, match func(string) bool) string {
	for _, c := range columns {
		if match(c) {
			return c
		}
	}
	return ""
}
