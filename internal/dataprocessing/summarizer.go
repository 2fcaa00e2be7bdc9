package dataprocessing

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"trooplogistics/pkg/contracts/domain"
)

// Summarizer derives the troop, per-recipient and per-customer demand views
// from a filtered order set. Output order depends only on input order.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Aggregate computes the three views.
func (s *Summarizer) Aggregate(set *domain.FilteredOrderSet) *domain.AggregationResult {
	result := &domain.AggregationResult{
		Products:        set.Products,
		HasMoney:        set.HasMoney,
		TroopTotals:     troopTotals(set),
		RecipientTotals: []domain.RecipientTotals{},
		RecipientOrders: []domain.RecipientOrders{},
	}

	groups := groupByRecipient(set.Orders)
	for _, g := range groups {
		if totals, keep := recipientTotals(g, set); keep {
			result.RecipientTotals = append(result.RecipientTotals, totals)
		}
		result.RecipientOrders = append(result.RecipientOrders, recipientOrders(g))
	}

	s.logger.Info("Orders aggregated",
		slog.Int("orders", len(set.Orders)),
		slog.Int("recipients", len(result.RecipientOrders)),
		slog.Int("recipients_with_demand", len(result.RecipientTotals)),
		slog.Int("products_with_demand", len(result.TroopTotals)))

	return result
}

// troopTotals sums every product, drops zero sums and sorts by descending
// total. Products arrive in vocabulary order and the sort is stable, so ties
// keep vocabulary order.
func troopTotals(set *domain.FilteredOrderSet) []domain.Quantity {
	totals := make([]domain.Quantity, 0, len(set.Products))
	for _, product := range set.Products {
		sum := decimal.Zero
		for _, o := range set.Orders {
			sum = sum.Add(o.Quantity(product))
		}
		if sum.IsZero() {
			continue
		}
		totals = append(totals, domain.Quantity{Product: product, Quantity: sum})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Quantity.GreaterThan(totals[j].Quantity)
	})
	return totals
}

type recipientGroup struct {
	recipient string
	orders    []domain.Order
}

// groupByRecipient groups orders in first-appearance order of the recipient.
func groupByRecipient(orders []domain.Order) []*recipientGroup {
	var groups []*recipientGroup
	index := make(map[string]*recipientGroup)
	for _, o := range orders {
		g, ok := index[o.Recipient]
		if !ok {
			g = &recipientGroup{recipient: o.Recipient}
			index[o.Recipient] = g
			groups = append(groups, g)
		}
		g.orders = append(g.orders, o)
	}
	return groups
}

// recipientTotals sums a recipient's orders. The second result is false when
// every product sum is zero.
func recipientTotals(g *recipientGroup, set *domain.FilteredOrderSet) (domain.RecipientTotals, bool) {
	totals := domain.RecipientTotals{
		Recipient:  g.recipient,
		Products:   make([]domain.Quantity, 0, len(set.Products)),
		TotalBoxes: decimal.Zero,
	}

	keep := false
	for _, product := range set.Products {
		sum := decimal.Zero
		for _, o := range g.orders {
			sum = sum.Add(o.Quantity(product))
		}
		if !sum.IsZero() {
			keep = true
		}
		totals.Products = append(totals.Products, domain.Quantity{Product: product, Quantity: sum})
		totals.TotalBoxes = totals.TotalBoxes.Add(sum)
	}

	if set.HasMoney {
		amount := decimal.Zero
		for _, o := range g.orders {
			if o.Amount != nil {
				amount = amount.Add(*o.Amount)
			}
		}
		totals.Amount = &amount
	}

	return totals, keep
}

// recipientOrders builds one line item per order, listing only positive
// quantities. Orders without any boxes stay in the list.
func recipientOrders(g *recipientGroup) domain.RecipientOrders {
	ro := domain.RecipientOrders{
		Recipient: g.recipient,
		Orders:    make([]domain.LineItem, 0, len(g.orders)),
	}
	for _, o := range g.orders {
		li := domain.LineItem{
			RowIndex:   o.RowIndex,
			Customer:   o.Customer,
			OrderID:    o.OrderID,
			Items:      []domain.Quantity{},
			TotalBoxes: decimal.Zero,
			Amount:     o.Amount,
			Contacts:   o.Contacts,
		}
		for _, q := range o.Quantities {
			if q.Quantity.IsPositive() {
				li.Items = append(li.Items, q)
				li.TotalBoxes = li.TotalBoxes.Add(q.Quantity)
			}
		}
		ro.Orders = append(ro.Orders, li)
	}
	return ro
}
