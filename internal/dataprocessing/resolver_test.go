package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trooplogistics/pkg/contracts/domain"
)

func TestResolve_FullExport(t *testing.T) {
	table := mustTable(t, "Order Number,Girl's First Name,Delivery Method,Thin Mints,Samoas,"+
		"Customer First Name,Customer Last Name,Customer Email,Amount Due,Notes\n")

	res := mustResolve(t, table)

	assert.Equal(t, "Delivery Method", res.ChannelColumn)
	assert.Equal(t, "Amount Due", res.MoneyColumn)
	assert.Equal(t, "Girl's First Name", res.RecipientColumn)
	assert.Equal(t, "Order Number", res.OrderIDColumn)
	assert.Equal(t, []string{"Customer First Name", "Customer Last Name"}, res.CustomerColumns)
	assert.Equal(t, []string{"Customer Email"}, res.ContactColumns)
	assert.Equal(t, []string{"Notes"}, res.Unmatched)
	// Vocabulary order, not table order.
	assert.Equal(t, []string{"Samoas", "Thin Mints"}, res.Products)
	assert.True(t, res.HasMoney())
	assert.False(t, res.Degraded())
}

func TestResolve_MissingChannelColumn(t *testing.T) {
	table := mustTable(t, "Girl Name,Thin Mints,Amount\n")

	_, err := NewResolver(testVocabulary(), domain.DefaultLabels(), testLogger()).Resolve(table)
	assert.ErrorIs(t, err, ErrMissingChannelColumn)
}

func TestResolve_ChannelCheckedBeforeProducts(t *testing.T) {
	table := mustTable(t, "Girl Name,Notes\n")

	_, err := NewResolver(testVocabulary(), domain.DefaultLabels(), testLogger()).Resolve(table)
	assert.ErrorIs(t, err, ErrMissingChannelColumn)
	assert.NotErrorIs(t, err, ErrNoProductColumnsMatched)
}

func TestResolve_ProductAliasMayMatchChannelColumn(t *testing.T) {
	vocab := domain.Vocabulary{Products: []domain.Product{
		{Name: "Delivery Boxes", Aliases: []string{"delivery"}},
		{Name: "Thin Mints", Aliases: []string{"Thin Mints"}},
	}}
	table := mustTable(t, "Delivery Method,Thin Mints,Amount\n")

	res, err := NewResolver(vocab, domain.DefaultLabels(), testLogger()).Resolve(table)
	require.NoError(t, err)

	assert.Equal(t, "Delivery Method", res.ChannelColumn)
	require.Len(t, res.ProductColumns, 2)
	assert.Equal(t, "Delivery Method", res.ProductColumns[0].Column)
	assert.Equal(t, "Delivery Boxes", res.ProductColumns[0].Product)
	assert.Equal(t, "Amount", res.MoneyColumn)
	assert.Empty(t, res.Unmatched)
}

func TestResolve_NoProductColumns(t *testing.T) {
	table := mustTable(t, "Order Type,Girl Name,Amount\n")

	_, err := NewResolver(testVocabulary(), domain.DefaultLabels(), testLogger()).Resolve(table)
	assert.ErrorIs(t, err, ErrNoProductColumnsMatched)
}

func TestResolve_ChannelLabels(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "DELIVERY METHOD,Thin Mints", want: "DELIVERY METHOD"},
		{header: "Order Type,Thin Mints", want: "Order Type"},
		{header: "Thin Mints,Order Type,Delivery", want: "Order Type"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			res := mustResolve(t, mustTable(t, tt.header+"\n"))
			assert.Equal(t, tt.want, res.ChannelColumn)
		})
	}
}

func TestResolve_AliasesClaimColumnsInOrder(t *testing.T) {
	table := mustTable(t, "Delivery,Shortbread Pkgs,Trefoils Pkgs,Trefoils Extra\n")

	res := mustResolve(t, table)

	require.Len(t, res.ProductColumns, 2)
	// "Trefoils" is tried before "Shortbread" and takes the first matching column.
	assert.Equal(t, domain.ProductColumn{Column: "Trefoils Pkgs", Product: "Trefoils", Alias: "Trefoils"}, res.ProductColumns[0])
	assert.Equal(t, domain.ProductColumn{Column: "Shortbread Pkgs", Product: "Trefoils", Alias: "Shortbread"}, res.ProductColumns[1])
	assert.Equal(t, []string{"Trefoils"}, res.Products)
	assert.Equal(t, []string{"Trefoils Extra"}, res.Unmatched)
}

func TestResolve_ProductColumnsAreNotReused(t *testing.T) {
	vocab := domain.Vocabulary{Products: []domain.Product{
		{Name: "Mints", Aliases: []string{"mint"}},
		{Name: "Thin Mints", Aliases: []string{"thin mint"}},
	}}
	table := mustTable(t, "Delivery,Thin Mints\n")

	res, err := NewResolver(vocab, domain.DefaultLabels(), testLogger()).Resolve(table)
	require.NoError(t, err)

	// The earlier vocabulary entry wins the contested column.
	require.Len(t, res.ProductColumns, 1)
	assert.Equal(t, "Thin Mints", res.ProductColumns[0].Column)
	assert.Equal(t, "Mints", res.ProductColumns[0].Product)
}

func TestResolve_MoneyColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "amount preferred over total", header: "Delivery,Thin Mints,Order Total,Amount Due", want: "Amount Due"},
		{name: "total when no amount", header: "Delivery,Thin Mints,Order Total", want: "Order Total"},
		{name: "product columns are skipped", header: "Delivery,Samoas Amount,Thin Mints", want: ""},
		{name: "absent", header: "Delivery,Thin Mints", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustResolve(t, mustTable(t, tt.header+"\n"))
			assert.Equal(t, tt.want, res.MoneyColumn)
			assert.Equal(t, tt.want != "", res.HasMoney())
		})
	}
}

func TestResolve_DegradedWithoutRecipientColumn(t *testing.T) {
	res := mustResolve(t, mustTable(t, "Delivery Method,Thin Mints,Customer Name\n"))

	assert.True(t, res.Degraded())
	assert.Empty(t, res.RecipientColumn)
	assert.Equal(t, []string{"Customer Name"}, res.CustomerColumns)
}

func TestResolve_Deterministic(t *testing.T) {
	table := mustTable(t, "Girl Name,Delivery,Lemonades,Lemon-Ups,Samoas,Caramel deLites,Amount\n")
	resolver := NewResolver(testVocabulary(), domain.DefaultLabels(), testLogger())

	first, err := resolver.Resolve(table)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := resolver.Resolve(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
