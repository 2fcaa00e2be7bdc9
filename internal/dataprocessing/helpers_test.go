package dataprocessing

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"trooplogistics/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVocabulary() domain.Vocabulary {
	return domain.Vocabulary{Products: []domain.Product{
		{Name: "Adventurefuls", Aliases: []string{"Adventurefuls"}},
		{Name: "Lemon-Ups", Aliases: []string{"Lemon-Ups", "Lemonades"}},
		{Name: "Trefoils", Aliases: []string{"Trefoils", "Shortbread"}},
		{Name: "Samoas", Aliases: []string{"Samoas", "Caramel deLites"}},
		{Name: "Thin Mints", Aliases: []string{"Thin Mints"}},
	}}
}

// mustTable ingests CSV text.
func mustTable(t *testing.T, csvText string) *domain.RawTable {
	t.Helper()
	table, err := Ingest([]byte(csvText), "csv", Limits{})
	require.NoError(t, err)
	return table
}

func mustResolve(t *testing.T, table *domain.RawTable) *domain.ColumnResolution {
	t.Helper()
	res, err := NewResolver(testVocabulary(), domain.DefaultLabels(), testLogger()).Resolve(table)
	require.NoError(t, err)
	return res
}

func mustFilter(t *testing.T, csvText string) *domain.FilteredOrderSet {
	t.Helper()
	table := mustTable(t, csvText)
	set, err := NewOrderProcessor(domain.DefaultLabels(), testLogger()).Filter(table, mustResolve(t, table))
	require.NoError(t, err)
	return set
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// assertDecimal compares decimals by value so "3" and "3.0" are equal.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
