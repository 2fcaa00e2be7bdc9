package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trooplogistics/pkg/contracts/domain"
)

func TestFilter_KeepsInPersonChannels(t *testing.T) {
	set := mustFilter(t, "Girl's First Name,Delivery Method,Thin Mints,Samoas,Amount Due\n"+
		"Ava,Girl Delivery,3,,$18.00\n"+
		"Bea,Shipped,5,,$30.00\n")

	require.Len(t, set.Orders, 1)
	assert.Equal(t, 0, set.Orders[0].RowIndex)
	assert.Equal(t, "Ava", set.Orders[0].Recipient)
	assertDecimal(t, "3", set.Orders[0].Quantity("Thin Mints"))
	assertDecimal(t, "0", set.Orders[0].Quantity("Samoas"))
	assert.Equal(t, 2, set.SourceRows)
	assert.True(t, set.HasMoney)
	assert.False(t, set.Degraded)
}

func TestFilter_ChannelMatching(t *testing.T) {
	tests := []struct {
		channel string
		kept    bool
	}{
		{channel: "Girl Delivery", kept: true},
		{channel: "IN-PERSON DELIVERY", kept: true},
		{channel: "girl delivery with donation", kept: true},
		{channel: "Shipped", kept: false},
		{channel: "Donation", kept: false},
		{channel: "", kept: false},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			set := mustFilter(t, "Delivery Method,Thin Mints\n\""+tt.channel+"\",1\n")
			assert.Equal(t, tt.kept, len(set.Orders) == 1)
		})
	}
}

func TestFilter_Quantities(t *testing.T) {
	set := mustFilter(t, "Delivery,Girl Name,Thin Mints,Trefoils,Shortbread,Samoas\n"+
		"Girl Delivery,Ava, 4 ,2,3,n/a\n"+
		"Girl Delivery,Ava,-1,,,1.5\n")

	require.Len(t, set.Orders, 2)
	first := set.Orders[0]
	assertDecimal(t, "4", first.Quantity("Thin Mints"))
	assertDecimal(t, "5", first.Quantity("Trefoils"), "two columns of one product are summed")
	assertDecimal(t, "0", first.Quantity("Samoas"), "non-numeric counts as zero")

	second := set.Orders[1]
	assertDecimal(t, "-1", second.Quantity("Thin Mints"), "negative values are kept")
	assertDecimal(t, "1.5", second.Quantity("Samoas"))

	// One entry per resolved product in vocabulary order.
	var products []string
	for _, q := range first.Quantities {
		products = append(products, q.Product)
	}
	assert.Equal(t, []string{"Trefoils", "Samoas", "Thin Mints"}, products)
}

func TestFilter_Money(t *testing.T) {
	set := mustFilter(t, "Delivery,Thin Mints,Amount Due\n"+
		"Girl Delivery,2,$12.50\n"+
		"Girl Delivery,2,\"$1,212.00\"\n"+
		"Girl Delivery,2,\n")

	require.Len(t, set.Orders, 3)
	assertDecimal(t, "12.50", *set.Orders[0].Amount)
	assertDecimal(t, "1212", *set.Orders[1].Amount)
	assertDecimal(t, "0", *set.Orders[2].Amount)
}

func TestFilter_MoneyParseError(t *testing.T) {
	table := mustTable(t, "Delivery,Thin Mints,Amount Due\n"+
		"Girl Delivery,2,$12.50\n"+
		"Girl Delivery,2,abc\n")

	_, err := NewOrderProcessor(domain.DefaultLabels(), testLogger()).Filter(table, mustResolve(t, table))
	require.ErrorIs(t, err, ErrMoneyParse)
	assert.Contains(t, err.Error(), "row 1")
	assert.Contains(t, err.Error(), "abc")
}

func TestFilter_MoneyOnlyCheckedForRetainedRows(t *testing.T) {
	set := mustFilter(t, "Delivery,Thin Mints,Amount Due\n"+
		"Shipped,2,abc\n"+
		"Girl Delivery,2,$6.00\n")

	require.Len(t, set.Orders, 1)
	assert.Equal(t, 1, set.Orders[0].RowIndex)
}

func TestFilter_NoMoneyColumn(t *testing.T) {
	set := mustFilter(t, "Delivery,Thin Mints\nGirl Delivery,2\n")

	require.Len(t, set.Orders, 1)
	assert.False(t, set.HasMoney)
	assert.Nil(t, set.Orders[0].Amount)
}

func TestFilter_Recipients(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		set := mustFilter(t, "Delivery,Girl Name,Thin Mints\n"+
			"Girl Delivery, Ava ,1\n"+
			"Girl Delivery,,1\n")
		require.Len(t, set.Orders, 2)
		assert.Equal(t, "Ava", set.Orders[0].Recipient)
		assert.Equal(t, UnassignedRecipient, set.Orders[1].Recipient)
	})

	t.Run("blank names never merge into a recipient called Unassigned", func(t *testing.T) {
		set := mustFilter(t, "Delivery,Girl Name,Thin Mints\n"+
			"Girl Delivery,Unassigned,1\n"+
			"Girl Delivery,,2\n"+
			"Girl Delivery,unassigned_2,3\n")
		require.Len(t, set.Orders, 3)
		assert.Equal(t, "Unassigned", set.Orders[0].Recipient)
		assert.Equal(t, "Unassigned_3", set.Orders[1].Recipient)
		assert.Equal(t, "unassigned_2", set.Orders[2].Recipient)
	})

	t.Run("degraded", func(t *testing.T) {
		set := mustFilter(t, "Delivery,Thin Mints\n"+
			"Shipped,1\n"+
			"Girl Delivery,1\n"+
			"Girl Delivery,1\n")
		require.Len(t, set.Orders, 2)
		assert.True(t, set.Degraded)
		assert.Equal(t, "1", set.Orders[0].Recipient)
		assert.Equal(t, "2", set.Orders[1].Recipient)
	})
}

func TestFilter_CustomerDetails(t *testing.T) {
	set := mustFilter(t, "Order Number,Delivery,Girl Name,Thin Mints,Customer First Name,Customer Last Name,Customer Phone,Customer Email\n"+
		"1001,Girl Delivery,Ava,1,Pat,Lee,555-0100,\n")

	require.Len(t, set.Orders, 1)
	o := set.Orders[0]
	assert.Equal(t, "1001", o.OrderID)
	assert.Equal(t, "Pat Lee", o.Customer)
	assert.Equal(t, []domain.Contact{{Label: "Customer Phone", Value: "555-0100"}}, o.Contacts)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      domain.Value
		want    string
		wantErr bool
	}{
		{in: domain.StringValue("$12.50"), want: "12.50"},
		{in: domain.StringValue("1,000"), want: "1000"},
		{in: domain.StringValue(" $ 7 "), want: "7"},
		{in: domain.StringValue("-4.25"), want: "-4.25"},
		{in: domain.StringValue("$"), want: "0"},
		{in: domain.NullValue(), want: "0"},
		{in: domain.StringValue("abc"), wantErr: true},
		{in: domain.StringValue("12.50 USD"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMoneyParse)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   domain.Value
		want string
	}{
		{in: domain.StringValue("3"), want: "3"},
		{in: domain.StringValue(" 2 "), want: "2"},
		{in: domain.StringValue("-1"), want: "-1"},
		{in: domain.StringValue("2.5"), want: "2.5"},
		{in: domain.StringValue("two"), want: "0"},
		{in: domain.NullValue(), want: "0"},
	}
	for _, tt := range tests {
		assertDecimal(t, tt.want, ParseQuantity(tt.in), "input %q", tt.in.String())
	}
}
