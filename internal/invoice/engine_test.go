package invoice

import (
	"testing"

	"github.com/stretchr/testify/require"

	"teaops/backend/internal/domain"
)

var testCatalog = []domain.Product{
	{ID: "prod-bop", Name: "Ceylon BOP", Price: 450},
	{ID: "prod-tips", Name: "Silver Tips", Price: 850},
	{ID: "prod-chai", Name: "Masala Chai", Price: 340},
}

func TestComputeTotalsWithDiscount(t *testing.T) {
	lines := []LineItem{
		{ProductID: "prod-bop", Quantity: 2, Price: 450, Total: 900},
		{ProductID: "prod-tips", Quantity: 1, Price: 850, Total: 850},
	}

	totals := ComputeTotals(lines, "10")
	require.InDelta(t, 1750.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 175.0, totals.DiscountAmount, 1e-9)
	require.InDelta(t, 1575.0, totals.GrandTotal, 1e-9)
}

func TestComputeTotalsEmptyAndMalformedDiscount(t *testing.T) {
	lines := []LineItem{{Quantity: 1, Price: 100, Total: 100}}

	for _, raw := range []string{"", "abc", "10%%"} {
		totals := ComputeTotals(lines, raw)
		require.InDelta(t, 100.0, totals.Subtotal, 1e-9)
		require.InDelta(t, 0.0, totals.DiscountAmount, 1e-9)
		require.InDelta(t, 100.0, totals.GrandTotal, 1e-9)
	}
}

func TestComputeTotalsNoItems(t *testing.T) {
	totals := ComputeTotals(nil, "25")
	require.Zero(t, totals.Subtotal)
	require.Zero(t, totals.DiscountAmount)
	require.Zero(t, totals.GrandTotal)
}

func TestDraftLifecycle(t *testing.T) {
	draft := NewDraft()
	require.Equal(t, domain.ChannelRetail, draft.Channel)
	require.Equal(t, domain.InvoiceStatusPending, draft.Status)
	require.Empty(t, draft.Items)

	draft.AddItem()
	require.Len(t, draft.Items, 1)
	require.Equal(t, 1, draft.Items[0].Quantity)
	require.Zero(t, draft.Items[0].Total)

	require.NoError(t, draft.SetItemProduct(0, "prod-bop", testCatalog))
	require.InDelta(t, 450.0, draft.Items[0].Price, 1e-9)
	require.InDelta(t, 450.0, draft.Items[0].Total, 1e-9)

	require.NoError(t, draft.SetItemQuantity(0, "3"))
	require.Equal(t, 3, draft.Items[0].Quantity)
	require.InDelta(t, 1350.0, draft.Items[0].Total, 1e-9)

	draft.AddItem()
	require.NoError(t, draft.SetItemProduct(1, "prod-chai", testCatalog))
	draft.Discount = "10"

	totals := draft.Totals()
	require.InDelta(t, 1690.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 169.0, totals.DiscountAmount, 1e-9)
	require.InDelta(t, 1521.0, totals.GrandTotal, 1e-9)

	require.NoError(t, draft.RemoveItem(0))
	require.Len(t, draft.Items, 1)
	require.Equal(t, "prod-chai", draft.Items[0].ProductID)
}

func TestSetItemProductUnknownIDLeavesLineUntouched(t *testing.T) {
	draft := NewDraft()
	draft.AddItem()
	require.NoError(t, draft.SetItemProduct(0, "prod-bop", testCatalog))

	require.NoError(t, draft.SetItemProduct(0, "prod-missing", testCatalog))
	require.Equal(t, "prod-bop", draft.Items[0].ProductID)
	require.InDelta(t, 450.0, draft.Items[0].Price, 1e-9)
}

func TestSetItemQuantityCoercion(t *testing.T) {
	draft := NewDraft()
	draft.AddItem()
	require.NoError(t, draft.SetItemProduct(0, "prod-bop", testCatalog))

	require.NoError(t, draft.SetItemQuantity(0, "garbage"))
	require.Equal(t, 0, draft.Items[0].Quantity)
	require.Zero(t, draft.Items[0].Total)

	require.NoError(t, draft.SetItemQuantity(0, "-2"))
	require.Equal(t, -2, draft.Items[0].Quantity)
	require.InDelta(t, -900.0, draft.Items[0].Total, 1e-9)
}

func TestDraftIndexOutOfRange(t *testing.T) {
	draft := NewDraft()
	require.Error(t, draft.SetItemProduct(0, "prod-bop", testCatalog))
	require.Error(t, draft.SetItemQuantity(-1, "2"))
	require.Error(t, draft.RemoveItem(0))
}

func TestLinesFromInputsPricesFromCatalog(t *testing.T) {
	lines := LinesFromInputs([]domain.InvoiceItemInput{
		{ProductID: "prod-tips", Quantity: 2},
		{ProductID: "prod-gone", Quantity: 5},
	}, testCatalog)

	require.Len(t, lines, 2)
	require.InDelta(t, 850.0, lines[0].Price, 1e-9)
	require.InDelta(t, 1700.0, lines[0].Total, 1e-9)
	require.Zero(t, lines[1].Price)
	require.Zero(t, lines[1].Total)
	require.Equal(t, 5, lines[1].Quantity)
}

func TestCoercionPolicy(t *testing.T) {
	require.Equal(t, 7, IntOrZero(" 7 "))
	require.Equal(t, 0, IntOrZero("seven"))
	require.Equal(t, 0, IntOrZero(""))
	require.Equal(t, -3, IntOrZero("-3"))

	require.InDelta(t, 12.5, FloatOrZero("12.5"), 1e-9)
	require.Zero(t, FloatOrZero("x"))
	require.Zero(t, FloatOrZero(""))
}
