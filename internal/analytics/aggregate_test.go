package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teaops/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testSnapshot() ([]domain.Invoice, []domain.InvoiceItem) {
	invoices := []domain.Invoice{
		{ID: "inv-1", ShopName: "Colombo Flagship", Channel: domain.ChannelRetail, Date: date(2024, time.March, 5), Total: 1000},
		{ID: "inv-2", ShopName: "Kandy Outlet", Channel: domain.ChannelDirect, Date: date(2024, time.March, 20), Total: 500},
		{ID: "inv-3", ShopName: "Colombo Flagship", Channel: domain.ChannelRetail, Date: date(2024, time.January, 10), Total: 800},
		{ID: "inv-4", ShopName: "Kandy Outlet", Channel: domain.ChannelDirect, Date: date(2023, time.December, 1), Total: 300},
	}
	items := []domain.InvoiceItem{
		{ID: "item-1", InvoiceID: "inv-1", ProductName: "Ceylon BOP", Total: 700},
		{ID: "item-2", InvoiceID: "inv-1", ProductName: "Masala Chai", Total: 300},
		{ID: "item-3", InvoiceID: "inv-2", ProductName: "Ceylon BOP", Total: 500},
		{ID: "item-4", InvoiceID: "inv-3", ProductName: "Silver Tips", Total: 800},
		{ID: "item-5", InvoiceID: "inv-4", ProductName: "Silver Tips", Total: 300},
	}
	return invoices, items
}

func TestFilterInvoicesByPeriod(t *testing.T) {
	invoices, _ := testSnapshot()
	now := date(2024, time.March, 15)

	month := FilterInvoices(invoices, Filter{Period: domain.PeriodMonth}, now)
	require.Len(t, month, 2)

	year := FilterInvoices(invoices, Filter{Period: domain.PeriodYear}, now)
	require.Len(t, year, 3)

	all := FilterInvoices(invoices, Filter{Period: domain.PeriodAll}, now)
	require.Len(t, all, 4)
}

func TestFilterInvoicesByChannel(t *testing.T) {
	invoices, _ := testSnapshot()
	now := date(2024, time.March, 15)

	retail := FilterInvoices(invoices, Filter{Channel: domain.ChannelRetail}, now)
	require.Len(t, retail, 2)
	for _, inv := range retail {
		require.Equal(t, domain.ChannelRetail, inv.Channel)
	}
}

func TestFilterNormalizeUnknownValues(t *testing.T) {
	f := Filter{Period: "quarter", Channel: "wholesale"}.Normalize()
	require.Equal(t, domain.PeriodAll, f.Period)
	require.Equal(t, domain.ChannelAll, f.Channel)
}

func TestBuildInsightsMonthlyBuckets(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	insights := BuildInsights(invoices, items, Filter{Period: domain.PeriodMonth}, now)

	require.Len(t, insights.MonthlySales, 1)
	bucket := insights.MonthlySales[0]
	require.Equal(t, "Mar 2024", bucket.Month)
	require.InDelta(t, 1500.0, bucket.Total, 1e-9)
	require.InDelta(t, 1000.0, bucket.Retail, 1e-9)
	require.InDelta(t, 500.0, bucket.Direct, 1e-9)
}

func TestBuildInsightsHeadlineTotals(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	insights := BuildInsights(invoices, items, Filter{Period: domain.PeriodMonth}, now)
	require.InDelta(t, 1500.0, insights.Total, 1e-9)
	require.InDelta(t, 500.0, insights.DirectTotal, 1e-9)
}

func TestBuildInsightsProductSlicesRespectFilter(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	// Silver Tips only appears on invoices outside March 2024, so the
	// month view must not show it.
	insights := BuildInsights(invoices, items, Filter{Period: domain.PeriodMonth}, now)

	names := make([]string, 0, len(insights.ProductSales))
	for _, entry := range insights.ProductSales {
		names = append(names, entry.Name)
	}
	require.NotContains(t, names, "Silver Tips")

	require.Equal(t, "Ceylon BOP", insights.BestProduct)
	require.InDelta(t, 1200.0, insights.ProductSales[0].Value, 1e-9)
}

func TestBuildInsightsStoreSlicesSortedDescending(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	insights := BuildInsights(invoices, items, Filter{}, now)

	require.Equal(t, "Colombo Flagship", insights.BestStore)
	for i := 1; i < len(insights.StoreSales); i++ {
		require.GreaterOrEqual(t, insights.StoreSales[i-1].Value, insights.StoreSales[i].Value)
	}
}

func TestBuildInsightsChannelFilterAppliesToAllSlices(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	insights := BuildInsights(invoices, items, Filter{Channel: domain.ChannelDirect}, now)

	require.InDelta(t, 800.0, insights.Total, 1e-9)
	require.InDelta(t, 800.0, insights.DirectTotal, 1e-9)
	require.Equal(t, "Kandy Outlet", insights.BestStore)
	require.Len(t, insights.StoreSales, 1)

	for _, bucket := range insights.MonthlySales {
		require.Zero(t, bucket.Retail)
		require.InDelta(t, bucket.Total, bucket.Direct, 1e-9)
	}
}

func TestBuildInsightsBucketOrderFollowsEncounter(t *testing.T) {
	invoices, items := testSnapshot()
	now := date(2024, time.March, 15)

	insights := BuildInsights(invoices, items, Filter{}, now)

	require.Equal(t, []string{"Mar 2024", "Jan 2024", "Dec 2023"}, []string{
		insights.MonthlySales[0].Month,
		insights.MonthlySales[1].Month,
		insights.MonthlySales[2].Month,
	})
}

func TestBuildInsightsEmptySnapshot(t *testing.T) {
	insights := BuildInsights(nil, nil, Filter{}, date(2024, time.March, 15))

	require.Zero(t, insights.Total)
	require.Empty(t, insights.BestProduct)
	require.Empty(t, insights.BestStore)
	require.Empty(t, insights.ProductSales)
	require.Empty(t, insights.StoreSales)
	require.Empty(t, insights.MonthlySales)
}
