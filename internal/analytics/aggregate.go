// Package analytics is the pure aggregation engine behind the dashboard:
// it filters a snapshot of invoices and line items and groups them into
// product, store and monthly views. Inputs are never mutated and every
// run is a full recompute, so identical inputs always produce identical
// buckets.
package analytics

import (
	"sort"
	"time"

	"teaops/backend/internal/domain"
)

// Filter selects the invoice slice the dashboard aggregates over.
type Filter struct {
	Period  string
	Channel string
}

func (f Filter) Normalize() Filter {
	if f.Period != domain.PeriodMonth && f.Period != domain.PeriodYear {
		f.Period = domain.PeriodAll
	}
	if f.Channel != domain.ChannelRetail && f.Channel != domain.ChannelDirect {
		f.Channel = domain.ChannelAll
	}
	return f
}

// FilterInvoices applies the period filter against now's calendar month
// and year, then the channel filter. The input slice is left untouched.
func FilterInvoices(invoices []domain.Invoice, filter Filter, now time.Time) []domain.Invoice {
	filter = filter.Normalize()

	kept := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		switch filter.Period {
		case domain.PeriodMonth:
			if inv.Date.Month() != now.Month() || inv.Date.Year() != now.Year() {
				continue
			}
		case domain.PeriodYear:
			if inv.Date.Year() != now.Year() {
				continue
			}
		}
		if filter.Channel != domain.ChannelAll && inv.Channel != filter.Channel {
			continue
		}
		kept = append(kept, inv)
	}
	return kept
}

// BuildInsights produces the three dashboard views plus headline totals
// from one snapshot of invoices and items. The period and channel filter
// applies to every view, including the product and store slices: items
// only count when their parent invoice passed the filter.
func BuildInsights(invoices []domain.Invoice, items []domain.InvoiceItem, filter Filter, now time.Time) domain.DashboardInsights {
	filtered := FilterInvoices(invoices, filter, now)

	total := 0.0
	directTotal := 0.0
	for _, inv := range filtered {
		total += inv.Total
		if inv.Channel == domain.ChannelDirect {
			directTotal += inv.Total
		}
	}

	products := productSales(filtered, items)
	stores := storeSales(filtered)

	insights := domain.DashboardInsights{
		Total:        total,
		DirectTotal:  directTotal,
		ProductSales: products,
		StoreSales:   stores,
		MonthlySales: monthlySales(filtered),
	}
	if len(products) > 0 {
		insights.BestProduct = products[0].Name
	}
	if len(stores) > 0 {
		insights.BestStore = stores[0].Name
	}
	return insights
}

// productSales groups items by joined product name, summing line totals.
// Items without a product name (deleted product, broken join) are skipped.
func productSales(filtered []domain.Invoice, items []domain.InvoiceItem) []domain.NameValue {
	allowed := make(map[string]bool, len(filtered))
	for _, inv := range filtered {
		allowed[inv.ID] = true
	}

	totals := make(map[string]float64, 16)
	order := make([]string, 0, 16)
	for _, item := range items {
		if !allowed[item.InvoiceID] || item.ProductName == "" {
			continue
		}
		if _, seen := totals[item.ProductName]; !seen {
			order = append(order, item.ProductName)
		}
		totals[item.ProductName] += item.Total
	}

	return sortedDescending(totals, order)
}

// storeSales groups filtered invoices by joined shop name.
func storeSales(filtered []domain.Invoice) []domain.NameValue {
	totals := make(map[string]float64, 8)
	order := make([]string, 0, 8)
	for _, inv := range filtered {
		if inv.ShopName == "" {
			continue
		}
		if _, seen := totals[inv.ShopName]; !seen {
			order = append(order, inv.ShopName)
		}
		totals[inv.ShopName] += inv.Total
	}

	return sortedDescending(totals, order)
}

// monthlySales buckets filtered invoices by "Jan 2006" label. Bucket
// order is the first-encounter order of each label while iterating the
// filtered set. An invoice always feeds its bucket's total; it feeds
// retail or direct only when its channel is exactly one of the two.
func monthlySales(filtered []domain.Invoice) []domain.MonthlyBucket {
	index := make(map[string]int, 12)
	buckets := make([]domain.MonthlyBucket, 0, 12)

	for _, inv := range filtered {
		label := inv.Date.Format("Jan 2006")
		pos, ok := index[label]
		if !ok {
			pos = len(buckets)
			index[label] = pos
			buckets = append(buckets, domain.MonthlyBucket{Month: label})
		}

		buckets[pos].Total += inv.Total
		switch inv.Channel {
		case domain.ChannelRetail:
			buckets[pos].Retail += inv.Total
		case domain.ChannelDirect:
			buckets[pos].Direct += inv.Total
		}
	}
	return buckets
}

// sortedDescending orders the accumulated totals by value descending,
// breaking ties by first-encounter order so results are deterministic.
func sortedDescending(totals map[string]float64, order []string) []domain.NameValue {
	result := make([]domain.NameValue, 0, len(order))
	for _, name := range order {
		result = append(result, domain.NameValue{Name: name, Value: totals[name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Value > result[j].Value
	})
	return result
}
