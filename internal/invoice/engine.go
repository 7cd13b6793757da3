// Package invoice holds the totals engine for in-progress invoice drafts:
// line item mutation, derived per-item totals and the subtotal/discount/
// grand-total math. It has no persistence side effects; submission is the
// service layer's job.
package invoice

import (
	"fmt"

	"teaops/backend/internal/domain"
)

// LineItem is one draft entry. Price is captured from the product catalog
// at selection time and is not re-fetched afterwards. Total is always
// re-derived by the engine after any mutation; callers must never write it.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

// Totals are the derived numbers for a set of line items plus a discount
// percentage. All values carry full float64 precision; rounding is a
// display concern.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	GrandTotal     float64 `json:"grand_total"`
}

// Draft is an in-progress invoice. Discount is kept as the raw form input
// and only coerced when totals are computed.
type Draft struct {
	ShopID   string     `json:"shop_id"`
	Channel  string     `json:"channel"`
	Date     string     `json:"date"`
	Discount string     `json:"discount"`
	Status   string     `json:"status"`
	Items    []LineItem `json:"items"`
}

func NewDraft() *Draft {
	return &Draft{
		Channel: domain.ChannelRetail,
		Status:  domain.InvoiceStatusPending,
		Items:   make([]LineItem, 0, 4),
	}
}

// AddItem appends a fresh line with quantity 1 and no product selected.
func (d *Draft) AddItem() {
	d.Items = append(d.Items, LineItem{Quantity: 1})
}

// SetItemProduct looks productID up in the loaded catalog and, if found,
// captures its current price and re-derives the line total. An id outside
// the catalog leaves the line untouched; the entry form offers only known
// products, so an unknown id is not worth an error.
func (d *Draft) SetItemProduct(index int, productID string, catalog []domain.Product) error {
	if index < 0 || index >= len(d.Items) {
		return fmt.Errorf("line item index %d out of range", index)
	}
	for _, product := range catalog {
		if product.ID == productID {
			item := &d.Items[index]
			item.ProductID = product.ID
			item.Price = product.Price
			item.Total = item.Price * float64(item.Quantity)
			return nil
		}
	}
	return nil
}

// SetItemQuantity coerces raw through IntOrZero and re-derives the line
// total. Negative quantities are accepted and produce negative totals.
func (d *Draft) SetItemQuantity(index int, raw string) error {
	if index < 0 || index >= len(d.Items) {
		return fmt.Errorf("line item index %d out of range", index)
	}
	item := &d.Items[index]
	item.Quantity = IntOrZero(raw)
	item.Total = item.Price * float64(item.Quantity)
	return nil
}

// RemoveItem deletes the line at index; later lines shift down.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.Items) {
		return fmt.Errorf("line item index %d out of range", index)
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return nil
}

// Totals computes the draft's derived numbers from its current items and
// discount input.
func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.Discount)
}

// ComputeTotals is the pure totals function shared by the draft and by
// server-side recomputation at submit time.
func ComputeTotals(items []LineItem, rawDiscount string) Totals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Total
	}
	discountAmount := subtotal * FloatOrZero(rawDiscount) / 100
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		GrandTotal:     subtotal - discountAmount,
	}
}

// LinesFromInputs builds engine line items from submitted inputs, pricing
// each line from the catalog. Inputs referencing products missing from
// the catalog price at zero rather than failing, mirroring the draft's
// permissive product lookup.
func LinesFromInputs(inputs []domain.InvoiceItemInput, catalog []domain.Product) []LineItem {
	byID := make(map[string]domain.Product, len(catalog))
	for _, product := range catalog {
		byID[product.ID] = product
	}

	lines := make([]LineItem, 0, len(inputs))
	for _, input := range inputs {
		line := LineItem{ProductID: input.ProductID, Quantity: input.Quantity}
		if product, ok := byID[input.ProductID]; ok {
			line.Price = product.Price
		}
		line.Total = line.Price * float64(line.Quantity)
		lines = append(lines, line)
	}
	return lines
}
