// Package memory is the dev/demo repository: everything lives in maps
// behind one RWMutex, seeded with a small tea catalog so the dashboard
// renders something on first boot.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"teaops/backend/internal/domain"
	"teaops/backend/internal/store"
	"teaops/backend/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	products       map[string]domain.Product
	shops          map[string]domain.Shop
	invoicesByID   map[string]domain.Invoice
	itemsByInvoice map[string][]domain.InvoiceItem
	expensesByID   map[string]domain.Expense
	feedbackByID   map[string]domain.Feedback
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	products := []domain.Product{
		{ID: "prod-ceylon-bop", Name: "Ceylon BOP Loose Leaf 250g", Category: "black", Price: 450, Cost: 210, InventoryLevel: 140, ReorderPoint: 30},
		{ID: "prod-earl-grey", Name: "Earl Grey Blend 100g", Category: "black", Price: 380, Cost: 170, InventoryLevel: 95, ReorderPoint: 25},
		{ID: "prod-green-sencha", Name: "Green Sencha 100g", Category: "green", Price: 520, Cost: 260, InventoryLevel: 60, ReorderPoint: 20},
		{ID: "prod-silver-tips", Name: "Silver Tips White Tea 50g", Category: "white", Price: 1250, Cost: 640, InventoryLevel: 24, ReorderPoint: 8},
		{ID: "prod-chai-masala", Name: "Masala Chai Mix 200g", Category: "spiced", Price: 340, Cost: 150, InventoryLevel: 110, ReorderPoint: 30},
		{ID: "prod-gift-sampler", Name: "Tasting Sampler Gift Box", Category: "gift", Price: 1800, Cost: 920, InventoryLevel: 35, ReorderPoint: 10},
	}

	shops := []domain.Shop{
		{ID: "shop-colombo-flagship", Name: "Colombo Flagship", Type: "flagship", Region: "Western"},
		{ID: "shop-kandy-outlet", Name: "Kandy Outlet", Type: "outlet", Region: "Central"},
		{ID: "shop-galle-kiosk", Name: "Galle Fort Kiosk", Type: "kiosk", Region: "Southern"},
	}

	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}
	shopMap := make(map[string]domain.Shop, len(shops))
	for _, sh := range shops {
		sh.CreatedAt = now
		shopMap[sh.ID] = sh
	}

	return &Store{
		products:       productMap,
		shops:          shopMap,
		invoicesByID:   make(map[string]domain.Invoice),
		itemsByInvoice: make(map[string][]domain.InvoiceItem),
		expensesByID:   make(map[string]domain.Expense),
		feedbackByID:   make(map[string]domain.Feedback),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.Price < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrInvalidRecord
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.Price < 0 {
		return nil, store.ErrInvalidRecord
	}
	existing, exists := s.products[product.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListShops(_ context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shops := make([]domain.Shop, 0, len(s.shops))
	for _, sh := range s.shops {
		shops = append(shops, sh)
	}
	slices.SortFunc(shops, func(a, b domain.Shop) int {
		return cmpString(a.Name, b.Name)
	})
	return shops, nil
}

func (s *Store) GetShopByID(_ context.Context, id string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, exists := s.shops[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyShop := shop
	return &copyShop, nil
}

func (s *Store) CreateShop(_ context.Context, shop domain.Shop) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shop.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	if shop.ID == "" {
		shop.ID = xid.New("shop")
	}
	if _, exists := s.shops[shop.ID]; exists {
		return nil, store.ErrInvalidRecord
	}

	shop.CreatedAt = time.Now().UTC()
	s.shops[shop.ID] = shop
	created := shop
	return &created, nil
}

func (s *Store) UpdateShop(_ context.Context, shop domain.Shop) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shop.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	existing, exists := s.shops[shop.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	shop.CreatedAt = existing.CreatedAt
	s.shops[shop.ID] = shop
	updated := shop
	return &updated, nil
}

func (s *Store) DeleteShop(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shops[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.shops, id)
	return nil
}

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invoice.ShopID == "" {
		return nil, store.ErrInvalidRecord
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if _, exists := s.invoicesByID[invoice.ID]; exists {
		return nil, store.ErrInvalidRecord
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	invoice.ShopName = ""
	s.invoicesByID[invoice.ID] = invoice
	created := s.withShopName(invoice)
	return &created, nil
}

func (s *Store) CreateInvoiceItems(_ context.Context, items []domain.InvoiceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if item.InvoiceID == "" {
			return store.ErrInvalidRecord
		}
		if _, exists := s.invoicesByID[item.InvoiceID]; !exists {
			return store.ErrNotFound
		}
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = xid.New("item")
		}
		item.ProductName = ""
		s.itemsByInvoice[item.InvoiceID] = append(s.itemsByInvoice[item.InvoiceID], item)
	}
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoicesByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.invoicesByID, id)
	delete(s.itemsByInvoice, id)
	return nil
}

func (s *Store) ListInvoices(_ context.Context, limit int) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0, len(s.invoicesByID))
	for _, inv := range s.invoicesByID {
		invoices = append(invoices, s.withShopName(inv))
	}
	slices.SortFunc(invoices, func(a, b domain.Invoice) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices, nil
}

func (s *Store) GetInvoiceByID(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoice, exists := s.invoicesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	joined := s.withShopName(invoice)
	return &joined, nil
}

func (s *Store) ListInvoiceItems(_ context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.invoicesByID[invoiceID]; !exists {
		return nil, store.ErrNotFound
	}
	items := s.itemsByInvoice[invoiceID]
	result := make([]domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		result = append(result, s.withProductName(item))
	}
	return result, nil
}

func (s *Store) ListAllInvoiceItems(_ context.Context) ([]domain.InvoiceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InvoiceItem, 0, 64)
	for _, items := range s.itemsByInvoice {
		for _, item := range items {
			result = append(result, s.withProductName(item))
		}
	}
	slices.SortFunc(result, func(a, b domain.InvoiceItem) int {
		if a.InvoiceID == b.InvoiceID {
			return cmpString(a.ID, b.ID)
		}
		return cmpString(a.InvoiceID, b.InvoiceID)
	})
	return result, nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.Category == "" || expense.Amount < 0 {
		return nil, store.ErrInvalidRecord
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	s.expensesByID[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, limit int) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]domain.Expense, 0, len(s.expensesByID))
	for _, e := range s.expensesByID {
		expenses = append(expenses, e)
	}
	slices.SortFunc(expenses, func(a, b domain.Expense) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses, nil
}

func (s *Store) CreateFeedback(_ context.Context, feedback domain.Feedback) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if feedback.InvoiceID == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, exists := s.invoicesByID[feedback.InvoiceID]; !exists {
		return nil, store.ErrNotFound
	}
	if feedback.ID == "" {
		feedback.ID = xid.New("fb")
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	s.feedbackByID[feedback.ID] = feedback
	created := feedback
	return &created, nil
}

func (s *Store) ListFeedback(_ context.Context, limit int) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feedback := make([]domain.Feedback, 0, len(s.feedbackByID))
	for _, f := range s.feedbackByID {
		feedback = append(feedback, f)
	}
	slices.SortFunc(feedback, func(a, b domain.Feedback) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(feedback) > limit {
		feedback = feedback[:limit]
	}
	return feedback, nil
}

// withShopName projects the shop directory join onto a read. Callers
// must hold at least the read lock.
func (s *Store) withShopName(invoice domain.Invoice) domain.Invoice {
	if shop, exists := s.shops[invoice.ShopID]; exists {
		invoice.ShopName = shop.Name
	}
	return invoice
}

func (s *Store) withProductName(item domain.InvoiceItem) domain.InvoiceItem {
	if product, exists := s.products[item.ProductID]; exists {
		item.ProductName = product.Name
	}
	return item
}

func cmpString(a, b string) int {
	return strings.Compare(a, b)
}
