package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"teaops/backend/internal/domain"
	"teaops/backend/internal/store"
)

func TestSeededCatalog(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("expected seeded products")
	}
	for i := 1; i < len(products); i++ {
		if products[i-1].Category > products[i].Category {
			t.Fatalf("products not sorted by category: %v > %v", products[i-1].Category, products[i].Category)
		}
	}

	shops, err := s.ListShops(ctx)
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if len(shops) == 0 {
		t.Fatalf("expected seeded shops")
	}
}

func TestInvoiceJoinPopulatesNames(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	created, err := s.CreateInvoice(ctx, domain.Invoice{
		ShopID:  "shop-galle-kiosk",
		Channel: domain.ChannelRetail,
		Date:    time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Total:   450,
		Status:  domain.InvoiceStatusPending,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if created.ShopName != "Galle Fort Kiosk" {
		t.Fatalf("expected joined shop name, got %q", created.ShopName)
	}

	err = s.CreateInvoiceItems(ctx, []domain.InvoiceItem{
		{InvoiceID: created.ID, ProductID: "prod-ceylon-bop", Quantity: 1, Price: 450, Total: 450},
	})
	if err != nil {
		t.Fatalf("create items: %v", err)
	}

	items, err := s.ListInvoiceItems(ctx, created.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].ProductName != "Ceylon BOP Loose Leaf 250g" {
		t.Fatalf("expected joined product name, got %q", items[0].ProductName)
	}
}

func TestCreateInvoiceItemsRequiresHeader(t *testing.T) {
	s := NewSeeded()

	err := s.CreateInvoiceItems(context.Background(), []domain.InvoiceItem{
		{InvoiceID: "inv-missing", ProductID: "prod-ceylon-bop", Quantity: 1},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteInvoiceRemovesItems(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	created, err := s.CreateInvoice(ctx, domain.Invoice{ShopID: "shop-kandy-outlet", Channel: domain.ChannelDirect, Date: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := s.CreateInvoiceItems(ctx, []domain.InvoiceItem{{InvoiceID: created.ID, ProductID: "prod-earl-grey", Quantity: 2}}); err != nil {
		t.Fatalf("create items: %v", err)
	}

	if err := s.DeleteInvoice(ctx, created.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	if _, err := s.GetInvoiceByID(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected invoice gone, got %v", err)
	}

	all, err := s.ListAllInvoiceItems(ctx)
	if err != nil {
		t.Fatalf("list all items: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected items removed with invoice, got %d", len(all))
	}
}

func TestListInvoicesNewestFirst(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	older := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.CreateInvoice(ctx, domain.Invoice{ID: "inv-old", ShopID: "shop-kandy-outlet", Channel: domain.ChannelRetail, Date: older}); err != nil {
		t.Fatalf("create old: %v", err)
	}
	if _, err := s.CreateInvoice(ctx, domain.Invoice{ID: "inv-new", ShopID: "shop-kandy-outlet", Channel: domain.ChannelRetail, Date: newer}); err != nil {
		t.Fatalf("create new: %v", err)
	}

	invoices, err := s.ListInvoices(ctx, 0)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 2 || invoices[0].ID != "inv-new" {
		t.Fatalf("expected newest first, got %+v", invoices)
	}

	limited, err := s.ListInvoices(ctx, 1)
	if err != nil {
		t.Fatalf("list invoices with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit applied, got %d", len(limited))
	}
}

func TestProductCRUDValidation(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, domain.Product{Name: "", Category: "green", Price: 100}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected invalid record, got %v", err)
	}
	if _, err := s.UpdateProduct(ctx, domain.Product{ID: "prod-missing", Name: "X", Category: "green", Price: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteProduct(ctx, "prod-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}
