package store

import (
	"context"
	"errors"

	"teaops/backend/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRecord   = errors.New("invalid record")
	ErrInvoiceOrphaned = errors.New("invoice orphaned")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListShops(ctx context.Context) ([]domain.Shop, error)
	GetShopByID(ctx context.Context, id string) (*domain.Shop, error)
	CreateShop(ctx context.Context, shop domain.Shop) (*domain.Shop, error)
	UpdateShop(ctx context.Context, shop domain.Shop) (*domain.Shop, error)
	DeleteShop(ctx context.Context, id string) error
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	CreateInvoiceItems(ctx context.Context, items []domain.InvoiceItem) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error)
	GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoiceItems(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error)
	ListAllInvoiceItems(ctx context.Context) ([]domain.InvoiceItem, error)
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error)
	CreateFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Feedback, error)
	ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error)
}
