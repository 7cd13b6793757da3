package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"teaops/backend/internal/domain"
	"teaops/backend/internal/store"
	"teaops/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, cost, inventory_level, reorder_point, created_at, updated_at
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost, &p.InventoryLevel, &p.ReorderPoint, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, cost, inventory_level, reorder_point, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost, &p.InventoryLevel, &p.ReorderPoint, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" || product.Price < 0 {
		return nil, store.ErrInvalidRecord
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, category, price, cost, inventory_level, reorder_point, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, product.ID, product.Name, product.Description, product.Category, product.Price, product.Cost, product.InventoryLevel, product.ReorderPoint, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Category == "" || product.Price < 0 {
		return nil, store.ErrInvalidRecord
	}

	product.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, cost = $6, inventory_level = $7, reorder_point = $8, updated_at = $9
		WHERE id = $1
	`, product.ID, product.Name, product.Description, product.Category, product.Price, product.Cost, product.InventoryLevel, product.ReorderPoint, product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, region, created_at
		FROM shops
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := make([]domain.Shop, 0, 16)
	for rows.Next() {
		var sh domain.Shop
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.Type, &sh.Region, &sh.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shops, nil
}

func (s *Store) GetShopByID(ctx context.Context, id string) (*domain.Shop, error) {
	var sh domain.Shop
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, region, created_at
		FROM shops
		WHERE id = $1
	`, id).Scan(&sh.ID, &sh.Name, &sh.Type, &sh.Region, &sh.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sh, nil
}

func (s *Store) CreateShop(ctx context.Context, shop domain.Shop) (*domain.Shop, error) {
	if shop.Name == "" {
		return nil, store.ErrInvalidRecord
	}
	if shop.ID == "" {
		shop.ID = xid.New("shop")
	}

	shop.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shops (id, name, type, region, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, shop.ID, shop.Name, shop.Type, shop.Region, shop.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := shop
	return &created, nil
}

func (s *Store) UpdateShop(ctx context.Context, shop domain.Shop) (*domain.Shop, error) {
	if shop.Name == "" {
		return nil, store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE shops
		SET name = $2, type = $3, region = $4
		WHERE id = $1
	`, shop.ID, shop.Name, shop.Type, shop.Region)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := shop
	return &updated, nil
}

func (s *Store) DeleteShop(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.ShopID == "" {
		return nil, store.ErrInvalidRecord
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, shop_id, channel, invoice_date, discount, total, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, invoice.ID, invoice.ShopID, invoice.Channel, invoice.Date, invoice.Discount, invoice.Total, invoice.Status, invoice.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	return s.GetInvoiceByID(ctx, invoice.ID)
}

// CreateInvoiceItems inserts all lines in one transaction so a partial
// batch never becomes visible.
func (s *Store) CreateInvoiceItems(ctx context.Context, items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if item.InvoiceID == "" {
			return store.ErrInvalidRecord
		}
		if item.ID == "" {
			item.ID = xid.New("item")
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (id, invoice_id, product_id, quantity, price, total)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, item.ID, item.InvoiceID, item.ProductID, item.Quantity, item.Price, item.Total)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrInvalidRecord
			}
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// ListInvoices returns invoices newest first. A limit below 1 means no
// cap; the aggregation path reads the whole table.
func (s *Store) ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit < 1 {
		limit = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.shop_id, COALESCE(sh.name, ''), i.channel, i.invoice_date, i.discount, i.total, i.status, i.created_at
		FROM invoices i
		LEFT JOIN shops sh ON sh.id = i.shop_id
		ORDER BY i.invoice_date DESC, i.id DESC
		LIMIT NULLIF($1, 0)
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, 128)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.ShopID, &inv.ShopName, &inv.Channel, &inv.Date, &inv.Discount, &inv.Total, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Date = inv.Date.UTC()
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.shop_id, COALESCE(sh.name, ''), i.channel, i.invoice_date, i.discount, i.total, i.status, i.created_at
		FROM invoices i
		LEFT JOIN shops sh ON sh.id = i.shop_id
		WHERE i.id = $1
	`, id).Scan(&inv.ID, &inv.ShopID, &inv.ShopName, &inv.Channel, &inv.Date, &inv.Discount, &inv.Total, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	inv.Date = inv.Date.UTC()
	return &inv, nil
}

func (s *Store) ListInvoiceItems(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	if _, err := s.GetInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, COALESCE(p.name, ''), it.quantity, it.price, it.total
		FROM invoice_items it
		LEFT JOIN products p ON p.id = it.product_id
		WHERE it.invoice_id = $1
		ORDER BY it.id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0, 8)
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListAllInvoiceItems(ctx context.Context) ([]domain.InvoiceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, COALESCE(p.name, ''), it.quantity, it.price, it.total
		FROM invoice_items it
		LEFT JOIN products p ON p.id = it.product_id
		ORDER BY it.invoice_id, it.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0, 256)
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.Category == "" || expense.Amount < 0 {
		return nil, store.ErrInvalidRecord
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, category, amount, description, expense_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, expense.ID, expense.Category, expense.Amount, expense.Description, expense.Date, expense.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error) {
	if limit < 1 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, description, expense_date, created_at
		FROM expenses
		ORDER BY expense_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, limit)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Amount, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = e.Date.UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) CreateFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Feedback, error) {
	if feedback.InvoiceID == "" {
		return nil, store.ErrInvalidRecord
	}
	if _, err := s.GetInvoiceByID(ctx, feedback.InvoiceID); err != nil {
		return nil, err
	}
	if feedback.ID == "" {
		feedback.ID = xid.New("fb")
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, invoice_id, satisfaction_score, comments, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, feedback.ID, feedback.InvoiceID, feedback.SatisfactionScore, feedback.Comments, feedback.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRecord
		}
		return nil, err
	}

	created := feedback
	return &created, nil
}

func (s *Store) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit < 1 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, satisfaction_score, comments, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback := make([]domain.Feedback, 0, limit)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.InvoiceID, &f.SatisfactionScore, &f.Comments, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedback = append(feedback, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feedback, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
