// Package service orchestrates the repositories, the totals engine and
// the aggregation engine behind the HTTP handlers. All writes validate
// here; the stores only enforce structural integrity.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"teaops/backend/internal/analytics"
	"teaops/backend/internal/cache"
	"teaops/backend/internal/domain"
	"teaops/backend/internal/invoice"
	"teaops/backend/internal/metrics"
	"teaops/backend/internal/store"
)

const insightCacheKeyFormat = "insights:%s:%s"

type Service struct {
	repo       store.Repository
	insights   cache.InsightCache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	insightTTL time.Duration
	generation atomic.Uint64
	now        func() time.Time
}

func New(repo store.Repository, insights cache.InsightCache, m *metrics.Metrics, logger zerolog.Logger, insightTTL time.Duration) *Service {
	if insights == nil {
		insights = cache.NoopInsightCache{}
	}
	if insightTTL <= 0 {
		insightTTL = 60 * time.Second
	}

	return &Service{
		repo:       repo,
		insights:   insights,
		metrics:    m,
		logger:     logger,
		insightTTL: insightTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)

	if req.Name == "" || req.Category == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}
	if req.Price < 0 || req.Cost < 0 || req.InventoryLevel < 0 || req.ReorderPoint < 0 {
		return domain.Product{}, store.ErrInvalidRecord
	}

	product := domain.Product{
		Name:           req.Name,
		Description:    strings.TrimSpace(req.Description),
		Category:       req.Category,
		Price:          req.Price,
		Cost:           req.Cost,
		InventoryLevel: req.InventoryLevel,
		ReorderPoint:   req.ReorderPoint,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Name = name
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Category = category
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Price = *req.Price
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.Cost = *req.Cost
	}
	if req.InventoryLevel != nil {
		if *req.InventoryLevel < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.InventoryLevel = *req.InventoryLevel
	}
	if req.ReorderPoint != nil {
		if *req.ReorderPoint < 0 {
			return domain.Product{}, store.ErrInvalidRecord
		}
		updated.ReorderPoint = *req.ReorderPoint
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidRecord
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return s.repo.ListShops(ctx)
}

func (s *Service) GetShop(ctx context.Context, id string) (domain.Shop, error) {
	shop, err := s.repo.GetShopByID(ctx, id)
	if err != nil {
		return domain.Shop{}, err
	}
	return *shop, nil
}

func (s *Service) CreateShop(ctx context.Context, req domain.ShopCreateRequest) (domain.Shop, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Shop{}, store.ErrInvalidRecord
	}

	shop := domain.Shop{
		Name:   req.Name,
		Type:   strings.TrimSpace(req.Type),
		Region: strings.TrimSpace(req.Region),
	}

	created, err := s.repo.CreateShop(ctx, shop)
	if err != nil {
		return domain.Shop{}, err
	}

	s.logger.Info().Str("shop_id", created.ID).Str("name", created.Name).Msg("shop created")
	return *created, nil
}

func (s *Service) UpdateShop(ctx context.Context, id string, req domain.ShopUpdateRequest) (domain.Shop, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Shop{}, store.ErrInvalidRecord
	}

	existing, err := s.repo.GetShopByID(ctx, id)
	if err != nil {
		return domain.Shop{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Shop{}, store.ErrInvalidRecord
		}
		updated.Name = name
	}
	if req.Type != nil {
		updated.Type = strings.TrimSpace(*req.Type)
	}
	if req.Region != nil {
		updated.Region = strings.TrimSpace(*req.Region)
	}

	saved, err := s.repo.UpdateShop(ctx, updated)
	if err != nil {
		return domain.Shop{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteShop(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidRecord
	}
	return s.repo.DeleteShop(ctx, id)
}

// SubmitInvoice commits a sales entry. Totals are always recomputed
// server-side from the catalog, so a client cannot post its own prices.
// The write is two steps, header then lines; if the lines fail the
// header is deleted again so no empty invoice survives. If that
// compensating delete also fails the caller gets ErrInvoiceOrphaned and
// the invoice id for manual cleanup.
func (s *Service) SubmitInvoice(ctx context.Context, req domain.InvoiceSubmitRequest) (domain.InvoiceSubmitResponse, error) {
	req.ShopID = strings.TrimSpace(req.ShopID)
	if req.ShopID == "" {
		s.recordSubmission(metrics.OutcomeRejected)
		return domain.InvoiceSubmitResponse{}, store.ErrInvalidRecord
	}
	if !domain.IsValidChannel(req.Channel) {
		s.recordSubmission(metrics.OutcomeRejected)
		return domain.InvoiceSubmitResponse{}, store.ErrInvalidRecord
	}
	if len(req.Items) == 0 {
		s.recordSubmission(metrics.OutcomeRejected)
		return domain.InvoiceSubmitResponse{}, store.ErrInvalidRecord
	}

	if _, err := s.repo.GetShopByID(ctx, req.ShopID); err != nil {
		s.recordSubmission(submissionOutcome(err))
		return domain.InvoiceSubmitResponse{}, err
	}

	date, err := parseEntryDate(req.Date, s.now())
	if err != nil {
		s.recordSubmission(metrics.OutcomeRejected)
		return domain.InvoiceSubmitResponse{}, store.ErrInvalidRecord
	}

	catalog, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.recordSubmission(metrics.OutcomeFailed)
		return domain.InvoiceSubmitResponse{}, err
	}

	lines := invoice.LinesFromInputs(req.Items, catalog)
	totals := invoice.ComputeTotals(lines, req.Discount)

	header := domain.Invoice{
		ShopID:   req.ShopID,
		Channel:  req.Channel,
		Date:     date,
		Discount: invoice.FloatOrZero(req.Discount),
		Total:    totals.GrandTotal,
		Status:   domain.InvoiceStatusPending,
	}

	created, err := s.repo.CreateInvoice(ctx, header)
	if err != nil {
		s.recordSubmission(submissionOutcome(err))
		return domain.InvoiceSubmitResponse{}, err
	}

	items := make([]domain.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.InvoiceItem{
			InvoiceID: created.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Total:     line.Total,
		})
	}

	if err := s.repo.CreateInvoiceItems(ctx, items); err != nil {
		if delErr := s.repo.DeleteInvoice(ctx, created.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("invoice_id", created.ID).Msg("compensating delete failed, invoice orphaned")
			s.recordSubmission(metrics.OutcomeOrphaned)
			return domain.InvoiceSubmitResponse{}, fmt.Errorf("%w: %s", store.ErrInvoiceOrphaned, created.ID)
		}
		s.recordSubmission(metrics.OutcomeFailed)
		return domain.InvoiceSubmitResponse{}, err
	}

	s.recordSubmission(metrics.OutcomeCommitted)
	s.logger.Info().
		Str("invoice_id", created.ID).
		Str("shop_id", created.ShopID).
		Str("channel", created.Channel).
		Float64("total", created.Total).
		Int("items", len(items)).
		Msg("invoice committed")

	return domain.InvoiceSubmitResponse{
		Invoice:        *created,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		ItemCount:      len(items),
	}, nil
}

func (s *Service) ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit < 1 {
		limit = 500
	}
	return s.repo.ListInvoices(ctx, limit)
}

func (s *Service) GetInvoiceDetail(ctx context.Context, id string) (domain.InvoiceDetailResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.InvoiceDetailResponse{}, store.ErrInvalidRecord
	}

	var (
		header *domain.Invoice
		items  []domain.InvoiceItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		header, err = s.repo.GetInvoiceByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.ListInvoiceItems(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.InvoiceDetailResponse{}, err
	}

	return domain.InvoiceDetailResponse{Invoice: *header, Items: items}, nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.Category = strings.TrimSpace(req.Category)
	if !domain.IsValidExpenseCategory(req.Category) {
		return domain.Expense{}, store.ErrInvalidRecord
	}
	if req.Amount < 0 {
		return domain.Expense{}, store.ErrInvalidRecord
	}

	date, err := parseEntryDate(req.Date, s.now())
	if err != nil {
		return domain.Expense{}, store.ErrInvalidRecord
	}

	expense := domain.Expense{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error) {
	if limit < 1 {
		limit = 500
	}
	return s.repo.ListExpenses(ctx, limit)
}

func (s *Service) CreateFeedback(ctx context.Context, req domain.FeedbackCreateRequest) (domain.Feedback, error) {
	req.InvoiceID = strings.TrimSpace(req.InvoiceID)
	if req.InvoiceID == "" {
		return domain.Feedback{}, store.ErrInvalidRecord
	}
	if req.SatisfactionScore < 1 || req.SatisfactionScore > 5 {
		return domain.Feedback{}, store.ErrInvalidRecord
	}

	feedback := domain.Feedback{
		InvoiceID:         req.InvoiceID,
		SatisfactionScore: req.SatisfactionScore,
		Comments:          strings.TrimSpace(req.Comments),
	}

	created, err := s.repo.CreateFeedback(ctx, feedback)
	if err != nil {
		return domain.Feedback{}, err
	}
	return *created, nil
}

func (s *Service) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit < 1 {
		limit = 500
	}
	return s.repo.ListFeedback(ctx, limit)
}

// DashboardInsights serves the aggregated dashboard for a period and
// channel filter. Full results are cached per filter combination; a
// degraded result (one of the fetches failed) is served but never
// cached, so the next request retries the failed slice.
func (s *Service) DashboardInsights(ctx context.Context, period string, channel string) (domain.DashboardInsights, error) {
	filter := analytics.Filter{Period: period, Channel: channel}.Normalize()
	key := fmt.Sprintf(insightCacheKeyFormat, filter.Period, filter.Channel)

	if cached, found, err := s.insights.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("insight cache read failed")
	} else if found {
		s.recordCacheHit()
		return *cached, nil
	}
	s.recordCacheMiss()

	var (
		invoices []domain.Invoice
		items    []domain.InvoiceItem
		itemsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.repo.ListInvoices(gctx, 0)
		return err
	})
	g.Go(func() error {
		// Item failures degrade the product slice instead of failing the
		// whole dashboard, so the error is captured rather than returned.
		items, itemsErr = s.repo.ListAllInvoiceItems(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardInsights{}, err
	}

	insights := analytics.BuildInsights(invoices, items, filter, s.now())
	insights.Generation = s.generation.Add(1)
	insights.GeneratedAt = s.now().Format(time.RFC3339)
	if s.metrics != nil {
		s.metrics.RecordInsightRebuild()
	}

	if itemsErr != nil {
		s.logger.Warn().Err(itemsErr).Msg("invoice items unavailable, serving partial insights")
		insights.Partial = true
		insights.FailedSlices = []string{"product_sales"}
		insights.ProductSales = []domain.NameValue{}
		insights.BestProduct = ""
		if s.metrics != nil {
			s.metrics.RecordInsightPartial()
		}
		return insights, nil
	}

	if err := s.insights.Set(ctx, key, &insights, s.insightTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("insight cache write failed")
	}
	return insights, nil
}

// submissionOutcome classifies a submit error for the submissions
// counter: sentinel errors are client-input rejections, everything else
// is a backend fault.
func submissionOutcome(err error) string {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidRecord) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func (s *Service) recordCacheHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
}

func (s *Service) recordCacheMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}
}

// parseEntryDate accepts the date formats the entry forms produce. An
// empty input means today.
func parseEntryDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Truncate(24 * time.Hour), nil
	}
	if date, err := time.Parse("2006-01-02", raw); err == nil {
		return date.UTC(), nil
	}
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return date.UTC(), nil
}
