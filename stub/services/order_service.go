package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/anithaparamashivam/oas-e2e/common/errors"
	"github.com/anithaparamashivam/oas-e2e/common/logger"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
	"github.com/anithaparamashivam/oas-e2e/stub/models"
	repositories "github.com/anithaparamashivam/oas-e2e/stub/repository"
)

// OrderService defines the business logic interface. Every returned error is
// an *apperrors.Error.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	EnrichOrder(ctx context.Context, id string) (*models.Order, error)
}

// MetricsRecorder is implemented by *aws_pkg.MetricsClient.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// Catalog resolves product IDs for enrichment.
type Catalog map[string]models.Product

func NewCatalog(products []models.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

type orderServiceImpl struct {
	repo      repositories.OrderRepository
	catalog   Catalog
	publisher EventPublisher
	metrics   MetricsRecorder
	log       *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher and metrics may be nil.
func NewOrderService(
	repo repositories.OrderRepository,
	catalog Catalog,
	publisher EventPublisher,
	metrics MetricsRecorder,
	log *zap.Logger,
) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderServiceImpl{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.ErrInvalidOrder.WithDetails("at least one item is required")
	}

	now := s.now()
	order := &models.Order{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		Items:      make([]models.OrderItem, 0, len(req.Items)),
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if order.ID == "" {
		order.ID = "ORD-" + uuid.NewString()
	}

	var total float64
	for _, it := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
		total += float64(it.Quantity) * it.Price
	}
	if req.TotalAmount != nil {
		order.TotalAmount = *req.TotalAmount
	} else {
		order.TotalAmount = math.Round(total*100) / 100
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrOrderExists) {
			return nil, apperrors.ErrDuplicateOrder.Wrap(err)
		}
		s.logFor(ctx).Error("Failed to store order", zap.String("order_id", order.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	s.logFor(ctx).Info("Order created", zap.String("order_id", order.ID), zap.String("customer_id", order.CustomerID))
	s.record(ctx, aws_pkg.MetricOrdersCreated)
	s.publish(ctx, models.EventOrderCreated, order)
	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}
	return orders, nil
}

// UpdateStatus moves an order to status. Enriched orders never change status.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.UpdatableStatuses[status] {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]any{"status": status})
	}

	order, err := s.repo.Update(ctx, id, func(o *models.Order) error {
		if o.Status == models.StatusEnriched {
			return apperrors.ErrStatusRegression
		}
		o.Status = status
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}

	s.logFor(ctx).Info("Order status updated", zap.String("order_id", id), zap.String("status", status))
	return order, nil
}

func (s *orderServiceImpl) DeleteOrder(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(ctx, err)
	}
	s.logFor(ctx).Info("Order deleted", zap.String("order_id", id))
	return nil
}

// EnrichOrder fills item details from the catalog and marks the order
// enriched. Any unknown product fails the whole call and leaves the order as
// it was. Enriching an enriched order is a no-op.
func (s *orderServiceImpl) EnrichOrder(ctx context.Context, id string) (*models.Order, error) {
	enriched := false
	order, err := s.repo.Update(ctx, id, func(o *models.Order) error {
		if o.Status == models.StatusEnriched {
			return nil
		}

		var unresolved []string
		for i := range o.Items {
			p, ok := s.catalog[o.Items[i].ProductID]
			if !ok {
				unresolved = append(unresolved, o.Items[i].ProductID)
				continue
			}
			o.Items[i].Name = p.Name
			o.Items[i].Category = p.Category
			o.Items[i].SKU = p.SKU
		}
		if len(unresolved) > 0 {
			sort.Strings(unresolved)
			return apperrors.ErrUnknownProducts.WithDetails(map[string]any{"unresolvedProductIds": unresolved})
		}

		now := s.now()
		o.Status = models.StatusEnriched
		o.EnrichedAt = &now
		o.UpdatedAt = now
		enriched = true
		return nil
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, err)
	}

	if enriched {
		s.logFor(ctx).Info("Order enriched", zap.String("order_id", id), zap.Int("items", len(order.Items)))
		s.record(ctx, aws_pkg.MetricOrdersEnriched)
		s.publish(ctx, models.EventOrderEnriched, order)
	}
	return order, nil
}

func (s *orderServiceImpl) mapRepoError(ctx context.Context, err error) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repositories.ErrOrderNotFound):
		return apperrors.ErrOrderNotFound.Wrap(err)
	case errors.Is(err, repositories.ErrOrderExists):
		return apperrors.ErrDuplicateOrder.Wrap(err)
	}
	s.logFor(ctx).Error("Repository failure", zap.Error(err))
	return apperrors.ErrInternalServer.Wrap(err)
}

// publish is best-effort: failures are logged and never reach the caller.
func (s *orderServiceImpl) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		Order:      order.Clone(),
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logFor(ctx).Warn("Failed to publish order event",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *orderServiceImpl) record(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(context.WithoutCancel(ctx), metric, nil); err != nil {
		s.logFor(ctx).Debug("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

// logFor tags entries with the request ID carried by ctx.
func (s *orderServiceImpl) logFor(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.log)
}
