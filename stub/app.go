// Package stub assembles an in-memory orders service implementing the HTTP
// surface exercised by the e2e suite.
package stub

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/fixtures"
	"github.com/anithaparamashivam/oas-e2e/stub/controllers"
	"github.com/anithaparamashivam/oas-e2e/stub/models"
	repositories "github.com/anithaparamashivam/oas-e2e/stub/repository"
	"github.com/anithaparamashivam/oas-e2e/stub/routes"
	"github.com/anithaparamashivam/oas-e2e/stub/services"
)

type Config struct {
	Products    []models.Product
	SlowDelay   time.Duration
	JWTSecret   string
	RateLimit   float64
	CORSOrigins []string
	Publisher   services.EventPublisher
	Metrics     services.MetricsRecorder
	Logger      *zap.Logger
}

// NewRouter wires repository, service, controller and routes.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SlowDelay <= 0 {
		cfg.SlowDelay = 2 * time.Second
	}

	repo := repositories.NewMemoryOrderRepository()
	svc := services.NewOrderService(repo, services.NewCatalog(cfg.Products), cfg.Publisher, cfg.Metrics, cfg.Logger)
	oc := controllers.NewOrderController(svc, cfg.SlowDelay)

	return routes.NewRouter(oc, routes.Options{
		JWTSecret:   cfg.JWTSecret,
		RateLimit:   cfg.RateLimit,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      cfg.Logger,
	})
}

// ProductsFromCatalog converts the catalog fixture into service products.
func ProductsFromCatalog(c fixtures.Catalog) []models.Product {
	out := make([]models.Product, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, models.Product{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Stock:    p.Stock,
			SKU:      p.SKU,
		})
	}
	return out
}
