package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/anithaparamashivam/oas-e2e/common/errors"
	"github.com/anithaparamashivam/oas-e2e/common/logger"
	"github.com/anithaparamashivam/oas-e2e/stub/controllers"
	"github.com/anithaparamashivam/oas-e2e/stub/middleware"
)

// Options configures the optional middleware of the orders API.
type Options struct {
	JWTSecret   string
	RateLimit   float64
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds a gin engine serving the orders API.
func NewRouter(oc *controllers.OrderController, opts Options) *gin.Engine {
	r := gin.New()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r.Use(gin.Recovery(), logger.RequestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/health", controllers.Health)
	RegisterOrderRoutes(r, oc, opts)
	return r
}

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, opts Options) {
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(middleware.RateLimitMiddleware(opts.RateLimit))
	if opts.JWTSecret != "" {
		orderRoutes.Use(middleware.AuthMiddleware(opts.JWTSecret))
	}
	orderRoutes.Use(middleware.RequireJSON())

	orderRoutes.POST("", oc.CreateOrder)
	orderRoutes.GET("", oc.ListOrders)
	orderRoutes.GET("/slow-endpoint", oc.SlowEndpoint)
	orderRoutes.GET("/:id", oc.GetOrder)
	orderRoutes.PUT("/:id", oc.UpdateOrder)
	orderRoutes.PATCH("/:id", oc.UpdateOrder)
	orderRoutes.DELETE("/:id", oc.DeleteOrder)
	orderRoutes.POST("/:id/enrich", oc.EnrichOrder)
}
