package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/anithaparamashivam/oas-e2e/common/errors"
	"github.com/anithaparamashivam/oas-e2e/stub/models"
	"github.com/anithaparamashivam/oas-e2e/stub/services"
)

// OrderController handles HTTP requests for orders.
type OrderController struct {
	orderService services.OrderService
	slowDelay    time.Duration
}

// NewOrderController creates a new OrderController. slowDelay is how long
// SlowEndpoint stalls before giving up.
func NewOrderController(svc services.OrderService, slowDelay time.Duration) *OrderController {
	return &OrderController{orderService: svc, slowDelay: slowDelay}
}

// CreateOrder handles POST /orders
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(ctx, bindError(err))
		return
	}

	order, err := oc.orderService.CreateOrder(ctx.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /orders
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	orders, err := oc.orderService.ListOrders(ctx.Request.Context())
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /orders/:id
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	order, err := oc.orderService.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT and PATCH /orders/:id
func (oc *OrderController) UpdateOrder(ctx *gin.Context) {
	var req models.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(ctx, bindError(err))
		return
	}

	order, err := oc.orderService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id
func (oc *OrderController) DeleteOrder(ctx *gin.Context) {
	if err := oc.orderService.DeleteOrder(ctx.Request.Context(), ctx.Param("id")); err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// EnrichOrder handles POST /orders/:id/enrich
func (oc *OrderController) EnrichOrder(ctx *gin.Context) {
	order, err := oc.orderService.EnrichOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// SlowEndpoint handles GET /orders/slow-endpoint. It stalls for the configured
// delay and then reports a gateway timeout; a client that gives up first ends it early.
func (oc *OrderController) SlowEndpoint(ctx *gin.Context) {
	timer := time.NewTimer(oc.slowDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		apperrors.Respond(ctx, apperrors.ErrGatewayTimeout)
	case <-ctx.Request.Context().Done():
		ctx.Abort()
	}
}

// Health handles GET /health
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return apperrors.ErrInvalidOrder.WithDetails(fields).Wrap(err)
	}
	return apperrors.ErrMalformedBody.WithDetails(err.Error()).Wrap(err)
}
