package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anithaparamashivam/oas-e2e/common/errors"
	"github.com/anithaparamashivam/oas-e2e/stub/controllers"
	"github.com/anithaparamashivam/oas-e2e/stub/models"
)

// ---- concrete mock implementing services.OrderService ----

type concreteMockSvc struct {
	order     *models.Order
	orders    []models.Order
	err       error
	lastReq   *models.CreateOrderRequest
	lastState string
}

func (m *concreteMockSvc) CreateOrder(_ context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	m.lastReq = req
	return m.order, m.err
}
func (m *concreteMockSvc) GetOrder(context.Context, string) (*models.Order, error) {
	return m.order, m.err
}
func (m *concreteMockSvc) ListOrders(context.Context) ([]models.Order, error) {
	return m.orders, m.err
}
func (m *concreteMockSvc) UpdateStatus(_ context.Context, _ string, status string) (*models.Order, error) {
	m.lastState = status
	return m.order, m.err
}
func (m *concreteMockSvc) DeleteOrder(context.Context, string) error {
	return m.err
}
func (m *concreteMockSvc) EnrichOrder(context.Context, string) (*models.Order, error) {
	return m.order, m.err
}

// ---- helpers ----

func setupRouter(svc *concreteMockSvc, slow time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewOrderController(svc, slow)

	r.POST("/orders", c.CreateOrder)
	r.GET("/orders", c.ListOrders)
	r.GET("/orders/slow-endpoint", c.SlowEndpoint)
	r.GET("/orders/:id", c.GetOrder)
	r.PUT("/orders/:id", c.UpdateOrder)
	r.DELETE("/orders/:id", c.DeleteOrder)
	r.POST("/orders/:id/enrich", c.EnrichOrder)
	r.GET("/health", controllers.Health)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Contains(t, out, "error")
	return out
}

// ---- tests ----

func TestCreateOrder_Success(t *testing.T) {
	svc := &concreteMockSvc{order: &models.Order{ID: "ORD-1", CustomerID: "CUST-1", Status: models.StatusPending}}
	r := setupRouter(svc, time.Second)

	w := doJSON(r, http.MethodPost, "/orders", map[string]any{
		"customerId": "CUST-1",
		"items":      []map[string]any{{"productId": "PROD-001", "quantity": 2, "price": 29.99}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"ORD-1"`)
	require.NotNil(t, svc.lastReq)
	assert.Equal(t, 2, svc.lastReq.Items[0].Quantity)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	r := setupRouter(&concreteMockSvc{}, time.Second)

	tests := []struct {
		name string
		body any
	}{
		{"missing customer", map[string]any{"items": []map[string]any{{"productId": "PROD-001", "quantity": 1, "price": 1}}}},
		{"empty items", map[string]any{"customerId": "CUST-1", "items": []any{}}},
		{"negative quantity", map[string]any{"customerId": "CUST-1", "items": []map[string]any{{"productId": "PROD-001", "quantity": -1, "price": 1}}}},
		{"zero quantity", map[string]any{"customerId": "CUST-1", "items": []map[string]any{{"productId": "PROD-001", "quantity": 0, "price": 1}}}},
		{"negative price", map[string]any{"customerId": "CUST-1", "items": []map[string]any{{"productId": "PROD-001", "quantity": 1, "price": -29.99}}}},
		{"malformed json", `{ "invalid": json }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			errorBody(t, w)
		})
	}
}

func TestCreateOrder_ServiceError(t *testing.T) {
	svc := &concreteMockSvc{err: apperrors.ErrDuplicateOrder}
	r := setupRouter(svc, time.Second)

	w := doJSON(r, http.MethodPost, "/orders", map[string]any{
		"id":         "ORD-1",
		"customerId": "CUST-1",
		"items":      []map[string]any{{"productId": "PROD-001", "quantity": 1, "price": 29.99}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Order already exists", errorBody(t, w)["error"])
}

func TestListOrders_ReturnsArray(t *testing.T) {
	svc := &concreteMockSvc{orders: []models.Order{{ID: "ORD-1"}, {ID: "ORD-2"}}}
	r := setupRouter(svc, time.Second)

	w := doJSON(r, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

func TestGetOrder_NotFound(t *testing.T) {
	r := setupRouter(&concreteMockSvc{err: apperrors.ErrOrderNotFound}, time.Second)

	w := doJSON(r, http.MethodGet, "/orders/ORD-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", errorBody(t, w)["error"])
}

func TestUpdateOrder(t *testing.T) {
	svc := &concreteMockSvc{order: &models.Order{ID: "ORD-1", Status: models.StatusConfirmed}}
	r := setupRouter(svc, time.Second)

	w := doJSON(r, http.MethodPut, "/orders/ORD-1", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", svc.lastState)

	w = doJSON(r, http.MethodPut, "/orders/ORD-1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	r := setupRouter(&concreteMockSvc{}, time.Second)
	w := doJSON(r, http.MethodDelete, "/orders/ORD-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestEnrichOrder_UnknownProducts(t *testing.T) {
	svc := &concreteMockSvc{err: apperrors.ErrUnknownProducts.WithDetails(map[string]any{
		"unresolvedProductIds": []string{"PROD-UNKNOWN"},
	})}
	r := setupRouter(svc, time.Second)

	w := doJSON(r, http.MethodPost, "/orders/ORD-1/enrich", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "PROD-UNKNOWN")
}

func TestSlowEndpoint_ReturnsGatewayTimeout(t *testing.T) {
	r := setupRouter(&concreteMockSvc{}, 10*time.Millisecond)

	w := doJSON(r, http.MethodGet, "/orders/slow-endpoint", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestHealth(t *testing.T) {
	r := setupRouter(&concreteMockSvc{}, time.Second)
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
