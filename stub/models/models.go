package models

import "time"

// Order statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusEnriched   = "enriched"
)

// UpdatableStatuses are the statuses a client may set directly. StatusEnriched
// is reached only through enrichment.
var UpdatableStatuses = map[string]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category,omitempty"`
	SKU       string  `json:"sku,omitempty"`
}

type Order struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customerId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	EnrichedAt  *time.Time  `json:"enrichedAt,omitempty"`
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	if o.EnrichedAt != nil {
		t := *o.EnrichedAt
		cp.EnrichedAt = &t
	}
	return &cp
}

type CreateOrderItem struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"gt=0"`
	Price     float64 `json:"price" binding:"gte=0"`
}

type CreateOrderRequest struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customerId" binding:"required"`
	Items       []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	TotalAmount *float64          `json:"totalAmount" binding:"omitempty,gte=0"`
}

type UpdateOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	SKU      string  `json:"sku"`
}

// Event types published by the service.
const (
	EventOrderCreated  = "ORDER_CREATED"
	EventOrderEnriched = "ORDER_ENRICHED"
)

// OrderEvent is published after an order is created or enriched.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	Order      *Order    `json:"order"`
	OccurredAt time.Time `json:"occurredAt"`
}
