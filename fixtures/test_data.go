package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fixture file names.
const (
	ValidOrdersFile          = "orders.valid.json"
	InvalidOrdersFile        = "orders.invalid.json"
	CatalogFile              = "catalog.fixture.json"
	AssembledOrderSchemaFile = "assembled-order.schema.json"
)

// Defaults for the generated sample order.
const (
	DefaultProductID = "PROD-001"
	DefaultPrice     = 29.99
)

// OrderOverride replaces fields of a generated order.
type OrderOverride func(*Order)

// ItemOverride replaces fields of a generated item.
type ItemOverride func(*OrderItem)

// TestData generates orders and loads fixture documents.
type TestData struct {
	source Source
	now    func() time.Time
}

// NewTestData returns a TestData reading fixtures from source.
func NewTestData(source Source) *TestData {
	return &TestData{source: source, now: time.Now}
}

// GenerateOrderID returns a random order ID.
func (d *TestData) GenerateOrderID() string {
	return "ORD-" + uuid.NewString()
}

// GenerateCustomerID returns a random customer ID.
func (d *TestData) GenerateCustomerID() string {
	return "CUST-" + uuid.NewString()
}

// CreateSampleOrder builds a single-item valid order and applies overrides in order.
func (d *TestData) CreateSampleOrder(overrides ...OrderOverride) Order {
	order := Order{
		ID:          d.GenerateOrderID(),
		CustomerID:  d.GenerateCustomerID(),
		Items:       []OrderItem{d.CreateOrderItem()},
		TotalAmount: DefaultPrice,
		Status:      "pending",
		CreatedAt:   d.now().UTC().Format(time.RFC3339Nano),
	}
	for _, o := range overrides {
		o(&order)
	}
	return order
}

// CreateOrderItem builds a valid item for DefaultProductID.
func (d *TestData) CreateOrderItem(overrides ...ItemOverride) OrderItem {
	item := OrderItem{
		ProductID: DefaultProductID,
		Quantity:  1,
		Price:     DefaultPrice,
	}
	for _, o := range overrides {
		o(&item)
	}
	return item
}

// WithID sets the order ID. An empty ID leaves assignment to the service.
func WithID(id string) OrderOverride {
	return func(o *Order) { o.ID = id }
}

// WithCustomerID sets the customer ID.
func WithCustomerID(id string) OrderOverride {
	return func(o *Order) { o.CustomerID = id }
}

// WithItems replaces the items wholesale. No arguments yields an empty list.
func WithItems(items ...OrderItem) OrderOverride {
	return func(o *Order) {
		o.Items = append([]OrderItem{}, items...)
	}
}

// WithTotalAmount sets the total.
func WithTotalAmount(total float64) OrderOverride {
	return func(o *Order) { o.TotalAmount = total }
}

// WithStatus sets the status.
func WithStatus(status string) OrderOverride {
	return func(o *Order) { o.Status = status }
}

// WithProductID sets an item's product.
func WithProductID(id string) ItemOverride {
	return func(i *OrderItem) { i.ProductID = id }
}

// WithQuantity sets an item's quantity.
func WithQuantity(q int) ItemOverride {
	return func(i *OrderItem) { i.Quantity = q }
}

// WithPrice sets an item's unit price.
func WithPrice(p float64) ItemOverride {
	return func(i *OrderItem) { i.Price = p }
}

// LoadValidOrders loads orders.valid.json.
func (d *TestData) LoadValidOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := d.load(ctx, ValidOrdersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// LoadInvalidOrders loads orders.invalid.json.
func (d *TestData) LoadInvalidOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := d.load(ctx, InvalidOrdersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// LoadCatalog loads catalog.fixture.json.
func (d *TestData) LoadCatalog(ctx context.Context) (Catalog, error) {
	var catalog Catalog
	if err := d.load(ctx, CatalogFile, &catalog); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// LoadAssembledOrderSchema returns the raw assembled-order JSON schema.
func (d *TestData) LoadAssembledOrderSchema(ctx context.Context) (json.RawMessage, error) {
	var schema json.RawMessage
	if err := d.load(ctx, AssembledOrderSchemaFile, &schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (d *TestData) load(ctx context.Context, name string, out any) error {
	b, err := d.source.Read(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}
