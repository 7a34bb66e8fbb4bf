package fixtures

// Order is the request/response shape of the orders API.
type Order struct {
	ID          string      `json:"id,omitempty"`
	CustomerID  string      `json:"customerId" validate:"required"`
	Items       []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64     `json:"totalAmount,omitempty" validate:"gte=0"`
	Status      string      `json:"status,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// OrderItem is a single order line.
type OrderItem struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// EnrichedItem is an order line after catalog enrichment.
type EnrichedItem struct {
	OrderItem
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	SKU      string `json:"sku,omitempty"`
}

// EnrichedOrder is an order as returned after enrichment.
type EnrichedOrder struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customerId"`
	Items       []EnrichedItem `json:"items"`
	TotalAmount float64        `json:"totalAmount,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	EnrichedAt  string         `json:"enrichedAt,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	SKU      string  `json:"sku"`
}

// Catalog is the product catalog fixture.
type Catalog struct {
	Products []Product `json:"products"`
}

// Lookup finds a product by ID.
func (c Catalog) Lookup(productID string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}
