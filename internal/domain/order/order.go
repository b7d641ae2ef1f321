package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks an order through fulfilment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Item is a single order line with the unit price locked at purchase time.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order represents a placed customer order with its full pricing breakdown
// snapshotted at placement. The breakdown is never recomputed from live
// settings afterwards; a later policy change must not reprice history.
type Order struct {
	ID            string
	Code          string
	Status        Status
	Items         []Item
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Username      string
	Email         string
	Telephone     string
	Location      string
	PaymentMethod string
	CreatedAt     time.Time
}

// ListFilter narrows order listings.
type ListFilter struct {
	Email  string // restrict to orders placed under this email; empty lists all
	Limit  int
	Offset int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
