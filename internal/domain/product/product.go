// Package product defines the catalog item model and its persistence contract.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID              int64
	Name            string
	Slug            string
	Description     string
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
	StockQuantity   int
	InStock         bool
	Category        string
	ImageURL        string
	Promo           bool
	Rating          decimal.Decimal
	NumRatings      int
}

// UnitPrice resolves the effective per-unit price: the discounted price when
// one is set and positive, otherwise the list price. This is the single
// resolution point; callers must not re-implement the fallback inline.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountedPrice != nil && p.DiscountedPrice.IsPositive() {
		return *p.DiscountedPrice
	}
	return p.Price
}

// ListFilter narrows and orders catalog listings.
type ListFilter struct {
	Category string
	Search   string
	MaxPrice *decimal.Decimal
	SortBy   string // "price_asc", "price_desc", "rating"; anything else lists by id
	Limit    int
	Offset   int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
