// Package catalog defines the maintenance services offered alongside the
// product catalog. Services are quoted per intervention (via devis requests)
// rather than added to the cart.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested service does not exist.
var ErrNotFound = errors.New("service not found")

// Service represents one maintenance service on offer.
type Service struct {
	ID           int64
	Name         string
	Slug         string
	Description  string
	Price        decimal.Decimal
	PriceUnit    string // "par intervention", "par heure", ...
	Availability string
	AvgDuration  int // minutes
	ImageURL     string
	Rating       decimal.Decimal
	NumRatings   int
}

// Repository defines read operations for the service catalog.
type Repository interface {
	List(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id int64) (*Service, error)
	GetBySlug(ctx context.Context, slug string) (*Service, error)
}
