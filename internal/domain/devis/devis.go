// Package devis handles service quotation requests: a customer asks for an
// estimate on a catalog service, the back office reviews it and answers with
// a quoted price.
package devis

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status tracks a quotation request through review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusQuoted   Status = "quoted"
	StatusClosed   Status = "closed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusQuoted, StatusClosed:
		return true
	}
	return false
}

// Devis is a single quotation request.
type Devis struct {
	ID                int64
	ServiceID         int64
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           string
	City              string
	PostalCode        string
	Description       string
	PreferredTimeline string
	Status            Status
	EstimatedPrice    *decimal.Decimal
	FinalPrice        *decimal.Decimal
	CreatedAt         time.Time
}

// ListFilter narrows devis listings.
type ListFilter struct {
	ServiceID int64 // 0 lists all services
	Email     string
	Limit     int
	Offset    int
}

// Repository defines persistence operations for quotation requests.
type Repository interface {
	Create(ctx context.Context, d *Devis) error
	GetByID(ctx context.Context, id int64) (*Devis, error)
	List(ctx context.Context, f ListFilter) ([]Devis, error)
	UpdateStatus(ctx context.Context, id int64, status Status, finalPrice *decimal.Decimal) error
}
