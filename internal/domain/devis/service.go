package devis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/catalog"
)

// Sentinel errors for quotation validation.
var (
	ErrNotFound       = fmt.Errorf("devis not found")
	ErrInvalidStatus  = fmt.Errorf("invalid devis status")
	ErrMissingFields  = fmt.Errorf("first name, last name, email, phone, address and description are required")
	ErrUnknownService = fmt.Errorf("unknown service")
)

// CreateRequest holds the input for a new quotation request.
type CreateRequest struct {
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
}

// Service encapsulates quotation intake and review logic.
type Service struct {
	services catalog.Repository
	devis    Repository
	now      func() time.Time
}

// NewService creates a devis Service with the required dependencies.
func NewService(services catalog.Repository, repo Repository) *Service {
	return &Service{
		services: services,
		devis:    repo,
		now:      time.Now,
	}
}

// Create validates the request, verifies the target service exists, seeds
// the estimated price from the service's base price, and persists the
// quotation in pending state.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Devis, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Phone == "" || req.Address == "" || req.Description == "" {
		return nil, ErrMissingFields
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrUnknownService
		}
		return nil, fmt.Errorf("get service %d: %w", req.ServiceID, err)
	}

	estimated := svc.Price
	d := &Devis{
		ServiceID:         svc.ID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		City:              req.City,
		PostalCode:        req.PostalCode,
		Description:       req.Description,
		PreferredTimeline: req.PreferredTimeline,
		Status:            StatusPending,
		EstimatedPrice:    &estimated,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.devis.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create devis: %w", err)
	}

	return d, nil
}

// Get returns a single quotation by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Devis, error) {
	return s.devis.GetByID(ctx, id)
}

// List returns quotations matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Devis, error) {
	return s.devis.List(ctx, f)
}

// UpdateStatus moves a quotation to the given status, optionally recording
// the final quoted price. A final price is only meaningful once quoted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status, finalPrice *decimal.Decimal) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.devis.UpdateStatus(ctx, id, status, finalPrice)
}
