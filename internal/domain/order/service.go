package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/weenmaint/storefront-api/internal/domain/pricing"
	"github.com/weenmaint/storefront-api/internal/domain/product"
	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems     = fmt.Errorf("items required")
	ErrNotFound       = fmt.Errorf("order not found")
	ErrInvalidStatus  = fmt.Errorf("invalid order status")
	ErrMissingContact = fmt.Errorf("name, email, telephone and location are required")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	Items         []RequestItem
	Username      string
	Email         string
	Telephone     string
	Location      string
	PaymentMethod string
}

// RequestItem identifies a product and quantity in a place request. Unit
// prices are always resolved server-side from the catalog, never trusted
// from the client.
type RequestItem struct {
	ProductID int64
	Quantity  int
}

// Service encapsulates order placement and tracking business logic.
type Service struct {
	products product.Repository
	settings settings.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products product.Repository,
	store settings.Repository,
	orders Repository,
) *Service {
	return &Service{
		products: products,
		settings: store,
		orders:   orders,
		now:      time.Now,
	}
}

// Place validates the request, resolves unit prices from the catalog in a
// single batch fetch, prices the order under the current store policy,
// persists it, and returns it with the pricing breakdown snapshotted.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.Username == "" || req.Email == "" || req.Telephone == "" || req.Location == "" {
		return nil, ErrMissingContact
	}

	// Validate quantities and collect product IDs.
	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	productMap := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Verify every requested product was found and lock in unit prices.
	items := make([]Item, len(req.Items))
	lines := make([]pricing.Line, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		unit := p.UnitPrice()
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: unit,
			Quantity:  item.Quantity,
		}
		lines[i] = pricing.Line{UnitPrice: unit, Quantity: item.Quantity}
	}

	// Price under the current store policy.
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	totals := pricing.Compute(lines, cfg.Policy())

	o := &Order{
		ID:            uuid.New().String(),
		Code:          generateCode(),
		Status:        StatusPending,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.GrandTotal,
		Username:      req.Username,
		Email:         req.Email,
		Telephone:     req.Telephone,
		Location:      req.Location,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// Get returns a single order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	return s.orders.List(ctx, f)
}

// UpdateStatus moves an order to the given status after validating it.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

// generateCode builds the human-readable order code customers quote on the
// phone: four groups of five digits.
func generateCode() string {
	group := func() int { return 10000 + rand.IntN(90000) }
	return fmt.Sprintf("%d-%d-%d-%d", group(), group(), group(), group())
}
