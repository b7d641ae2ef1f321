package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weenmaint/storefront-api/internal/domain/catalog"
)

const serviceColumns = `id, name, slug, description, price, price_unit,
	availability, avg_duration, image_url, rating, num_ratings`

const (
	listServicesSQL = `SELECT ` + serviceColumns + ` FROM services ORDER BY id`

	getServiceByIDSQL = `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	getServiceBySlugSQL = `SELECT ` + serviceColumns + ` FROM services WHERE slug = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository provides read access to the maintenance service catalog.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all services on offer.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Service, error) {
	rows, err := r.pool.Query(ctx, listServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return pgx.CollectRows(rows, scanService)
}

// GetByID returns a single service by its identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Service, error) {
	return r.getOne(ctx, getServiceByIDSQL, id)
}

// GetBySlug returns a single service by its URL slug.
func (r *CatalogRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Service, error) {
	return r.getOne(ctx, getServiceBySlugSQL, slug)
}

func (r *CatalogRepository) getOne(ctx context.Context, sql string, arg any) (*catalog.Service, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting service: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting service: %w", err)
	}
	return &s, nil
}

func scanService(row pgx.CollectableRow) (catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.Price, &s.PriceUnit,
		&s.Availability, &s.AvgDuration, &s.ImageURL, &s.Rating, &s.NumRatings,
	)
	return s, err
}
