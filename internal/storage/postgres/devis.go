package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/devis"
)

const devisColumns = `id, service_id, first_name, last_name, email, phone,
	address, city, postal_code, description, preferred_timeline, status,
	estimated_price, final_price, created_at`

const (
	createDevisSQL = `INSERT INTO devis
		(service_id, first_name, last_name, email, phone, address, city,
		 postal_code, description, preferred_timeline, status,
		 estimated_price, final_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	getDevisByIDSQL = `SELECT ` + devisColumns + ` FROM devis WHERE id = $1`

	updateDevisStatusSQL = `UPDATE devis SET
		status = $2,
		final_price = COALESCE($3, final_price)
		WHERE id = $1`
)

var _ devis.Repository = (*DevisRepository)(nil)

// DevisRepository implements devis.Repository backed by PostgreSQL.
type DevisRepository struct {
	pool *pgxpool.Pool
}

// NewDevisRepository returns a DevisRepository that uses the given pool.
func NewDevisRepository(pool *pgxpool.Pool) *DevisRepository {
	return &DevisRepository{pool: pool}
}

// Create persists a quotation request and fills in its generated ID.
func (r *DevisRepository) Create(ctx context.Context, d *devis.Devis) error {
	err := r.pool.QueryRow(ctx, createDevisSQL,
		d.ServiceID, d.FirstName, d.LastName, d.Email, d.Phone,
		d.Address, d.City, d.PostalCode, d.Description, d.PreferredTimeline,
		d.Status, nullDecimal(d.EstimatedPrice), nullDecimal(d.FinalPrice),
		d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("creating devis: %w", err)
	}
	return nil
}

// GetByID returns a single quotation request.
func (r *DevisRepository) GetByID(ctx context.Context, id int64) (*devis.Devis, error) {
	rows, err := r.pool.Query(ctx, getDevisByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting devis: %w", err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDevis)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, devis.ErrNotFound
		}
		return nil, fmt.Errorf("getting devis: %w", err)
	}
	return &d, nil
}

// List returns quotation requests matching the filter, newest first.
func (r *DevisRepository) List(ctx context.Context, f devis.ListFilter) ([]devis.Devis, error) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)
	sb.WriteString(`SELECT ` + devisColumns + ` FROM devis`)

	if f.ServiceID != 0 {
		args = append(args, f.ServiceID)
		conds = append(conds, "service_id = $"+strconv.Itoa(len(args)))
	}
	if f.Email != "" {
		args = append(args, f.Email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing devis: %w", err)
	}
	return pgx.CollectRows(rows, scanDevis)
}

// UpdateStatus moves a quotation to the given status, keeping the existing
// final price when none is supplied.
func (r *DevisRepository) UpdateStatus(ctx context.Context, id int64, status devis.Status, finalPrice *decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, updateDevisStatusSQL, id, status, nullDecimal(finalPrice))
	if err != nil {
		return fmt.Errorf("updating devis %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return devis.ErrNotFound
	}
	return nil
}

func scanDevis(row pgx.CollectableRow) (devis.Devis, error) {
	var (
		d          devis.Devis
		estimated  decimal.NullDecimal
		finalPrice decimal.NullDecimal
	)
	err := row.Scan(
		&d.ID, &d.ServiceID, &d.FirstName, &d.LastName, &d.Email, &d.Phone,
		&d.Address, &d.City, &d.PostalCode, &d.Description, &d.PreferredTimeline,
		&d.Status, &estimated, &finalPrice, &d.CreatedAt,
	)
	if estimated.Valid {
		v := estimated.Decimal
		d.EstimatedPrice = &v
	}
	if finalPrice.Valid {
		v := finalPrice.Decimal
		d.FinalPrice = &v
	}
	return d, err
}
