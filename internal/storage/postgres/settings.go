package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

// The settings table holds exactly one row, pinned to id = 1.
const (
	getSettingsSQL = `SELECT store_name, email, phone, address,
		shipping_cost, free_shipping_threshold, tax_rate, currency
		FROM settings WHERE id = 1`

	insertSettingsSQL = `INSERT INTO settings
		(id, store_name, email, phone, address,
		 shipping_cost, free_shipping_threshold, tax_rate, currency)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	updateSettingsSQL = `UPDATE settings SET
		store_name = $1, email = $2, phone = $3, address = $4,
		shipping_cost = $5, free_shipping_threshold = $6,
		tax_rate = $7, currency = $8
		WHERE id = 1`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository manages the single store settings row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the current store settings, inserting the defaults first when
// the row does not exist yet.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	s, err := r.get(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	def := settings.Defaults()
	if _, err := r.pool.Exec(ctx, insertSettingsSQL,
		def.StoreName, def.Email, def.Phone, def.Address,
		def.ShippingCost, def.FreeShippingThreshold, def.TaxRate, def.Currency,
	); err != nil {
		return nil, fmt.Errorf("seeding default settings: %w", err)
	}

	s, err = r.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting settings after seed: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(
		&s.StoreName, &s.Email, &s.Phone, &s.Address,
		&s.ShippingCost, &s.FreeShippingThreshold, &s.TaxRate, &s.Currency,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update rewrites the settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	tag, err := r.pool.Exec(ctx, updateSettingsSQL,
		s.StoreName, s.Email, s.Phone, s.Address,
		s.ShippingCost, s.FreeShippingThreshold, s.TaxRate, s.Currency,
	)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating settings: row missing")
	}
	return nil
}
