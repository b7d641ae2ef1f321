// Package settings holds the store-wide configuration that feeds the
// pricing policy: shipping fee, free-shipping threshold, and tax rate,
// alongside the store contact details shown in the storefront footer.
package settings

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/pricing"
)

// Settings is the single store-wide configuration row.
type Settings struct {
	StoreName             string
	Email                 string
	Phone                 string
	Address               string
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	// TaxRate is persisted as a percentage (19.0 means 19%); Policy
	// normalizes it to a fraction.
	TaxRate  decimal.Decimal
	Currency string
}

// Defaults returns the settings used when no row exists yet.
func Defaults() Settings {
	return Settings{
		StoreName:             "Ween-Maintenance.tn",
		Email:                 "info@ween-maintenance.tn",
		Phone:                 "+216 27 553 981",
		Address:               "Tunis, Tunisie",
		ShippingCost:          decimal.NewFromInt(12),
		FreeShippingThreshold: decimal.NewFromInt(100),
		TaxRate:               decimal.NewFromInt(19),
		Currency:              "DT",
	}
}

// Policy converts the stored settings into a pricing policy, normalizing
// the tax rate to a fraction.
func (s Settings) Policy() pricing.Policy {
	return pricing.Policy{
		ShippingFlatFee:       s.ShippingCost,
		FreeShippingThreshold: s.FreeShippingThreshold,
		TaxRate:               pricing.NormalizeTaxRate(s.TaxRate),
	}
}

// Repository provides access to the settings row.
type Repository interface {
	// Get returns the current settings, creating the default row when
	// none exists.
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}
