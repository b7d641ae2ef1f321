// Package pricing derives order totals from cart lines and the store-wide
// pricing policy. All arithmetic is decimal and carries full precision;
// rounding to 2 decimal places happens only at presentation time via
// Totals.Rounded, so tax is never re-derived from an already-rounded subtotal.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	zero    = decimal.Zero
)

// Policy holds the store-wide pricing parameters. It is configuration
// supplied by the settings repository, never computed.
type Policy struct {
	// ShippingFlatFee is charged when the subtotal is below the
	// free-shipping threshold.
	ShippingFlatFee decimal.Decimal
	// FreeShippingThreshold waives shipping once the subtotal reaches it.
	// A zero threshold disables the free-shipping rule entirely.
	FreeShippingThreshold decimal.Decimal
	// TaxRate is a fraction in [0, 1), applied to the subtotal only.
	TaxRate decimal.Decimal
}

// Line is the minimal view of a cart line the engine prices.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the full pricing breakdown for a cart. It is always recomputed
// from current cart state, never cached or mutated independently.
type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Rounded returns a copy with every amount rounded to 2 decimal places for
// display. The receiver keeps full precision.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:   t.Subtotal.Round(2),
		Shipping:   t.Shipping.Round(2),
		Tax:        t.Tax.Round(2),
		GrandTotal: t.GrandTotal.Round(2),
	}
}

// Subtotal returns the sum of line totals. An empty line set yields zero.
func Subtotal(lines []Line) decimal.Decimal {
	sum := zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Shipping returns the shipping charge for the given subtotal.
//
// Free shipping applies only when the threshold is positive AND the subtotal
// reaches it. A threshold of zero means "no free-shipping rule configured",
// not "always free": a naive subtotal >= 0 check would waive shipping on
// every order.
func Shipping(subtotal decimal.Decimal, p Policy) decimal.Decimal {
	if p.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return zero
	}
	return p.ShippingFlatFee
}

// Tax returns subtotal * TaxRate. Tax is never applied to shipping.
func Tax(subtotal decimal.Decimal, p Policy) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// Compute derives the full breakdown for the given lines.
//
// An empty cart prices to all-zero totals: the storefront never charges
// shipping on a cart with nothing in it, matching the cart summary view.
// Shipping remains total over its whole input domain for callers that price
// a bare subtotal.
func Compute(lines []Line, p Policy) Totals {
	if len(lines) == 0 {
		return Totals{Subtotal: zero, Shipping: zero, Tax: zero, GrandTotal: zero}
	}

	subtotal := Subtotal(lines)
	shipping := Shipping(subtotal, p)
	tax := Tax(subtotal, p)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}

// NormalizeTaxRate converts a stored tax rate to a fraction. Store settings
// historically persist the rate as a percentage (19.0 rather than 0.19), so
// any value above 1 is divided by 100.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(one) {
		return rate.Div(hundred)
	}
	return rate
}
