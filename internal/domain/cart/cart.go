// Package cart implements the per-session shopping cart: an ordered set of
// lines keyed by product ID, with the mutation semantics the storefront UI
// relies on (merge on add, silent removal on drop-to-zero, idempotent remove).
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/pricing"
	"github.com/weenmaint/storefront-api/internal/domain/product"
)

// Line is one product entry in the cart. UnitPrice is locked in when the
// line is created, so a later catalog price change does not silently reprice
// an open cart.
type Line struct {
	ProductID int64
	Name      string
	Slug      string
	ImageURL  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice * Quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines, at most one per product.
// It is owned by a single session and is not safe for concurrent use;
// the session store serializes access.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends a line for the product, seeding the unit price from the
// product's effective price. If a line for the product already exists its
// quantity is incremented instead, keeping the originally locked-in price.
// Quantities below 1 are lifted to 1.
func (c *Cart) Add(p product.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity += quantity
			return
		}
	}

	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		ImageURL:  p.ImageURL,
		UnitPrice: p.UnitPrice(),
		Quantity:  quantity,
	})
}

// UpdateQuantity replaces the quantity of the product's line. A quantity of
// zero or below removes the line entirely; that is deliberate policy (the UI
// has no "zero" display state), not an error. Updating an absent product is
// a no-op.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	if quantity < 1 {
		c.Remove(productID)
		return
	}

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Remove deletes the product's line. Removing an absent product is a no-op,
// so Remove is idempotent.
func (c *Cart) Remove(productID int64) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Called after a successful order submission.
func (c *Cart) Clear() {
	c.lines = nil
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal returns the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.PricingLines())
}

// PricingLines projects the cart into the pricing engine's line view.
func (c *Cart) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, len(c.lines))
	for i, l := range c.lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return lines
}

// Totals prices the cart under the given policy.
func (c *Cart) Totals(p pricing.Policy) pricing.Totals {
	return pricing.Compute(c.PricingLines(), p)
}
