package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/weenmaint/storefront-api/internal/domain/cart"
	"github.com/weenmaint/storefront-api/internal/domain/pricing"
	"github.com/weenmaint/storefront-api/internal/domain/product"
	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

// sessionHeader carries the cart session ID. A request without one gets a
// fresh session; the ID is always echoed back so the client can persist it.
const sessionHeader = "X-Session-ID"

// session resolves the cart session for the request, creating one when the
// header is absent, and echoes the ID on the response.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		id, _ = h.deps.Carts.NewSession()
	}
	w.Header().Set(sessionHeader, id)
	return id
}

// cartView is a consistent snapshot of a session's cart, priced under the
// current policy. Taken while holding the store lock.
type cartView struct {
	Lines     []cart.Line
	ItemCount int
	Totals    pricing.Totals
	Currency  string
}

func (h *Handler) snapshotCart(sessionID string, s *settings.Settings) cartView {
	var v cartView
	h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) {
		v.Lines = c.Lines()
		v.ItemCount = c.ItemCount()
		v.Totals = c.Totals(s.Policy())
	})
	v.Currency = s.Currency
	return v
}

// getCart returns the session's cart with its full pricing breakdown.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)
	h.respondCart(w, r, sessionID)
}

// addCartItem adds a product to the cart, merging quantities when the
// product is already present. Body: {"product_id": 3, "quantity": 2}.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var (
		productID int64
		quantity  = 1
	)
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product_id":
			productID, err = d.Int64()
		case "quantity":
			quantity, err = d.Int()
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if productID == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "product_id is required")
		return
	}

	p, err := h.deps.Products.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) {
		c.Add(*p, quantity)
	})

	h.respondCart(w, r, sessionID)
}

// updateCartItem sets the quantity of an existing line. A quantity of zero
// or below removes the line. Body: {"quantity": 3}.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var quantity int
	err = decodeBody(r, func(d *jx.Decoder, key string) error {
		if key == "quantity" {
			var err error
			quantity, err = d.Int()
			return errors.Wrap(err, key)
		}
		return d.Skip()
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) {
		c.UpdateQuantity(productID, quantity)
	})

	h.respondCart(w, r, sessionID)
}

// removeCartItem drops a line from the cart. Removing an absent product is
// not an error.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) {
		c.Remove(productID)
	})

	h.respondCart(w, r, sessionID)
}

// clearCart empties the session's cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) {
		c.Clear()
	})

	h.respondCart(w, r, sessionID)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	s, err := h.deps.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	v := h.snapshotCart(sessionID, s)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("session_id", func(e *jx.Encoder) { e.Str(sessionID) })
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, l := range v.Lines {
						h.encodeCartLine(e, l)
					}
				})
			})
			e.Field("item_count", func(e *jx.Encoder) { e.Int(v.ItemCount) })
			e.Field("subtotal", func(e *jx.Encoder) { money(e, v.Totals.Subtotal) })
			e.Field("shipping", func(e *jx.Encoder) { money(e, v.Totals.Shipping) })
			e.Field("tax", func(e *jx.Encoder) { money(e, v.Totals.Tax) })
			e.Field("total", func(e *jx.Encoder) { money(e, v.Totals.GrandTotal) })
			e.Field("currency", func(e *jx.Encoder) { e.Str(v.Currency) })
		})
	})
}

func (h *Handler) encodeCartLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Int64(l.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(l.Slug) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(h.imageURL(l.ImageURL)) })
		e.Field("unit_price", func(e *jx.Encoder) { money(e, l.UnitPrice) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("total", func(e *jx.Encoder) { money(e, l.Total()) })
	})
}
