package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/weenmaint/storefront-api/internal/domain/cart"
	"github.com/weenmaint/storefront-api/internal/domain/order"
)

// placeOrder validates and prices the submitted items server-side, persists
// the order and clears the session's cart on success.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "placeOrder")
	defer span.End()

	var req order.PlaceRequest
	if err := decodePlaceRequest(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.deps.OrderService.Place(ctx, req)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	// The cart served its purpose once the order exists.
	if sessionID := r.Header.Get(sessionHeader); sessionID != "" {
		h.deps.Carts.Mutate(sessionID, func(c *cart.Cart) { c.Clear() })
	}

	h.ordersPlaced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", o.PaymentMethod),
	))

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// getOrder returns a single order by its UUID.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.deps.OrderService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// listOrders serves the back-office order list: ?email=&limit=&offset=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.ListFilter{Email: q.Get("email")}
	f.Limit, f.Offset = pagination(q)

	orders, err := h.deps.OrderService.List(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range orders {
				encodeOrder(e, &orders[i])
			}
		})
	})
}

// updateOrderStatus moves an order through fulfilment.
// Body: {"status": "shipped"}.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var status string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key == "status" {
			var err error
			status, err = d.Str()
			return errors.Wrap(err, key)
		}
		return d.Skip()
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = h.deps.OrderService.UpdateStatus(r.Context(), id, order.Status(status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, order.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "order not found")
		default:
			writeError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	o, err := h.deps.OrderService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// mapOrderError converts domain placement errors to the error envelope.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnf *order.ProductNotFoundError
		iq  *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrMissingContact):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &iq):
		writeError(w, r, http.StatusUnprocessableEntity, iq.Error())
	case errors.As(err, &pnf):
		writeError(w, r, http.StatusUnprocessableEntity, pnf.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

func decodePlaceRequest(r *http.Request, req *order.PlaceRequest) error {
	return decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var item order.RequestItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "product_id":
						item.ProductID, err = d.Int64()
					case "quantity":
						item.Quantity, err = d.Int()
					default:
						return d.Skip()
					}
					return errors.Wrap(err, key)
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "username":
			req.Username, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "telephone":
			req.Telephone, err = d.Str()
		case "location":
			req.Location, err = d.Str()
		case "payment_method":
			req.PaymentMethod, err = d.Str()
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("code", func(e *jx.Encoder) { e.Str(o.Code) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product_id", func(e *jx.Encoder) { e.Int64(item.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("unit_price", func(e *jx.Encoder) { money(e, item.UnitPrice) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { money(e, o.Subtotal) })
		e.Field("shipping", func(e *jx.Encoder) { money(e, o.Shipping) })
		e.Field("tax", func(e *jx.Encoder) { money(e, o.Tax) })
		e.Field("total", func(e *jx.Encoder) { money(e, o.Total) })
		e.Field("username", func(e *jx.Encoder) { e.Str(o.Username) })
		e.Field("email", func(e *jx.Encoder) { e.Str(o.Email) })
		e.Field("telephone", func(e *jx.Encoder) { e.Str(o.Telephone) })
		e.Field("location", func(e *jx.Encoder) { e.Str(o.Location) })
		e.Field("payment_method", func(e *jx.Encoder) { e.Str(o.PaymentMethod) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339)) })
	})
}
