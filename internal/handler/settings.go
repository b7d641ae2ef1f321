package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

// getSettings serves the store configuration. The storefront reads the
// contact block and currency; the pricing fields let the UI show the free
// shipping progress bar without a cart round-trip.
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeSettings(e, s)
	})
}

// updateSettings rewrites the store configuration. Fields omitted from the
// body keep their current value.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	err = decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "store_name":
			s.StoreName, err = d.Str()
		case "email":
			s.Email, err = d.Str()
		case "phone":
			s.Phone, err = d.Str()
		case "address":
			s.Address, err = d.Str()
		case "shipping_cost":
			s.ShippingCost, err = decodeDecimal(d)
		case "free_shipping_threshold":
			s.FreeShippingThreshold, err = decodeDecimal(d)
		case "tax_rate":
			s.TaxRate, err = decodeDecimal(d)
		case "currency":
			s.Currency, err = d.Str()
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if s.ShippingCost.IsNegative() || s.FreeShippingThreshold.IsNegative() || s.TaxRate.IsNegative() {
		writeError(w, r, http.StatusUnprocessableEntity, "pricing fields must not be negative")
		return
	}

	if err := h.deps.Settings.Update(r.Context(), s); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeSettings(e, s)
	})
}

func encodeSettings(e *jx.Encoder, s *settings.Settings) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("store_name", func(e *jx.Encoder) { e.Str(s.StoreName) })
		e.Field("email", func(e *jx.Encoder) { e.Str(s.Email) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(s.Phone) })
		e.Field("address", func(e *jx.Encoder) { e.Str(s.Address) })
		e.Field("shipping_cost", func(e *jx.Encoder) { money(e, s.ShippingCost) })
		e.Field("free_shipping_threshold", func(e *jx.Encoder) { money(e, s.FreeShippingThreshold) })
		e.Field("tax_rate", func(e *jx.Encoder) { e.RawStr(s.TaxRate.String()) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(s.Currency) })
	})
}
