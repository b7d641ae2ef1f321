package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/devis"
)

// createDevis receives a quotation request from the storefront.
func (h *Handler) createDevis(w http.ResponseWriter, r *http.Request) {
	var req devis.CreateRequest
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "service_id":
			req.ServiceID, err = d.Int64()
		case "first_name":
			req.FirstName, err = d.Str()
		case "last_name":
			req.LastName, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "phone":
			req.Phone, err = d.Str()
		case "address":
			req.Address, err = d.Str()
		case "city":
			req.City, err = d.Str()
		case "postal_code":
			req.PostalCode, err = d.Str()
		case "description":
			req.Description, err = d.Str()
		case "preferred_timeline":
			req.PreferredTimeline, err = d.Str()
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.deps.DevisService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, devis.ErrMissingFields):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, devis.ErrUnknownService):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeDevis(e, created)
	})
}

// listDevis serves the back-office quotation list:
// ?service_id=&email=&limit=&offset=.
func (h *Handler) listDevis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := devis.ListFilter{Email: q.Get("email")}
	f.ServiceID, _ = strconv.ParseInt(q.Get("service_id"), 10, 64)
	f.Limit, f.Offset = pagination(q)

	list, err := h.deps.DevisService.List(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range list {
				encodeDevis(e, &list[i])
			}
		})
	})
}

// getDevis serves a single quotation for review.
func (h *Handler) getDevis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid devis id")
		return
	}

	d, err := h.deps.DevisService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, devis.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "devis not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDevis(e, d)
	})
}

// updateDevisStatus moves a quotation through review, optionally recording
// the final quoted price. Body: {"status": "quoted", "final_price": 95.00}.
func (h *Handler) updateDevisStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid devis id")
		return
	}

	var (
		status     string
		finalPrice *decimal.Decimal
	)
	err = decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "status":
			status, err = d.Str()
		case "final_price":
			finalPrice, err = decodeOptDecimal(d)
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = h.deps.DevisService.UpdateStatus(r.Context(), id, devis.Status(status), finalPrice)
	if err != nil {
		switch {
		case errors.Is(err, devis.ErrInvalidStatus):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, devis.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "devis not found")
		default:
			writeError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	d, err := h.deps.DevisService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDevis(e, d)
	})
}

func encodeDevis(e *jx.Encoder, d *devis.Devis) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(d.ID) })
		e.Field("service_id", func(e *jx.Encoder) { e.Int64(d.ServiceID) })
		e.Field("first_name", func(e *jx.Encoder) { e.Str(d.FirstName) })
		e.Field("last_name", func(e *jx.Encoder) { e.Str(d.LastName) })
		e.Field("email", func(e *jx.Encoder) { e.Str(d.Email) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(d.Phone) })
		e.Field("address", func(e *jx.Encoder) { e.Str(d.Address) })
		e.Field("city", func(e *jx.Encoder) { e.Str(d.City) })
		e.Field("postal_code", func(e *jx.Encoder) { e.Str(d.PostalCode) })
		e.Field("description", func(e *jx.Encoder) { e.Str(d.Description) })
		e.Field("preferred_timeline", func(e *jx.Encoder) { e.Str(d.PreferredTimeline) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(d.Status)) })
		e.Field("estimated_price", func(e *jx.Encoder) { optMoney(e, d.EstimatedPrice) })
		e.Field("final_price", func(e *jx.Encoder) { optMoney(e, d.FinalPrice) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(d.CreatedAt.Format(time.RFC3339)) })
	})
}
