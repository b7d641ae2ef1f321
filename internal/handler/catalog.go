package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/weenmaint/storefront-api/internal/domain/catalog"
)

// listServices serves the maintenance service catalog.
func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.deps.Services.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range services {
				h.encodeService(e, &services[i])
			}
		})
	})
}

// getService serves a single service by slug.
func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Services.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "service not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeService(e, s)
	})
}

func (h *Handler) encodeService(e *jx.Encoder, s *catalog.Service) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(s.Slug) })
		e.Field("description", func(e *jx.Encoder) { e.Str(s.Description) })
		e.Field("price", func(e *jx.Encoder) { money(e, s.Price) })
		e.Field("price_unit", func(e *jx.Encoder) { e.Str(s.PriceUnit) })
		e.Field("availability", func(e *jx.Encoder) { e.Str(s.Availability) })
		e.Field("avg_duration", func(e *jx.Encoder) { e.Int(s.AvgDuration) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(h.imageURL(s.ImageURL)) })
		e.Field("rating", func(e *jx.Encoder) { e.RawStr(s.Rating.String()) })
		e.Field("num_ratings", func(e *jx.Encoder) { e.Int(s.NumRatings) })
	})
}
