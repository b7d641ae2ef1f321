package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/weenmaint/storefront-api/internal/domain/product"
)

// listProducts serves the catalog with optional filters:
// ?category=&search=&max_price=&sort_by=&limit=&offset=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort_by"),
	}
	if v := q.Get("max_price"); v != "" {
		mp, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid max_price")
			return
		}
		f.MaxPrice = &mp
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	products, err := h.deps.Products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range products {
				h.encodeProduct(e, &products[i])
			}
		})
	})
}

// getProduct serves a single product. The path segment is treated as a
// numeric ID first and falls back to a slug lookup, so both
// /api/products/3 and /api/products/robinet-cuisine work.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("id")

	var (
		p   *product.Product
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		p, err = h.deps.Products.GetByID(r.Context(), id)
	} else {
		p, err = h.deps.Products.GetBySlug(r.Context(), ref)
	}
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeProduct(e, p)
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decodeProduct(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if p.Name == "" || p.Slug == "" || !p.Price.IsPositive() {
		writeError(w, r, http.StatusUnprocessableEntity, "name, slug and a positive price are required")
		return
	}

	if err := h.deps.Products.Create(r.Context(), &p); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		h.encodeProduct(e, &p)
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var p product.Product
	if err := decodeProduct(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id

	if err := h.deps.Products.Update(r.Context(), &p); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeProduct(e, &p)
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.deps.Products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) encodeProduct(e *jx.Encoder, p *product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(p.Slug) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { money(e, p.Price) })
		e.Field("discounted_price", func(e *jx.Encoder) { optMoney(e, p.DiscountedPrice) })
		e.Field("stock_quantity", func(e *jx.Encoder) { e.Int(p.StockQuantity) })
		e.Field("in_stock", func(e *jx.Encoder) { e.Bool(p.InStock) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("image_url", func(e *jx.Encoder) { e.Str(h.imageURL(p.ImageURL)) })
		e.Field("promo", func(e *jx.Encoder) { e.Bool(p.Promo) })
		e.Field("rating", func(e *jx.Encoder) { e.RawStr(p.Rating.String()) })
		e.Field("num_ratings", func(e *jx.Encoder) { e.Int(p.NumRatings) })
	})
}

func decodeProduct(r *http.Request, p *product.Product) error {
	return decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "slug":
			p.Slug, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "discounted_price":
			p.DiscountedPrice, err = decodeOptDecimal(d)
		case "stock_quantity":
			p.StockQuantity, err = d.Int()
		case "in_stock":
			p.InStock, err = d.Bool()
		case "category":
			p.Category, err = d.Str()
		case "image_url":
			p.ImageURL, err = d.Str()
		case "promo":
			p.Promo, err = d.Bool()
		case "rating":
			p.Rating, err = decodeDecimal(d)
		case "num_ratings":
			p.NumRatings, err = d.Int()
		default:
			return d.Skip()
		}
		return errors.Wrap(err, key)
	})
}
