package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weenmaint/storefront-api/internal/domain/auth"
	"github.com/weenmaint/storefront-api/internal/domain/cart"
	"github.com/weenmaint/storefront-api/internal/domain/catalog"
	"github.com/weenmaint/storefront-api/internal/domain/devis"
	"github.com/weenmaint/storefront-api/internal/domain/order"
	"github.com/weenmaint/storefront-api/internal/domain/product"
	"github.com/weenmaint/storefront-api/internal/domain/settings"
)

type fakeProductRepo struct {
	byID map[int64]product.Product
}

func (f *fakeProductRepo) List(_ context.Context, _ product.ListFilter) ([]product.Product, error) {
	out := make([]product.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	p.ID = int64(len(f.byID) + 1)
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	if _, ok := f.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSettingsRepo struct {
	s settings.Settings
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*settings.Settings, error) {
	s := f.s
	return &s, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, s *settings.Settings) error {
	f.s = *s
	return nil
}

type fakeOrderRepo struct {
	byID map[string]order.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	f.byID[o.ID] = *o
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ order.ListFilter) ([]order.Order, error) {
	out := make([]order.Order, 0, len(f.byID))
	for _, o := range f.byID {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o, ok := f.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	f.byID[id] = o
	return nil
}

type fakeCatalogRepo struct {
	services []catalog.Service
}

func (f *fakeCatalogRepo) List(_ context.Context) ([]catalog.Service, error) {
	return f.services, nil
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, id int64) (*catalog.Service, error) {
	for _, s := range f.services {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) GetBySlug(_ context.Context, slug string) (*catalog.Service, error) {
	for _, s := range f.services {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

type fakeDevisRepo struct {
	byID map[int64]devis.Devis
}

func (f *fakeDevisRepo) Create(_ context.Context, d *devis.Devis) error {
	d.ID = int64(len(f.byID) + 1)
	f.byID[d.ID] = *d
	return nil
}

func (f *fakeDevisRepo) GetByID(_ context.Context, id int64) (*devis.Devis, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, devis.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDevisRepo) List(_ context.Context, _ devis.ListFilter) ([]devis.Devis, error) {
	out := make([]devis.Devis, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDevisRepo) UpdateStatus(_ context.Context, id int64, status devis.Status, price *decimal.Decimal) error {
	d, ok := f.byID[id]
	if !ok {
		return devis.ErrNotFound
	}
	d.Status = status
	if price != nil {
		d.FinalPrice = price
	}
	f.byID[id] = d
	return nil
}

type fakeAPIKeyRepo struct {
	byHash map[string]auth.APIKeyInfo
}

func (f *fakeAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := f.byHash[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return &info, nil
}

const testAPIKey = "test-admin-key"

var testPepper = []byte("test-pepper")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestHandler(t *testing.T) (*Handler, *fakeProductRepo, *fakeOrderRepo) {
	t.Helper()

	products := &fakeProductRepo{byID: map[int64]product.Product{
		1: {
			ID: 1, Name: "Robinet cuisine", Slug: "robinet-cuisine",
			Price: dec("45.50"), InStock: true, StockQuantity: 10,
		},
		2: {
			ID: 2, Name: "Mitigeur thermostatique", Slug: "mitigeur-thermostatique",
			Price: dec("120.00"), InStock: true, StockQuantity: 5,
		},
	}}
	orders := &fakeOrderRepo{byID: map[string]order.Order{}}
	devisRepo := &fakeDevisRepo{byID: map[int64]devis.Devis{}}
	services := &fakeCatalogRepo{services: []catalog.Service{
		{ID: 7, Name: "Plomberie", Slug: "plomberie", Price: dec("80.00"), PriceUnit: "par intervention"},
	}}
	store := &fakeSettingsRepo{s: settings.Defaults()}
	keys := &fakeAPIKeyRepo{byHash: map[string]auth.APIKeyInfo{}}

	hash := HashAPIKey(testAPIKey, testPepper)
	keys.byHash[hash] = auth.APIKeyInfo{ID: "k1", KeyHash: hash, Name: "test"}

	h, err := New(
		Config{APIKeyPepper: testPepper},
		Deps{
			Products:     products,
			Services:     services,
			Settings:     store,
			APIKeys:      keys,
			Carts:        cart.NewStore(time.Hour),
			OrderService: order.NewService(products, store, orders),
			DevisService: devis.NewService(services, devisRepo),
		},
	)
	require.NoError(t, err)

	return h, products, orders
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("{}")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestGetCart_NewSession(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := rec.Header().Get(sessionHeader)
	require.NotEmpty(t, sessionID)

	m := decodeMap(t, rec)
	assert.Equal(t, sessionID, m["session_id"])
	assert.Equal(t, float64(0), m["item_count"])
	assert.Equal(t, float64(0), m["subtotal"])
	assert.Equal(t, float64(0), m["shipping"])
	assert.Equal(t, float64(0), m["total"])
	assert.Equal(t, "DT", m["currency"])
}

func TestCart_AddAndPrice(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decodeMap(t, rec)
	// 2 * 45.50 = 91.00, below the 100 threshold: shipping 12, tax 19%.
	assert.Equal(t, 91.0, m["subtotal"])
	assert.Equal(t, 12.0, m["shipping"])
	assert.Equal(t, 17.29, m["tax"])
	assert.Equal(t, 120.29, m["total"])
	assert.Equal(t, float64(2), m["item_count"])
}

func TestCart_MergeKeepsSession(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 1}`, nil)
	session := rec.Header().Get(sessionHeader)
	require.NotEmpty(t, session)

	hdr := map[string]string{sessionHeader: session}
	rec = doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 2}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decodeMap(t, rec)
	items := m["items"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(3), line["quantity"])
}

func TestCart_FreeShippingAtThreshold(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 2, "quantity": 1}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decodeMap(t, rec)
	assert.Equal(t, 120.0, m["subtotal"])
	assert.Equal(t, 0.0, m["shipping"])
}

func TestCart_UpdateToZeroRemovesLine(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 2}`, nil)
	session := rec.Header().Get(sessionHeader)
	hdr := map[string]string{sessionHeader: session}

	rec = doJSON(t, routes, http.MethodPatch, "/api/cart/items/1",
		`{"quantity": 0}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decodeMap(t, rec)
	assert.Empty(t, m["items"])
	assert.Equal(t, float64(0), m["subtotal"])
	assert.Equal(t, float64(0), m["shipping"])
}

func TestCart_RemoveUnknownProductIsNoop(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodDelete, "/api/cart/items/99", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCart_AddUnknownProduct(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 99, "quantity": 1}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	h, _, orders := newTestHandler(t)
	routes := h.Routes()

	body := `{
		"items": [{"product_id": 1, "quantity": 2}],
		"username": "Ahmed",
		"email": "ahmed@example.tn",
		"telephone": "+216 20 000 000",
		"location": "Tunis",
		"payment_method": "cash_on_delivery"
	}`
	rec := doJSON(t, routes, http.MethodPost, "/api/orders", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	m := decodeMap(t, rec)
	assert.Equal(t, "pending", m["status"])
	assert.Regexp(t, `^\d{5}-\d{5}-\d{5}-\d{5}$`, m["code"])
	assert.Equal(t, 91.0, m["subtotal"])
	assert.Equal(t, 12.0, m["shipping"])
	assert.Equal(t, 17.29, m["tax"])
	assert.Equal(t, 120.29, m["total"])

	require.Len(t, orders.byID, 1)
}

func TestPlaceOrder_ClearsCart(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 1}`, nil)
	session := rec.Header().Get(sessionHeader)
	hdr := map[string]string{sessionHeader: session}

	body := `{
		"items": [{"product_id": 1, "quantity": 1}],
		"username": "Ahmed",
		"email": "ahmed@example.tn",
		"telephone": "+216 20 000 000",
		"location": "Tunis",
		"payment_method": "cash_on_delivery"
	}`
	rec = doJSON(t, routes, http.MethodPost, "/api/orders", body, hdr)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, routes, http.MethodGet, "/api/cart", "", hdr)
	m := decodeMap(t, rec)
	assert.Empty(t, m["items"])
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	body := `{
		"items": [{"product_id": 99, "quantity": 1}],
		"username": "Ahmed",
		"email": "ahmed@example.tn",
		"telephone": "+216 20 000 000",
		"location": "Tunis"
	}`
	rec := doJSON(t, routes, http.MethodPost, "/api/orders", body, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	m := decodeMap(t, rec)
	assert.Equal(t, float64(http.StatusUnprocessableEntity), m["code"])
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/orders",
		`{"items": [], "username": "A", "email": "a@b.c", "telephone": "1", "location": "X"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct_BySlugFallback(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/products/robinet-cuisine", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decodeMap(t, rec)
	assert.Equal(t, float64(1), m["id"])
	assert.Equal(t, 45.5, m["price"])
}

func TestGetProduct_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/products/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	m := decodeMap(t, rec)
	assert.Equal(t, float64(404), m["code"])
	assert.Equal(t, "product not found", m["message"])
}

func TestAdminEndpoints_RequireAPIKey(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, routes, http.MethodGet, "/api/orders", "",
		map[string]string{"X-API-Key": "wrong-key"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, routes, http.MethodGet, "/api/orders", "",
		map[string]string{"X-API-Key": testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateSettings_RepricesCart(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items",
		`{"product_id": 1, "quantity": 2}`, nil)
	session := rec.Header().Get(sessionHeader)
	hdr := map[string]string{sessionHeader: session}

	admin := map[string]string{"X-API-Key": testAPIKey}
	rec = doJSON(t, routes, http.MethodPut, "/api/settings",
		`{"shipping_cost": 0, "tax_rate": 0}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, routes, http.MethodGet, "/api/cart", "", hdr)
	m := decodeMap(t, rec)
	assert.Equal(t, 91.0, m["subtotal"])
	assert.Equal(t, 0.0, m["shipping"])
	assert.Equal(t, 0.0, m["tax"])
	assert.Equal(t, 91.0, m["total"])
}

func TestCreateDevis(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	body := `{
		"service_id": 7,
		"first_name": "Leïla",
		"last_name": "Trabelsi",
		"email": "leila@example.tn",
		"phone": "+216 22 111 222",
		"address": "5 Avenue Habib Bourguiba",
		"city": "Sousse",
		"description": "Fuite sous l'évier"
	}`
	rec := doJSON(t, routes, http.MethodPost, "/api/devis", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	m := decodeMap(t, rec)
	assert.Equal(t, "pending", m["status"])
	assert.Equal(t, 80.0, m["estimated_price"])
	assert.Nil(t, m["final_price"])
}

func TestListServices(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var services []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	require.Len(t, services, 1)
	assert.Equal(t, "plomberie", services[0]["slug"])
}
