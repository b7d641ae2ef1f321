package devis

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weenmaint/storefront-api/internal/domain/catalog"
)

type mockCatalogRepo struct {
	byID map[int64]catalog.Service
}

func (m *mockCatalogRepo) List(_ context.Context) ([]catalog.Service, error) { return nil, nil }

func (m *mockCatalogRepo) GetByID(_ context.Context, id int64) (*catalog.Service, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &s, nil
}

func (m *mockCatalogRepo) GetBySlug(_ context.Context, _ string) (*catalog.Service, error) {
	return nil, catalog.ErrNotFound
}

type mockDevisRepo struct {
	last       *Devis
	lastStatus Status
	lastPrice  *decimal.Decimal
	err        error
}

func (m *mockDevisRepo) Create(_ context.Context, d *Devis) error {
	d.ID = 1
	m.last = d
	return m.err
}

func (m *mockDevisRepo) GetByID(_ context.Context, _ int64) (*Devis, error) {
	if m.last == nil {
		return nil, ErrNotFound
	}
	return m.last, nil
}

func (m *mockDevisRepo) List(_ context.Context, _ ListFilter) ([]Devis, error) {
	return nil, nil
}

func (m *mockDevisRepo) UpdateStatus(_ context.Context, _ int64, status Status, price *decimal.Decimal) error {
	m.lastStatus = status
	m.lastPrice = price
	return m.err
}

func plumbingService() *mockCatalogRepo {
	return &mockCatalogRepo{byID: map[int64]catalog.Service{
		7: {
			ID:        7,
			Name:      "Plomberie",
			Slug:      "plomberie",
			Price:     decimal.RequireFromString("80.00"),
			PriceUnit: "par intervention",
		},
	}}
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		ServiceID:         7,
		FirstName:         "Leïla",
		LastName:          "Trabelsi",
		Email:             "leila@example.tn",
		Phone:             "+216 22 111 222",
		Address:           "5 Avenue Habib Bourguiba",
		City:              "Sousse",
		Description:       "Fuite sous l'évier de la cuisine",
		PreferredTimeline: "cette semaine",
	}
}

func TestCreate_SeedsEstimateFromService(t *testing.T) {
	repo := &mockDevisRepo{}
	svc := NewService(plumbingService(), repo)

	d, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, d.Status)
	require.NotNil(t, d.EstimatedPrice)
	assert.True(t, decimal.RequireFromString("80.00").Equal(*d.EstimatedPrice))
	assert.Nil(t, d.FinalPrice)
	assert.Same(t, d, repo.last)
}

func TestCreate_MissingFields(t *testing.T) {
	svc := NewService(plumbingService(), &mockDevisRepo{})

	req := validCreateRequest()
	req.Description = ""

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestCreate_UnknownService(t *testing.T) {
	svc := NewService(plumbingService(), &mockDevisRepo{})

	req := validCreateRequest()
	req.ServiceID = 404

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrUnknownService)
}

func TestUpdateStatus_WithFinalPrice(t *testing.T) {
	repo := &mockDevisRepo{}
	svc := NewService(plumbingService(), repo)

	price := decimal.RequireFromString("95.00")
	require.NoError(t, svc.UpdateStatus(context.Background(), 1, StatusQuoted, &price))

	assert.Equal(t, StatusQuoted, repo.lastStatus)
	require.NotNil(t, repo.lastPrice)
	assert.True(t, price.Equal(*repo.lastPrice))
}

func TestUpdateStatus_Invalid(t *testing.T) {
	svc := NewService(plumbingService(), &mockDevisRepo{})

	err := svc.UpdateStatus(context.Background(), 1, Status("archived"), nil)
	require.ErrorIs(t, err, ErrInvalidStatus)
}
