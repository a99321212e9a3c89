package checkout

import (
	"context"
	"errors"
	"testing"

	"velvet/internal/models"
	"velvet/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	stripe "github.com/stripe/stripe-go/v72"
)

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepo) Upsert(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepo) ListByPriceAsc(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

type MockPurchaseRepo struct {
	mock.Mock
}

func (m *MockPurchaseRepo) Create(ctx context.Context, p *models.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPurchaseRepo) GetByID(ctx context.Context, id string) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepo) AttachSession(ctx context.Context, id, sessionID string) error {
	return m.Called(ctx, id, sessionID).Error(0)
}

func (m *MockPurchaseRepo) Settle(ctx context.Context, params repositories.SettleParams) (*repositories.SettleResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SettleResult), args.Error(1)
}

func (m *MockPurchaseRepo) MarkClosed(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockStripeClient struct {
	mock.Mock
}

func (m *MockStripeClient) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func testProduct() *models.Product {
	return &models.Product{
		ExternalID:  "prod_1",
		Name:        "Pro Pack 500 Credits",
		PriceAmount: 3999,
		Currency:    "USD",
		Credits:     500,
	}
}

func testConfig() Config {
	return Config{
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	}
}

func TestCreateSession_UnknownProduct(t *testing.T) {
	products := new(MockProductRepo)
	purchases := new(MockPurchaseRepo)
	sc := new(MockStripeClient)
	products.On("GetByExternalID", mock.Anything, "nope").Return(nil, repositories.ErrProductNotFound)

	s := NewService(products, purchases, sc, testConfig(), zerolog.Nop())
	_, err := s.CreateSession(context.Background(), 1, "nope")

	assert.ErrorIs(t, err, ErrProductInvalid)
	purchases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateSession_UnpurchasableProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *models.Product
	}{
		{name: "zero price", product: &models.Product{ExternalID: "p", Name: "Free", PriceAmount: 0, Credits: 100}},
		{name: "zero credits", product: &models.Product{ExternalID: "p", Name: "Empty", PriceAmount: 999, Credits: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepo)
			purchases := new(MockPurchaseRepo)
			sc := new(MockStripeClient)
			products.On("GetByExternalID", mock.Anything, "p").Return(tt.product, nil)

			s := NewService(products, purchases, sc, testConfig(), zerolog.Nop())
			_, err := s.CreateSession(context.Background(), 1, "p")

			assert.ErrorIs(t, err, ErrProductInvalid)
			purchases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSession_Success(t *testing.T) {
	products := new(MockProductRepo)
	purchases := new(MockPurchaseRepo)
	sc := new(MockStripeClient)

	products.On("GetByExternalID", mock.Anything, "prod_1").Return(testProduct(), nil)

	var created *models.Purchase
	purchases.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Purchase)
	}).Return(nil)

	var sent *stripe.CheckoutSessionParams
	sc.On("NewCheckoutSession", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).(*stripe.CheckoutSessionParams)
	}).Return(&stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil)

	purchases.On("AttachSession", mock.Anything, mock.Anything, "cs_1").Return(nil)

	s := NewService(products, purchases, sc, testConfig(), zerolog.Nop())
	url, err := s.CreateSession(context.Background(), 7, "prod_1")

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_1", url)

	assert.NotNil(t, created)
	assert.Equal(t, uint(7), created.UserID)
	assert.Equal(t, int64(3999), created.Amount)
	assert.Equal(t, "usd", created.Currency)
	assert.Equal(t, int64(500), created.Credits)
	assert.Equal(t, models.PurchaseStatusInitiated, created.Status)

	// The metadata must carry everything reconciliation needs back.
	assert.NotNil(t, sent)
	assert.Equal(t, created.ID, sent.Params.Metadata[MetadataPurchaseID])
	assert.Equal(t, "7", sent.Params.Metadata[MetadataUserID])
	assert.Equal(t, "500", sent.Params.Metadata[MetadataCredits])
	assert.Equal(t, "prod_1", sent.Params.Metadata[MetadataProductID])

	purchases.AssertExpectations(t)
}

func TestCreateSession_UpstreamFailureLeavesPurchaseInitiated(t *testing.T) {
	products := new(MockProductRepo)
	purchases := new(MockPurchaseRepo)
	sc := new(MockStripeClient)

	products.On("GetByExternalID", mock.Anything, "prod_1").Return(testProduct(), nil)
	purchases.On("Create", mock.Anything, mock.Anything).Return(nil)
	sc.On("NewCheckoutSession", mock.Anything).Return(nil, errors.New("stripe down"))

	s := NewService(products, purchases, sc, testConfig(), zerolog.Nop())
	_, err := s.CreateSession(context.Background(), 7, "prod_1")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	// The initiated purchase stays behind untouched; only settlement can
	// ever move it forward.
	purchases.AssertNotCalled(t, "AttachSession", mock.Anything, mock.Anything, mock.Anything)
	purchases.AssertNotCalled(t, "MarkClosed", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSession_AttachFailureDoesNotFailCheckout(t *testing.T) {
	products := new(MockProductRepo)
	purchases := new(MockPurchaseRepo)
	sc := new(MockStripeClient)

	products.On("GetByExternalID", mock.Anything, "prod_1").Return(testProduct(), nil)
	purchases.On("Create", mock.Anything, mock.Anything).Return(nil)
	sc.On("NewCheckoutSession", mock.Anything).Return(&stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil)
	purchases.On("AttachSession", mock.Anything, mock.Anything, "cs_1").Return(errors.New("db blip"))

	s := NewService(products, purchases, sc, testConfig(), zerolog.Nop())
	url, err := s.CreateSession(context.Background(), 7, "prod_1")

	// Settlement correlates by metadata, not by the session linkage.
	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_1", url)
}
