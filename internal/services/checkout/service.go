package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"velvet/internal/models"
	"velvet/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// Config holds the redirect targets handed to the processor.
type Config struct {
	SuccessURL string
	CancelURL  string
}

type service struct {
	products  repositories.ProductRepository
	purchases repositories.PurchaseRepository
	stripe    StripeClient
	cfg       Config
	log       zerolog.Logger
}

// NewService creates a new checkout service.
func NewService(
	products repositories.ProductRepository,
	purchases repositories.PurchaseRepository,
	stripeClient StripeClient,
	cfg Config,
	log zerolog.Logger,
) Service {
	return &service{
		products:  products,
		purchases: purchases,
		stripe:    stripeClient,
		cfg:       cfg,
		log:       log.With().Str("component", "checkout").Logger(),
	}
}

func (s *service) CreateSession(ctx context.Context, userID uint, productID string) (string, error) {
	product, err := s.products.GetByExternalID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return "", ErrProductInvalid
		}
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	if !product.Purchasable() {
		return "", ErrProductInvalid
	}

	purchase := &models.Purchase{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   product.ExternalID,
		ProductName: product.Name,
		Amount:      product.PriceAmount,
		Currency:    strings.ToLower(product.Currency),
		Credits:     product.Credits,
		Status:      models.PurchaseStatusInitiated,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return "", fmt.Errorf("failed to create purchase: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(purchase.Currency),
					UnitAmount: stripe.Int64(purchase.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(product.Name),
						Description: stripe.String(fmt.Sprintf("Purchase %d credits", product.Credits)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.AddMetadata(MetadataPurchaseID, purchase.ID)
	params.AddMetadata(MetadataUserID, strconv.FormatUint(uint64(userID), 10))
	params.AddMetadata(MetadataProductID, product.ExternalID)
	params.AddMetadata(MetadataProductName, product.Name)
	params.AddMetadata(MetadataCredits, strconv.FormatInt(product.Credits, 10))
	params.AddMetadata(MetadataPrice, strconv.FormatInt(product.PriceAmount, 10))

	session, err := s.stripe.NewCheckoutSession(params)
	if err != nil {
		// Purchase stays initiated; it is harmless and never consumed.
		s.log.Error().Err(err).
			Str("purchase_id", purchase.ID).
			Uint("user_id", userID).
			Msg("checkout session creation failed")
		return "", ErrUpstreamUnavailable
	}

	if err := s.purchases.AttachSession(ctx, purchase.ID, session.ID); err != nil {
		// The webhook still carries the purchase id in metadata, so
		// settlement does not depend on this write.
		s.log.Warn().Err(err).
			Str("purchase_id", purchase.ID).
			Str("session_id", session.ID).
			Msg("failed to attach session to purchase")
	}

	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("session_id", session.ID).
		Uint("user_id", userID).
		Int64("credits", product.Credits).
		Msg("checkout session created")

	return session.URL, nil
}

// apiClient wraps the stripe-go client so the service depends on the small
// StripeClient interface.
type apiClient struct {
	sc *client.API
}

// NewStripeClient builds the production processor client.
func NewStripeClient(secretKey string) StripeClient {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &apiClient{sc: sc}
}

func (c *apiClient) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.sc.CheckoutSessions.New(params)
}
