// Package catalog keeps the local product table in step with the external
// CRM. Sync is freshness-based: a CRM product is upserted only when its
// updatedAt is newer than what we last stored, so unchanged rows cost one
// comparison and no price fetch.
package catalog

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"
	"velvet/internal/services/crm"

	"github.com/rs/zerolog"
)

// defaultCredits is the grant applied when a product declares none;
// matches the checkout fallback the CRM catalog historically used.
const defaultCredits = 50

var creditsPattern = regexp.MustCompile(`(\d+)`)
var creditsInNamePattern = regexp.MustCompile(`(?i)(\d+)\s*credits?`)

type Service interface {
	// Sync pulls the CRM catalog and upserts changed rows. Returns the
	// number of rows written.
	Sync(ctx context.Context) (int, error)

	// List returns all stored products, cheapest first.
	List(ctx context.Context) ([]models.Product, error)
}

type service struct {
	crm      crm.Client
	products repositories.ProductRepository
	location string
	log      zerolog.Logger
}

func NewService(crmClient crm.Client, products repositories.ProductRepository, locationID string, log zerolog.Logger) Service {
	return &service{
		crm:      crmClient,
		products: products,
		location: locationID,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

func (s *service) Sync(ctx context.Context) (int, error) {
	crmProducts, err := s.crm.FetchProducts(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, p := range crmProducts {
		existing, err := s.products.GetByExternalID(ctx, p.ID)
		if err != nil && !errors.Is(err, repositories.ErrProductNotFound) {
			return written, err
		}
		if existing != nil && !p.UpdatedAt.After(existing.CRMUpdatedAt) {
			continue
		}

		price, err := s.crm.FetchProductPrice(ctx, p.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("product_id", p.ID).Msg("price fetch failed, skipping product")
			continue
		}

		row := &models.Product{
			ExternalID:   p.ID,
			Name:         p.Name,
			ImageURL:     p.Image,
			Credits:      extractCredits(p, s.log),
			LocationID:   s.location,
			CRMUpdatedAt: p.UpdatedAt,
			LastSyncedAt: time.Now().UTC(),
		}
		if price != nil {
			row.PriceAmount = int64(math.Round(price.Amount * 100))
			row.Currency = price.Currency
			row.PriceID = price.ID
		}

		if err := s.products.Upsert(ctx, row); err != nil {
			return written, err
		}
		written++
	}

	if written > 0 {
		s.log.Info().Int("rows", written).Msg("catalog synced")
	}
	return written, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	return s.products.ListByPriceAsc(ctx)
}

// extractCredits resolves the credit grant for a CRM product. The
// authoritative source is the variant named "Credits"; the product name
// is a fallback, and a default applies when neither yields a number.
func extractCredits(p crm.Product, log zerolog.Logger) int64 {
	for _, v := range p.Variants {
		if !strings.EqualFold(v.Name, "credits") || len(v.Options) == 0 {
			continue
		}
		if m := creditsPattern.FindString(v.Options[0].Name); m != "" {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil && n > 0 {
				return n
			}
		}
	}

	if m := creditsInNamePattern.FindStringSubmatch(p.Name); len(m) == 2 {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil && n > 0 {
			return n
		}
	}

	log.Warn().Str("product", p.Name).Int64("credits", defaultCredits).Msg("no credit grant found, using default")
	return defaultCredits
}
