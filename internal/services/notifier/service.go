// Package notifier propagates settled purchases to the external CRM:
// a draft invoice plus a payment record. Everything here is best-effort —
// both calls are plain network round-trips with no rollback, so an error
// after the first succeeds leaves an orphaned draft invoice upstream.
// That is accepted, logged and reconciled out-of-band; nothing in this
// package ever reaches back into the reconciliation response or the
// ledger.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"
	"velvet/internal/services/crm"

	"github.com/rs/zerolog"
)

// Service receives settled purchases for downstream bookkeeping.
type Service interface {
	// PurchaseCompleted runs the full invoice flow for a paid purchase.
	// It bounds its own execution time, never panics and never returns:
	// all failures are terminal for this attempt and only logged.
	PurchaseCompleted(purchase *models.Purchase)
}

type service struct {
	crm     crm.Client
	users   repositories.UserRepository
	timeout time.Duration
	log     zerolog.Logger
}

// NewService creates a new downstream notifier.
func NewService(crmClient crm.Client, users repositories.UserRepository, timeout time.Duration, log zerolog.Logger) Service {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &service{
		crm:     crmClient,
		users:   users,
		timeout: timeout,
		log:     log.With().Str("component", "notifier").Logger(),
	}
}

func (s *service) PurchaseCompleted(purchase *models.Purchase) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("purchase_id", purchase.ID).Msg("notifier panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, purchase.UserID)
	if err != nil {
		s.log.Error().Err(err).Str("purchase_id", purchase.ID).Msg("cannot load purchase owner")
		return
	}

	contact, err := s.resolveContact(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("purchase_id", purchase.ID).Msg("cannot resolve CRM contact")
		return
	}

	// The purchase's own stored amount is the single authoritative
	// invoice amount; the raw event total is never consulted.
	amount := float64(purchase.Amount) / 100

	invoice, err := s.crm.CreateInvoice(ctx, crm.InvoiceParams{
		ContactID:     contact.ID,
		ContactName:   contact.Name,
		ContactEmail:  contact.Email,
		ProductID:     purchase.ProductID,
		ProductName:   purchase.ProductName,
		PriceID:       "manual",
		Amount:        amount,
		Currency:      strings.ToUpper(purchase.Currency),
		InvoiceNumber: invoiceNumber(purchase),
	})
	if err != nil {
		s.log.Error().Err(err).Str("purchase_id", purchase.ID).Msg("draft invoice creation failed")
		return
	}

	if err := s.crm.RecordInvoicePayment(ctx, invoice.ID, amount); err != nil {
		s.log.Error().Err(err).
			Str("purchase_id", purchase.ID).
			Str("invoice_id", invoice.ID).
			Msg("payment recording failed, draft invoice orphaned")
		return
	}

	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("invoice_id", invoice.ID).
		Msg("purchase propagated to CRM")
}

// resolveContact returns the user's CRM contact, finding or creating it
// and persisting the linkage for next time.
func (s *service) resolveContact(ctx context.Context, user *models.User) (*crm.Contact, error) {
	if user.CRMContactID != nil && *user.CRMContactID != "" {
		return &crm.Contact{ID: *user.CRMContactID, Name: user.DisplayName, Email: user.Email}, nil
	}

	contact, err := s.crm.FindContactByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		contact, err = s.crm.CreateContact(ctx, crm.CreateContactParams{
			Email: user.Email,
			Name:  user.DisplayName,
			Photo: user.Avatar,
			Tags:  []string{"dashboard"},
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.users.SaveCRMContact(ctx, user.ID, contact.ID, ""); err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to persist CRM contact linkage")
	}
	return contact, nil
}

func invoiceNumber(purchase *models.Purchase) string {
	id := strings.ReplaceAll(purchase.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("INV-%s", strings.ToUpper(id))
}
