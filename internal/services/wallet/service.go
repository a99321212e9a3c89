package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"

	"github.com/rs/zerolog"
)

type service struct {
	ledger  repositories.LedgerRepository
	wallets repositories.WalletRepository
	cache   CacheOperator
	metrics MetricsCollector
	log     zerolog.Logger
}

// NewService creates a new wallet service.
func NewService(
	ledger repositories.LedgerRepository,
	wallets repositories.WalletRepository,
	cache CacheOperator,
	metrics MetricsCollector,
	log zerolog.Logger,
) Service {
	if ledger == nil {
		panic("ledger repository is required")
	}
	if wallets == nil {
		panic("wallet repository is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		ledger:  ledger,
		wallets: wallets,
		cache:   cache,
		metrics: metrics,
		log:     log.With().Str("component", "wallet").Logger(),
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, userID); err == nil {
			return wallet, nil
		}
	}

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetWallet(ctx, wallet); err != nil {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("wallet cache write failed")
		}
	}
	return wallet, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (int64, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			// No wallet yet means no credits yet.
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *service) Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("credit", time.Since(start)) }()

	if amount <= 0 {
		s.metrics.RecordError("credit", "invalid_amount")
		return 0, ErrInvalidAmount
	}

	entry, err := s.ledger.Credit(ctx, userID, amount, reason, reference)
	if err != nil {
		s.metrics.RecordOperationResult("credit", "error")
		return 0, fmt.Errorf("credit failed: %w", err)
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordOperationResult("credit", "ok")
	s.metrics.RecordCredits(models.LedgerDirectionCredit, amount)
	s.log.Info().
		Uint("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Int64("balance", entry.BalanceAfter).
		Msg("wallet credited")

	return entry.BalanceAfter, nil
}

func (s *service) Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("debit", time.Since(start)) }()

	if amount <= 0 {
		s.metrics.RecordError("debit", "invalid_amount")
		return 0, ErrInvalidAmount
	}

	entry, err := s.ledger.Debit(ctx, userID, amount, reason, reference)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			s.metrics.RecordOperationResult("debit", "insufficient")
			return 0, ErrInsufficientBalance
		case errors.Is(err, repositories.ErrWalletNotFound):
			s.metrics.RecordOperationResult("debit", "insufficient")
			return 0, ErrInsufficientBalance
		}
		s.metrics.RecordOperationResult("debit", "error")
		return 0, fmt.Errorf("debit failed: %w", err)
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordOperationResult("debit", "ok")
	s.metrics.RecordCredits(models.LedgerDirectionDebit, amount)
	s.log.Info().
		Uint("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Int64("balance", entry.BalanceAfter).
		Msg("wallet debited")

	return entry.BalanceAfter, nil
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ledger.Entries(ctx, userID, limit, offset)
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("wallet cache invalidation failed")
	}
}
