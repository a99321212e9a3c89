// Package billing debits the wallet for finished voice calls. It is the
// debit-side counterpart of the reconciliation credit: same ledger, same
// non-negative invariant, per-user atomicity provided by the ledger store.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"
	"velvet/internal/services/wallet"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrAgentUnavailable = errors.New("agent not found or inactive")
	ErrInvalidCallSpan  = errors.New("call end must be after start")

	// ErrInsufficientBalance is re-exported so handlers depend on one
	// package.
	ErrInsufficientBalance = wallet.ErrInsufficientBalance
)

type Service interface {
	// RecordCall bills a finished call: debits ceil(duration/1m) times
	// the agent's per-minute rate and writes the call log. On
	// ErrInsufficientBalance no log is written and no debit occurs.
	RecordCall(ctx context.Context, userID uint, agentRecordID string, start, end time.Time) (*models.CallLog, error)

	ListCalls(ctx context.Context, userID uint, limit, offset int) ([]models.CallLog, error)
}

type service struct {
	agents repositories.AgentRepository
	calls  repositories.CallRepository
	wallet wallet.Service
	log    zerolog.Logger
}

func NewService(agents repositories.AgentRepository, calls repositories.CallRepository, walletSvc wallet.Service, log zerolog.Logger) Service {
	return &service{
		agents: agents,
		calls:  calls,
		wallet: walletSvc,
		log:    log.With().Str("component", "billing").Logger(),
	}
}

func (s *service) RecordCall(ctx context.Context, userID uint, agentRecordID string, start, end time.Time) (*models.CallLog, error) {
	if !end.After(start) {
		return nil, ErrInvalidCallSpan
	}

	agent, err := s.agents.GetByRecordID(ctx, agentRecordID)
	if err != nil {
		if errors.Is(err, repositories.ErrAgentNotFound) {
			return nil, ErrAgentUnavailable
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	if agent.Status != models.AgentStatusActive {
		return nil, ErrAgentUnavailable
	}

	seconds := int64(end.Sub(start) / time.Second)
	if end.Sub(start)%time.Second != 0 {
		seconds++
	}
	minutes := (seconds + 59) / 60
	credits := minutes * agent.RatePerMinute

	call := &models.CallLog{
		ID:              uuid.NewString(),
		UserID:          userID,
		AgentRecordID:   agentRecordID,
		StartedAt:       start,
		EndedAt:         end,
		DurationSeconds: seconds,
		CreditsUsed:     credits,
		Status:          models.CallStatusCompleted,
	}

	// Debit first, referencing the log id we are about to write: a
	// rejected debit leaves no trace, and a crash after the debit leaves
	// a ledger entry whose reference identifies the missing log.
	balance, err := s.wallet.Debit(ctx, userID, credits, models.LedgerReasonCall, call.ID)
	if err != nil {
		return nil, err
	}

	if err := s.calls.Create(ctx, call); err != nil {
		s.log.Error().Err(err).
			Str("call_id", call.ID).
			Uint("user_id", userID).
			Msg("call log write failed after debit")
		return nil, fmt.Errorf("failed to record call: %w", err)
	}

	s.log.Info().
		Str("call_id", call.ID).
		Uint("user_id", userID).
		Int64("credits", credits).
		Int64("balance", balance).
		Msg("call billed")
	return call, nil
}

func (s *service) ListCalls(ctx context.Context, userID uint, limit, offset int) ([]models.CallLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.calls.ListByUser(ctx, userID, limit, offset)
}
