package billing

import (
	"context"
	"testing"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"
	"velvet/internal/services/wallet"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) GetByRecordID(ctx context.Context, recordID string) (*models.Agent, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentRepo) Upsert(ctx context.Context, agent *models.Agent) error {
	return m.Called(ctx, agent).Error(0)
}

func (m *MockAgentRepo) ListActive(ctx context.Context) ([]models.Agent, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Agent), args.Error(1)
}

type MockCallRepo struct {
	mock.Mock
}

func (m *MockCallRepo) Create(ctx context.Context, log *models.CallLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockCallRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CallLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.CallLog), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error) {
	args := m.Called(ctx, userID, amount, reason, reference)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (int64, error) {
	args := m.Called(ctx, userID, amount, reason, reference)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) History(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func activeAgent(rate int64) *models.Agent {
	return &models.Agent{RecordID: "rec_1", Name: "Ava", RatePerMinute: rate, Status: models.AgentStatusActive}
}

func TestRecordCall_MinuteRounding(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		duration    time.Duration
		rate        int64
		wantCredits int64
	}{
		{name: "exact minute", duration: time.Minute, rate: 1, wantCredits: 1},
		{name: "one second over rounds up", duration: 61 * time.Second, rate: 1, wantCredits: 2},
		{name: "short call bills one minute", duration: 5 * time.Second, rate: 1, wantCredits: 1},
		{name: "sub second call bills one minute", duration: 300 * time.Millisecond, rate: 2, wantCredits: 2},
		{name: "rate multiplies", duration: 150 * time.Second, rate: 3, wantCredits: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents := new(MockAgentRepo)
			calls := new(MockCallRepo)
			walletSvc := new(MockWalletService)

			agents.On("GetByRecordID", mock.Anything, "rec_1").Return(activeAgent(tt.rate), nil)
			walletSvc.On("Debit", mock.Anything, uint(1), tt.wantCredits, models.LedgerReasonCall, mock.Anything).
				Return(int64(100), nil)
			calls.On("Create", mock.Anything, mock.Anything).Return(nil)

			s := NewService(agents, calls, walletSvc, zerolog.Nop())
			call, err := s.RecordCall(context.Background(), 1, "rec_1", start, start.Add(tt.duration))

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCredits, call.CreditsUsed)
			walletSvc.AssertExpectations(t)
		})
	}
}

func TestRecordCall_InvalidSpan(t *testing.T) {
	agents := new(MockAgentRepo)
	calls := new(MockCallRepo)
	walletSvc := new(MockWalletService)
	start := time.Now()

	s := NewService(agents, calls, walletSvc, zerolog.Nop())

	_, err := s.RecordCall(context.Background(), 1, "rec_1", start, start)
	assert.ErrorIs(t, err, ErrInvalidCallSpan)

	_, err = s.RecordCall(context.Background(), 1, "rec_1", start, start.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidCallSpan)

	agents.AssertNotCalled(t, "GetByRecordID", mock.Anything, mock.Anything)
}

func TestRecordCall_AgentUnavailable(t *testing.T) {
	start := time.Now()

	t.Run("unknown agent", func(t *testing.T) {
		agents := new(MockAgentRepo)
		calls := new(MockCallRepo)
		walletSvc := new(MockWalletService)
		agents.On("GetByRecordID", mock.Anything, "ghost").Return(nil, repositories.ErrAgentNotFound)

		s := NewService(agents, calls, walletSvc, zerolog.Nop())
		_, err := s.RecordCall(context.Background(), 1, "ghost", start, start.Add(time.Minute))

		assert.ErrorIs(t, err, ErrAgentUnavailable)
	})

	t.Run("inactive agent", func(t *testing.T) {
		agents := new(MockAgentRepo)
		calls := new(MockCallRepo)
		walletSvc := new(MockWalletService)
		inactive := activeAgent(1)
		inactive.Status = models.AgentStatusInactive
		agents.On("GetByRecordID", mock.Anything, "rec_1").Return(inactive, nil)

		s := NewService(agents, calls, walletSvc, zerolog.Nop())
		_, err := s.RecordCall(context.Background(), 1, "rec_1", start, start.Add(time.Minute))

		assert.ErrorIs(t, err, ErrAgentUnavailable)
		walletSvc.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordCall_InsufficientBalanceWritesNothing(t *testing.T) {
	agents := new(MockAgentRepo)
	calls := new(MockCallRepo)
	walletSvc := new(MockWalletService)
	start := time.Now()

	agents.On("GetByRecordID", mock.Anything, "rec_1").Return(activeAgent(5), nil)
	walletSvc.On("Debit", mock.Anything, uint(1), int64(5), models.LedgerReasonCall, mock.Anything).
		Return(int64(0), wallet.ErrInsufficientBalance)

	s := NewService(agents, calls, walletSvc, zerolog.Nop())
	_, err := s.RecordCall(context.Background(), 1, "rec_1", start, start.Add(time.Minute))

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	calls.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordCall_DebitReferencesCallLog(t *testing.T) {
	agents := new(MockAgentRepo)
	calls := new(MockCallRepo)
	walletSvc := new(MockWalletService)
	start := time.Now()

	agents.On("GetByRecordID", mock.Anything, "rec_1").Return(activeAgent(1), nil)

	var debitRef string
	walletSvc.On("Debit", mock.Anything, uint(1), int64(1), models.LedgerReasonCall, mock.Anything).
		Run(func(args mock.Arguments) { debitRef = args.String(4) }).
		Return(int64(99), nil)

	var created *models.CallLog
	calls.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.CallLog) }).
		Return(nil)

	s := NewService(agents, calls, walletSvc, zerolog.Nop())
	call, err := s.RecordCall(context.Background(), 1, "rec_1", start, start.Add(time.Minute))

	assert.NoError(t, err)
	assert.Equal(t, call.ID, debitRef)
	assert.Equal(t, call.ID, created.ID)
}
