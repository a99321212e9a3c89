package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"velvet/internal/models"
	"velvet/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, reason, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, amount, reason, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) Entries(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) BalanceAt(ctx context.Context, userID uint, t time.Time) (int64, error) {
	args := m.Called(ctx, userID, t)
	return args.Get(0).(int64), args.Error(1)
}

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockCache) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockCache) InvalidateWallet(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func TestWalletService_GetBalance(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		cache := new(MockCache)
		cache.On("GetWallet", mock.Anything, uint(1)).Return(&models.Wallet{UserID: 1, Balance: 100}, nil)

		s := NewService(ledger, wallets, cache, nil, zerolog.Nop())
		balance, err := s.GetBalance(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(100), balance)
		wallets.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls through and fills", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		cache := new(MockCache)
		wallet := &models.Wallet{UserID: 1, Balance: 250}
		cache.On("GetWallet", mock.Anything, uint(1)).Return(nil, errors.New("miss"))
		wallets.On("GetByUserID", mock.Anything, uint(1)).Return(wallet, nil)
		cache.On("SetWallet", mock.Anything, wallet).Return(nil)

		s := NewService(ledger, wallets, cache, nil, zerolog.Nop())
		balance, err := s.GetBalance(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(250), balance)
		cache.AssertExpectations(t)
	})

	t.Run("no wallet reads as zero", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		wallets.On("GetByUserID", mock.Anything, uint(2)).Return(nil, repositories.ErrWalletNotFound)

		s := NewService(ledger, wallets, nil, nil, zerolog.Nop())
		balance, err := s.GetBalance(context.Background(), 2)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})
}

func TestWalletService_Credit(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		setupMock func(*MockLedgerRepo, *MockCache)
		wantErr   error
		want      int64
	}{
		{
			name:   "successful credit invalidates cache",
			amount: 500,
			setupMock: func(ledger *MockLedgerRepo, cache *MockCache) {
				ledger.On("Credit", mock.Anything, uint(1), int64(500), models.LedgerReasonPurchase, "p-1").
					Return(&models.LedgerEntry{UserID: 1, Amount: 500, BalanceAfter: 500}, nil)
				cache.On("InvalidateWallet", mock.Anything, uint(1)).Return(nil)
			},
			want: 500,
		},
		{
			name:    "zero amount rejected",
			amount:  0,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount rejected",
			amount:  -10,
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedgerRepo)
			wallets := new(MockWalletRepo)
			cache := new(MockCache)
			if tt.setupMock != nil {
				tt.setupMock(ledger, cache)
			}

			s := NewService(ledger, wallets, cache, nil, zerolog.Nop())
			balance, err := s.Credit(context.Background(), 1, tt.amount, models.LedgerReasonPurchase, "p-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, balance)
			}
			ledger.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestWalletService_Debit(t *testing.T) {
	t.Run("insufficient balance maps to service error", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		ledger.On("Debit", mock.Anything, uint(1), int64(50), models.LedgerReasonCall, "c-1").
			Return(nil, repositories.ErrInsufficientBalance)

		s := NewService(ledger, wallets, nil, nil, zerolog.Nop())
		_, err := s.Debit(context.Background(), 1, 50, models.LedgerReasonCall, "c-1")

		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("missing wallet debits like an empty one", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		ledger.On("Debit", mock.Anything, uint(9), int64(50), models.LedgerReasonCall, "c-2").
			Return(nil, repositories.ErrWalletNotFound)

		s := NewService(ledger, wallets, nil, nil, zerolog.Nop())
		_, err := s.Debit(context.Background(), 9, 50, models.LedgerReasonCall, "c-2")

		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("successful debit returns new balance", func(t *testing.T) {
		ledger := new(MockLedgerRepo)
		wallets := new(MockWalletRepo)
		cache := new(MockCache)
		ledger.On("Debit", mock.Anything, uint(1), int64(50), models.LedgerReasonCall, "c-3").
			Return(&models.LedgerEntry{UserID: 1, Amount: 50, BalanceAfter: 450}, nil)
		cache.On("InvalidateWallet", mock.Anything, uint(1)).Return(nil)

		s := NewService(ledger, wallets, cache, nil, zerolog.Nop())
		balance, err := s.Debit(context.Background(), 1, 50, models.LedgerReasonCall, "c-3")

		assert.NoError(t, err)
		assert.Equal(t, int64(450), balance)
	})
}

func TestWalletService_HistoryClampsLimit(t *testing.T) {
	ledger := new(MockLedgerRepo)
	wallets := new(MockWalletRepo)
	ledger.On("Entries", mock.Anything, uint(1), 20, 0).Return([]models.LedgerEntry{}, nil)

	s := NewService(ledger, wallets, nil, nil, zerolog.Nop())
	_, err := s.History(context.Background(), 1, 1000, 0)

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
}
