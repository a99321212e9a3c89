package repositories

import (
	"context"
	"errors"
	"fmt"

	"velvet/internal/models"

	"gorm.io/gorm"
)

// WalletRepository reads the balance projection. Mutations go through
// LedgerRepository so the entry log and the balance can never diverge.
type WalletRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	Create(ctx context.Context, wallet *models.Wallet) error
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}
