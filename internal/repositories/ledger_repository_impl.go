package repositories

import (
	"context"
	"fmt"
	"time"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Credit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = applyCredit(tx, userID, amount, reason, reference)
		return err
	})
	return entry, err
}

func (r *ledgerRepository) Debit(ctx context.Context, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = applyDebit(tx, userID, amount, reason, reference)
		return err
	})
	return entry, err
}

func (r *ledgerRepository) Entries(ctx context.Context, userID uint, limit, offset int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) BalanceAt(ctx context.Context, userID uint, t time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("user_id = ? AND created_at <= ?", userID, t).
		Select("COALESCE(SUM(CASE WHEN direction = 'debit' THEN -amount ELSE amount END), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to reconstruct balance: %w", err)
	}
	return total, nil
}

// applyCredit runs inside an open transaction. The balance bump is a single
// atomic UPDATE, not read-then-write, so concurrent credits on the same
// user cannot lose an update.
func applyCredit(tx *gorm.DB, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		wallet := &models.Wallet{UserID: userID, Balance: amount}
		if err := tx.Create(wallet).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
	}

	return appendEntry(tx, userID, models.LedgerDirectionCredit, amount, reason, reference)
}

// applyDebit runs inside an open transaction. The WHERE clause makes the
// non-negative invariant part of the update itself: zero rows affected
// means the balance was too low and nothing changed.
func applyDebit(tx *gorm.DB, userID uint, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to debit wallet: %w", err)
		}
		if count == 0 {
			return nil, ErrWalletNotFound
		}
		return nil, ErrInsufficientBalance
	}

	return appendEntry(tx, userID, models.LedgerDirectionDebit, amount, reason, reference)
}

func appendEntry(tx *gorm.DB, userID uint, direction string, amount int64, reason, reference string) (*models.LedgerEntry, error) {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to read balance snapshot: %w", err)
	}

	entry := &models.LedgerEntry{
		UserID:       userID,
		Direction:    direction,
		Amount:       amount,
		Reason:       reason,
		Reference:    reference,
		BalanceAfter: wallet.Balance,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return entry, nil
}
