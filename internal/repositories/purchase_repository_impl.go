package repositories

import (
	"context"
	"errors"
	"fmt"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *models.Purchase) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return &p, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (r *purchaseRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	res := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, models.PurchaseStatusInitiated).
		Updates(map[string]interface{}{
			"session_id": sessionID,
			"status":     models.PurchaseStatusPending,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to attach session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

// Settle is the idempotency boundary. The status transition is a single
// conditional UPDATE, not read-then-write, so two concurrent deliveries of
// the same event race on the database row and exactly one of them wins.
// The loser sees zero rows affected and reports a duplicate.
func (r *purchaseRepository) Settle(ctx context.Context, params SettleParams) (*SettleResult, error) {
	result := &SettleResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.PurchaseStatusPaid}
		if params.SessionID != "" {
			updates["session_id"] = params.SessionID
		}
		if params.PaymentIntentID != "" {
			updates["payment_intent_id"] = params.PaymentIntentID
		}

		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status <> ?", params.PurchaseID, models.PurchaseStatusPaid).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to settle purchase: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var purchase models.Purchase
		if err := tx.First(&purchase, "id = ?", params.PurchaseID).Error; err != nil {
			return fmt.Errorf("failed to reload settled purchase: %w", err)
		}

		entry, err := applyCredit(tx, purchase.UserID, params.Credits, models.LedgerReasonPurchase, purchase.ID)
		if err != nil {
			return err
		}

		result.Settled = true
		result.Purchase = &purchase
		result.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *purchaseRepository) MarkClosed(ctx context.Context, id, status string) error {
	if status != models.PurchaseStatusFailed && status != models.PurchaseStatusExpired {
		return fmt.Errorf("invalid terminal status %q", status)
	}
	res := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status NOT IN ?", id, []string{models.PurchaseStatusPaid, models.PurchaseStatusFailed, models.PurchaseStatusExpired}).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to close purchase: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}
