package repositories

import (
	"context"
	"fmt"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type CallRepository interface {
	Create(ctx context.Context, log *models.CallLog) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CallLog, error)
}

type callRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) CallRepository {
	return &callRepository{db: db}
}

func (r *callRepository) Create(ctx context.Context, log *models.CallLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create call log: %w", err)
	}
	return nil
}

func (r *callRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.CallLog, error) {
	var logs []models.CallLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	return logs, nil
}
