package repositories

import (
	"context"
	"errors"
	"fmt"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type AgentRepository interface {
	GetByRecordID(ctx context.Context, recordID string) (*models.Agent, error)
	Upsert(ctx context.Context, agent *models.Agent) error
	ListActive(ctx context.Context) ([]models.Agent, error)
}

type agentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetByRecordID(ctx context.Context, recordID string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("record_id = ?", recordID).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

func (r *agentRepository) Upsert(ctx context.Context, agent *models.Agent) error {
	var existing models.Agent
	err := r.db.WithContext(ctx).Where("record_id = ?", agent.RecordID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to upsert agent: %w", err)
	}

	agent.ID = existing.ID
	agent.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(agent).Error; err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

func (r *agentRepository) ListActive(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.AgentStatusActive).
		Order("created_at DESC").
		Find(&agents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}
