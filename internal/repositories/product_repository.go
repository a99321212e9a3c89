package repositories

import (
	"context"
	"errors"
	"fmt"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Product, error)
	Upsert(ctx context.Context, product *models.Product) error
	ListByPriceAsc(ctx context.Context) ([]models.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) Upsert(ctx context.Context, product *models.Product) error {
	var existing models.Product
	err := r.db.WithContext(ctx).Where("external_id = ?", product.ExternalID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *productRepository) ListByPriceAsc(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("price_amount ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
