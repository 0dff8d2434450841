package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the request body for creating or editing a product
type ProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ProductService manages the product catalogue
type ProductService struct {
	db *gorm.DB
}

// NewProductService creates a product service
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List returns all products sorted by name
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get loads a product
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// Create adds a product
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, Errorf(ErrValidation, "name is required")
	}
	if in.UnitPrice == nil {
		return nil, Errorf(ErrValidation, "unit_price is required")
	}
	var p models.Product
	if err := applyProductInput(&p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// Update edits a product. Existing order totals change on their next recalculation.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// Delete removes a product that no job references
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "product", id)
		}
		var jobs int64
		if err := tx.Model(&models.Job{}).Where("product_id = ?", id).Count(&jobs).Error; err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		if jobs > 0 {
			return Errorf(ErrProductInUse, "product %s is used by %d job(s) and cannot be deleted", p.Name, jobs)
		}
		return tx.Delete(&p).Error
	})
}

func applyProductInput(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Errorf(ErrValidation, "name cannot be empty")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return Errorf(ErrValidation, "unit_price cannot be negative")
		}
		p.UnitPrice = *in.UnitPrice
	}
	return nil
}
