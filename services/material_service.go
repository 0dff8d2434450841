package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialInput is the request body for creating or editing a material
type MaterialInput struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	StockLevel   *decimal.Decimal `json:"stock_level"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
	Unit         *string          `json:"unit"`
}

// StockResult is a material after a stock change
type StockResult struct {
	Material *models.Material `json:"material"`
	LowStock bool             `json:"low_stock"`
}

// Warning returns the advisory message for low stock, or ""
func (r *StockResult) Warning() string {
	if r == nil || !r.LowStock {
		return ""
	}
	return fmt.Sprintf("%s is low on stock (%s %s remaining, reorder level %s)",
		r.Material.Name, r.Material.StockLevel.String(), r.Material.Unit, r.Material.ReorderLevel.String())
}

func (r *StockResult) warn() {
	if r == nil || !r.LowStock {
		return
	}
	metrics.Default().LowStock(r.Material.Name)
	zap.L().Warn("material low on stock",
		zap.Uint("material_id", r.Material.ID),
		zap.String("material", r.Material.Name),
		zap.String("stock_level", r.Material.StockLevel.String()))
}

// MaterialService manages inventory
type MaterialService struct {
	db *gorm.DB
}

// NewMaterialService creates a material service
func NewMaterialService(db *gorm.DB) *MaterialService {
	return &MaterialService{db: db}
}

// List returns all materials sorted by name
func (s *MaterialService) List(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).Order("name").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// LowStock returns materials at or below their reorder level
func (s *MaterialService) LowStock(ctx context.Context) ([]models.Material, error) {
	materials, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	low := []models.Material{}
	for _, m := range materials {
		if m.IsLowStock() {
			low = append(low, m)
		}
	}
	return low, nil
}

// Get loads a material
func (s *MaterialService) Get(ctx context.Context, id uint) (*models.Material, error) {
	var m models.Material
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "material", id)
	}
	return &m, nil
}

// Create adds a material
func (s *MaterialService) Create(ctx context.Context, in MaterialInput) (*models.Material, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, Errorf(ErrValidation, "name is required")
	}
	if in.Unit == nil || strings.TrimSpace(*in.Unit) == "" {
		return nil, Errorf(ErrValidation, "unit is required")
	}
	if in.UnitPrice == nil {
		return nil, Errorf(ErrValidation, "unit_price is required")
	}
	m := models.Material{StockLevel: decimal.Zero, ReorderLevel: decimal.Zero}
	if err := applyMaterialInput(&m, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return &m, nil
}

// Update edits a material
func (s *MaterialService) Update(ctx context.Context, id uint, in MaterialInput) (*models.Material, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyMaterialInput(m, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	return m, nil
}

// Delete removes a material
func (s *MaterialService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Material{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "material", id)
	}
	return nil
}

// UpdateStock adds or removes quantity; removal beyond current stock is rejected
func (s *MaterialService) UpdateStock(ctx context.Context, id uint, quantity decimal.Decimal, isAddition bool) (*StockResult, error) {
	if !quantity.IsPositive() {
		return nil, Errorf(ErrValidation, "quantity must be greater than zero")
	}
	var result *StockResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := adjustStock(tx, id, quantity, isAddition)
		result = res
		return err
	})
	if err != nil {
		return nil, err
	}
	result.warn()
	return result, nil
}

// adjustStock changes a locked material's stock level inside tx
func adjustStock(tx *gorm.DB, id uint, quantity decimal.Decimal, isAddition bool) (*StockResult, error) {
	var m models.Material
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
		return nil, notFound(err, "material", id)
	}

	if isAddition {
		m.StockLevel = m.StockLevel.Add(quantity)
	} else {
		if quantity.GreaterThan(m.StockLevel) {
			return nil, Errorf(ErrInsufficientStock, "insufficient stock of %s: %s %s available, %s requested",
				m.Name, m.StockLevel.String(), m.Unit, quantity.String())
		}
		m.StockLevel = m.StockLevel.Sub(quantity)
	}

	if err := tx.Model(&m).Update("stock_level", m.StockLevel).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return &StockResult{Material: &m, LowStock: m.IsLowStock()}, nil
}

func applyMaterialInput(m *models.Material, in MaterialInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Errorf(ErrValidation, "name cannot be empty")
		}
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Unit != nil {
		if strings.TrimSpace(*in.Unit) == "" {
			return Errorf(ErrValidation, "unit cannot be empty")
		}
		m.Unit = strings.TrimSpace(*in.Unit)
	}
	for name, v := range map[string]*decimal.Decimal{
		"unit_price":    in.UnitPrice,
		"stock_level":   in.StockLevel,
		"reorder_level": in.ReorderLevel,
	} {
		if v != nil && v.IsNegative() {
			return Errorf(ErrValidation, "%s cannot be negative", name)
		}
	}
	if in.UnitPrice != nil {
		m.UnitPrice = *in.UnitPrice
	}
	if in.StockLevel != nil {
		m.StockLevel = *in.StockLevel
	}
	if in.ReorderLevel != nil {
		m.ReorderLevel = *in.ReorderLevel
	}
	return nil
}
