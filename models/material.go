package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Material is a consumable tracked in inventory
type Material struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	StockLevel   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"stock_level"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"reorder_level"`
	Unit         string          `gorm:"size:20;not null" json:"unit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// IsLowStock reports whether stock is at or below the reorder level
func (m *Material) IsLowStock() bool {
	return m.StockLevel.LessThanOrEqual(m.ReorderLevel)
}
