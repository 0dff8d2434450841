package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a customer's request, made up of one or more jobs
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;size:32;not null" json:"order_number"`
	CustomerID  uint            `gorm:"not null;index" json:"customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status      OrderStatus     `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	DueDate     *time.Time      `json:"due_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Jobs        []Job           `gorm:"foreignKey:OrderID" json:"jobs,omitempty"`
	Invoices    []Invoice       `gorm:"foreignKey:OrderID" json:"invoices,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
