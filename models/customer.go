package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a client of the print shop
type Customer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null;index" json:"name"`
	ContactPerson string         `gorm:"size:100" json:"contact_person"`
	Email         string         `gorm:"size:120" json:"email"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Address       string         `gorm:"size:200" json:"address"`
	City          string         `gorm:"size:100" json:"city"`
	State         string         `gorm:"size:50" json:"state"`
	PostalCode    string         `gorm:"size:20" json:"postal_code"`
	Country       string         `gorm:"size:50;default:'USA'" json:"country"`
	TaxID         string         `gorm:"size:50" json:"tax_id"`
	Notes         string         `gorm:"type:text" json:"notes"`
	Orders        []Order        `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
