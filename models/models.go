package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Money is rendered as a JSON number rather than a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every persisted model, in dependency order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Product{},
		&Material{},
		&Order{},
		&Job{},
		&JobEvent{},
		&Invoice{},
		&Payment{},
	}
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
