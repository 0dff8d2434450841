package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a private in-memory SQLite database with every table migrated
// and installs it as the global connection.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase("sqlite", ":memory:", false)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, models.AutoMigrate(db), "failed to migrate test database")
	config.SetDB(db)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// TestConfig returns defaults suitable for tests
func TestConfig() *config.Config {
	cfg := config.Defaults()
	cfg.GoEnv = "test"
	cfg.DBDriver = "sqlite"
	cfg.DatabaseURL = ":memory:"
	cfg.SessionSecret = "test-session-secret-0123456789abcdef"
	return cfg
}

// Money parses a decimal literal, panicking on malformed input
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateCustomer inserts a customer with the given name
func CreateCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()
	c := &models.Customer{Name: name, Email: fmt.Sprintf("contact@%s.test", slug(name)), Country: "USA"}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateProduct inserts a product priced at unitPrice
func CreateProduct(t *testing.T, db *gorm.DB, name, unitPrice string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, UnitPrice: Money(unitPrice)}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateMaterial inserts a material with the given stock and reorder levels
func CreateMaterial(t *testing.T, db *gorm.DB, name, stock, reorder string) *models.Material {
	t.Helper()
	m := &models.Material{
		Name:         name,
		UnitPrice:    Money("1.00"),
		StockLevel:   Money(stock),
		ReorderLevel: Money(reorder),
		Unit:         "sheets",
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// CreateUser inserts an active account with password "password1"
func CreateUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@printshop.test", IsAdmin: admin, IsActive: true}
	require.NoError(t, u.SetPassword("password1"))
	require.NoError(t, db.Create(u).Error)
	return u
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	return string(out)
}
