package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Bootstrap administrator created by init-db
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@printshop.local"
	DefaultAdminPassword = "admin"
)

// DemoCustomerName identifies the customer created by SeedDemo
const DemoCustomerName = "ABC Printing Co."

var defaultProducts = []models.Product{
	{Name: "Business Cards", Description: `Standard business cards, 3.5" x 2", full color both sides`, UnitPrice: decimal.RequireFromString("45.00")},
	{Name: "Flyers - Letter Size", Description: `8.5" x 11" flyers, full color one side`, UnitPrice: decimal.RequireFromString("0.25")},
	{Name: "Brochures - Trifold", Description: `8.5" x 11" trifold brochures, full color both sides`, UnitPrice: decimal.RequireFromString("0.65")},
	{Name: `Posters - 18" x 24"`, Description: `18" x 24" posters, full color one side`, UnitPrice: decimal.RequireFromString("15.00")},
	{Name: `Postcards - 4" x 6"`, Description: `4" x 6" postcards, full color both sides`, UnitPrice: decimal.RequireFromString("0.20")},
	{Name: "Banners - 3' x 6'", Description: "3' x 6' vinyl banner, full color one side", UnitPrice: decimal.RequireFromString("75.00")},
}

func material(name, desc, price string, stock, reorder int64, unit string) models.Material {
	return models.Material{
		Name:         name,
		Description:  desc,
		UnitPrice:    decimal.RequireFromString(price),
		StockLevel:   decimal.NewFromInt(stock),
		ReorderLevel: decimal.NewFromInt(reorder),
		Unit:         unit,
	}
}

var defaultMaterials = []models.Material{
	material("100# Gloss Text", "100# (148 gsm) gloss coated text paper", "0.15", 5000, 1000, "sheets"),
	material("80# Uncoated Text", "80# (118 gsm) uncoated text paper", "0.12", 8000, 1500, "sheets"),
	material("100# Gloss Cover", "100# (270 gsm) gloss coated cover stock", "0.25", 3000, 800, "sheets"),
	material("13oz Scrim Vinyl", "13oz scrim banner vinyl", "2.50", 500, 100, "sq ft"),
	material("Black Toner", "Black toner cartridge for digital press", "120.00", 5, 2, "cartridges"),
	material("Cyan Toner", "Cyan toner cartridge for digital press", "150.00", 4, 2, "cartridges"),
	material("Magenta Toner", "Magenta toner cartridge for digital press", "150.00", 4, 2, "cartridges"),
	material("Yellow Toner", "Yellow toner cartridge for digital press", "150.00", 4, 2, "cartridges"),
}

// SeedResult reports what a seeding run created
type SeedResult struct {
	AdminCreated     bool `json:"admin_created"`
	ProductsCreated  int  `json:"products_created"`
	MaterialsCreated int  `json:"materials_created"`
}

// SeedDefaults creates the bootstrap admin and, when their tables are empty,
// the default product and material catalogues. It is safe to run repeatedly.
func SeedDefaults(ctx context.Context, db *gorm.DB) (*SeedResult, error) {
	res := &SeedResult{}

	_, created, err := NewUserService(db).EnsureAdmin(ctx, DefaultAdminUsername, DefaultAdminEmail, DefaultAdminPassword)
	if err != nil {
		return nil, err
	}
	res.AdminCreated = created

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count == 0 {
			products := make([]models.Product, len(defaultProducts))
			copy(products, defaultProducts)
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("failed to seed products: %w", err)
			}
			res.ProductsCreated = len(products)
		}

		if err := tx.Model(&models.Material{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count materials: %w", err)
		}
		if count == 0 {
			materials := make([]models.Material, len(defaultMaterials))
			copy(materials, defaultMaterials)
			if err := tx.Create(&materials).Error; err != nil {
				return fmt.Errorf("failed to seed materials: %w", err)
			}
			res.MaterialsCreated = len(materials)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("seeded defaults",
		zap.Bool("admin_created", res.AdminCreated),
		zap.Int("products", res.ProductsCreated),
		zap.Int("materials", res.MaterialsCreated))
	return res, nil
}

// SeedDemo creates a demo customer with an approved order, a job in Prepress
// and a sent invoice. It returns false when the demo customer already exists.
func SeedDemo(ctx context.Context, db *gorm.DB, seq Sequencer) (bool, error) {
	var existing models.Customer
	err := db.WithContext(ctx).Where("name = ?", DemoCustomerName).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up demo customer: %w", err)
	}

	var product models.Product
	if err := db.WithContext(ctx).Order("id").First(&product).Error; err != nil {
		return false, fmt.Errorf("demo data needs at least one product, run init-db first: %w", err)
	}

	str := func(s string) *string { return &s }
	customer, err := NewCustomerService(db).Create(ctx, CustomerInput{
		Name:          str(DemoCustomerName),
		ContactPerson: str("John Smith"),
		Email:         str("john@abcprinting.com"),
		Phone:         str("555-123-4567"),
		Address:       str("123 Main St"),
		City:          str("Anytown"),
		State:         str("CA"),
		PostalCode:    str("12345"),
		Country:       str("USA"),
	})
	if err != nil {
		return false, err
	}

	orders := NewOrderService(db, seq, nil)
	order, err := orders.CreateOrder(ctx, CreateOrderInput{
		CustomerID: customer.ID,
		DueDate:    now().AddDate(0, 0, 7).Format(dateLayout),
	})
	if err != nil {
		return false, err
	}
	if order, err = orders.ApproveOrder(ctx, order.ID); err != nil {
		return false, err
	}

	qty := 1000
	width, height := 88.9, 50.8
	pages := 2
	job, err := orders.AddJob(ctx, order.ID, JobInput{
		ProductID: &product.ID,
		Quantity:  &qty,
		Width:     &width,
		Height:    &height,
		Pages:     &pages,
		Colors:    str("4/4"),
		PaperType: str("100# Gloss Cover"),
	}, nil, "system")
	if err != nil {
		return false, err
	}
	if _, err := NewProductionService(db).UpdateJobStatus(ctx, job.ID, models.JobPrepress, "", "system"); err != nil {
		return false, err
	}

	invoices := NewInvoiceService(db, seq)
	amount := decimal.RequireFromString("450.00")
	tax := decimal.RequireFromString("50.00")
	inv, err := invoices.CreateInvoice(ctx, order.ID, CreateInvoiceInput{
		Amount:    &amount,
		TaxAmount: &tax,
		DueDate:   now().AddDate(0, 0, 25).Format(dateLayout),
	})
	if err != nil {
		return false, err
	}
	if _, err := invoices.MarkSent(ctx, inv.ID); err != nil {
		return false, err
	}

	zap.L().Info("demo data created",
		zap.String("customer", customer.Name),
		zap.String("order_number", order.OrderNumber),
		zap.String("invoice_number", inv.InvoiceNumber))
	return true, nil
}
