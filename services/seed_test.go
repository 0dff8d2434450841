package services

import (
	"testing"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults_Idempotent(t *testing.T) {
	f := newFixture(t)
	// the fixture already created one product, so only materials are seeded
	res, err := SeedDefaults(f.ctx, f.db)
	require.NoError(t, err)
	assert.True(t, res.AdminCreated)
	assert.Zero(t, res.ProductsCreated)
	assert.Equal(t, len(defaultMaterials), res.MaterialsCreated)

	res, err = SeedDefaults(f.ctx, f.db)
	require.NoError(t, err)
	assert.False(t, res.AdminCreated)
	assert.Zero(t, res.MaterialsCreated)

	var admin models.User
	require.NoError(t, f.db.Where("username = ?", DefaultAdminUsername).First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.CheckPassword(DefaultAdminPassword))
}

func TestSeedDefaults_EmptyDatabase(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Unscoped().Where("1 = 1").Delete(&models.Product{}).Error)

	res, err := SeedDefaults(f.ctx, f.db)
	require.NoError(t, err)
	assert.Equal(t, 6, res.ProductsCreated)
	assert.Equal(t, 8, res.MaterialsCreated)

	products, err := f.products.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestSeedDemo(t *testing.T) {
	f := newFixture(t)

	created, err := SeedDemo(f.ctx, f.db, DBSequencer{})
	require.NoError(t, err)
	assert.True(t, created)

	var customer models.Customer
	require.NoError(t, f.db.Where("name = ?", DemoCustomerName).First(&customer).Error)
	orders, total, err := f.orders.ListOrders(f.ctx, OrderFilter{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	order := orders[0]
	assert.Equal(t, models.OrderInProduction, order.Status)

	full := f.reloadOrder(order.ID)
	require.Len(t, full.Jobs, 1)
	assert.Equal(t, models.JobPrepress, full.Jobs[0].Status)
	assert.Equal(t, "4/4", full.Jobs[0].Colors)

	invoices, _, err := f.invoices.ListInvoices(f.ctx, InvoiceFilter{CustomerID: customer.ID})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoiceSent, invoices[0].Status)
	assert.Equal(t, "500.00", invoices[0].TotalAmount.StringFixed(2))

	created, err = SeedDemo(f.ctx, f.db, DBSequencer{})
	require.NoError(t, err)
	assert.False(t, created)
}
