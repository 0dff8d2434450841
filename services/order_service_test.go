package services

import (
	"errors"
	"testing"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_Numbering(t *testing.T) {
	f := newFixture(t)

	first := f.newOrder()
	second := f.newOrder()
	quote, err := f.orders.CreateQuote(f.ctx, CreateOrderInput{CustomerID: f.customer.ID})
	require.NoError(t, err)

	assert.Equal(t, "ORD-20240315-001", first.OrderNumber)
	assert.Equal(t, "ORD-20240315-002", second.OrderNumber)
	assert.Equal(t, "QUO-20240315-001", quote.OrderNumber)
	assert.Equal(t, models.OrderPending, first.Status)
	assert.Equal(t, models.OrderQuote, quote.Status)
	assert.True(t, first.TotalAmount.IsZero())
	require.NotNil(t, first.Customer)
	assert.Equal(t, "Acme Corp", first.Customer.Name)
}

func TestCreateOrder_NumberingRestartsEachDay(t *testing.T) {
	f := newFixture(t)
	f.newOrder()

	freezeClock(t, fixedNow.AddDate(0, 0, 1))
	next := f.newOrder()
	assert.Equal(t, "ORD-20240316-001", next.OrderNumber)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		input    CreateOrderInput
		wantCode string
	}{
		{name: "unknown customer", input: CreateOrderInput{CustomerID: 999}, wantCode: "CUSTOMER_NOT_FOUND"},
		{name: "status cannot be approved", input: CreateOrderInput{CustomerID: f.customer.ID, Status: "Approved"}, wantCode: "VALIDATION_ERROR"},
		{name: "bad due date", input: CreateOrderInput{CustomerID: f.customer.ID, DueDate: "15/03/2024"}, wantCode: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(f.ctx, tt.input)
			var se *Error
			require.True(t, errors.As(err, &se), "expected service error, got %v", err)
			assert.Equal(t, tt.wantCode, se.Code)
		})
	}
}

func TestAddJob_RecalculatesTotal(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()

	job := f.addJob(order.ID, 1000)
	assert.Equal(t, "JOB-20240315-001", job.JobNumber)
	assert.Equal(t, models.JobPending, job.Status)
	require.Len(t, job.Events, 1)
	assert.Equal(t, models.EventCreated, job.Events[0].Event)
	assert.Equal(t, "tester", job.Events[0].Actor)

	posters := testutil.CreateProduct(t, f.db, "Posters", "15.00")
	qty := 3
	_, err := f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &posters.ID, Quantity: &qty}, nil, "tester")
	require.NoError(t, err)

	order = f.reloadOrder(order.ID)
	assert.Equal(t, "545.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Len(t, order.Jobs, 2)
}

func TestAddJob_Validation(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()

	_, err := f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(0)}, nil, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.AddJob(f.ctx, order.ID, JobInput{Quantity: ptr(5)}, nil, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: ptr(uint(404)), Quantity: ptr(5)}, nil, "")
	assert.True(t, IsNotFound(err))

	_, err = f.orders.AddJob(f.ctx, 404, JobInput{ProductID: &f.product.ID, Quantity: ptr(5)}, nil, "")
	assert.True(t, IsNotFound(err))
}

func TestAddJob_ClosedOrderRejected(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	_, err := f.orders.CancelOrder(f.ctx, order.ID)
	require.NoError(t, err)

	_, err = f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(1)}, nil, "")
	assert.ErrorIs(t, err, ErrOrderClosed)
}

func TestAddJob_Artwork(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()

	artwork := newFileHeader(t, "design.pdf", []byte("%PDF-1.4"))
	job, err := f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(10)}, artwork, "tester")
	require.NoError(t, err)

	assert.NotEmpty(t, job.FilePath)
	assert.True(t, f.storage.Exists(job.FilePath))
	require.NotNil(t, job.FileURL)
	assert.Contains(t, *job.FileURL, "mock=true")

	bad := newFileHeader(t, "virus.exe", []byte("MZ"))
	_, err = f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(10)}, bad, "tester")
	require.Error(t, err)
	assert.Equal(t, 1, f.storage.Count())
}

func TestAddJob_ClosedOrderStoresNoArtwork(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	_, err := f.orders.CancelOrder(f.ctx, order.ID)
	require.NoError(t, err)

	artwork := newFileHeader(t, "design.png", []byte("png"))
	_, err = f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(1)}, artwork, "tester")
	assert.ErrorIs(t, err, ErrOrderClosed)
	assert.Equal(t, 0, f.storage.Count())
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	job := f.addJob(order.ID, 100)

	updated, err := f.orders.UpdateJob(f.ctx, job.ID, JobInput{Quantity: ptr(200), PaperType: ptr("100# Gloss")}, nil, "editor")
	require.NoError(t, err)
	assert.Equal(t, 200, updated.Quantity)
	assert.Equal(t, "100# Gloss", updated.PaperType)
	require.Len(t, updated.Events, 2)
	assert.Equal(t, models.EventUpdated, updated.Events[1].Event)
	assert.Equal(t, "editor", updated.Events[1].Actor)

	assert.Equal(t, "100.00", f.reloadOrder(order.ID).TotalAmount.StringFixed(2))

	_, err = f.orders.UpdateJob(f.ctx, job.ID, JobInput{Quantity: ptr(-1)}, nil, "editor")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateJob_ReplacesArtwork(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	job, err := f.orders.AddJob(f.ctx, order.ID, JobInput{ProductID: &f.product.ID, Quantity: ptr(1)},
		newFileHeader(t, "v1.pdf", []byte("one")), "tester")
	require.NoError(t, err)
	oldKey := job.FilePath

	job, err = f.orders.UpdateJob(f.ctx, job.ID, JobInput{}, newFileHeader(t, "v2.pdf", []byte("two")), "tester")
	require.NoError(t, err)

	assert.NotEqual(t, oldKey, job.FilePath)
	assert.False(t, f.storage.Exists(oldKey))
	assert.True(t, f.storage.Exists(job.FilePath))
	assert.Equal(t, models.EventArtworkUploaded, job.Events[len(job.Events)-1].Event)
}

func TestDeleteJob_RederivesOrder(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	done := f.addJob(order.ID, 10)
	pending := f.addJob(order.ID, 20)

	f.setJobStatus(done.ID, models.JobCompleted)
	assert.Equal(t, models.OrderInProduction, f.reloadOrder(order.ID).Status)

	require.NoError(t, f.orders.DeleteJob(f.ctx, pending.ID))
	order = f.reloadOrder(order.ID)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.Equal(t, "5.00", order.TotalAmount.StringFixed(2))

	assert.True(t, IsNotFound(f.orders.DeleteJob(f.ctx, pending.ID)))
}

func TestOrderStatusActions(t *testing.T) {
	f := newFixture(t)

	quote, err := f.orders.CreateQuote(f.ctx, CreateOrderInput{CustomerID: f.customer.ID})
	require.NoError(t, err)
	approved, err := f.orders.ApproveOrder(f.ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderApproved, approved.Status)

	_, err = f.orders.ApproveOrder(f.ctx, quote.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.orders.DeliverOrder(f.ctx, quote.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order := f.newOrder()
	job := f.addJob(order.ID, 1)
	f.setJobStatus(job.ID, models.JobCompleted)
	delivered, err := f.orders.DeliverOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, delivered.Status)

	_, err = f.orders.CancelOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprovedOrderStaysApprovedWhileJobsPending(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	_, err := f.orders.ApproveOrder(f.ctx, order.ID)
	require.NoError(t, err)

	f.addJob(order.ID, 5)
	assert.Equal(t, models.OrderApproved, f.reloadOrder(order.ID).Status)
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder()
	other := testutil.CreateCustomer(t, f.db, "Globex")

	updated, err := f.orders.UpdateOrder(f.ctx, order.ID, UpdateOrderInput{
		CustomerID: &other.ID,
		DueDate:    ptr("2024-04-01"),
		Notes:      ptr("  rush  "),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.CustomerID)
	assert.Equal(t, "rush", updated.Notes)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2024-04-01", updated.DueDate.Local().Format("2006-01-02"))

	_, err = f.orders.UpdateOrder(f.ctx, order.ID, UpdateOrderInput{CustomerID: ptr(uint(999))})
	assert.True(t, IsNotFound(err))
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.newOrder()
	}
	quote, err := f.orders.CreateQuote(f.ctx, CreateOrderInput{CustomerID: f.customer.ID})
	require.NoError(t, err)

	all, total, err := f.orders.ListOrders(f.ctx, OrderFilter{Page: Page{Number: 1, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 2)

	quotes, total, err := f.orders.ListOrders(f.ctx, OrderFilter{Status: "Quote"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, quote.ID, quotes[0].ID)

	_, _, err = f.orders.ListOrders(f.ctx, OrderFilter{Status: "Shipped"})
	assert.ErrorIs(t, err, ErrValidation)
}
