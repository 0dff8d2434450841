package services

import (
	"testing"
	"time"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backdate moves a record's created_at so date range filters can be exercised
func (f *fixture) backdate(model interface{}, id uint, at time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.db.Model(model).Where("id = ?", id).UpdateColumn("created_at", at).Error)
}

func TestOrderReport(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.db)

	a := f.newOrder()
	f.addJob(a.ID, 100) // 50.00
	b := f.newOrder()
	f.addJob(b.ID, 40) // 20.00
	_, err := f.orders.CancelOrder(f.ctx, b.ID)
	require.NoError(t, err)
	old := f.newOrder()
	f.backdate(&models.Order{}, old.ID, time.Date(2023, time.January, 10, 12, 0, 0, 0, time.Local))

	rep, err := reports.Orders(f.ctx, "", DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalOrders)
	assert.Equal(t, "70.00", rep.TotalAmount.StringFixed(2))
	assert.Equal(t, 2, rep.ByStatus[models.OrderPending])
	assert.Equal(t, 1, rep.ByStatus[models.OrderCancelled])
	assert.Equal(t, "20.00", rep.AmountBy[models.OrderCancelled].StringFixed(2))

	rep, err = reports.Orders(f.ctx, "Cancelled", DateRange{})
	require.NoError(t, err)
	require.Equal(t, 1, rep.TotalOrders)
	assert.Equal(t, b.ID, rep.Orders[0].ID)

	jan, err := ParseDateRange("2023-01-01", "2023-01-10")
	require.NoError(t, err)
	rep, err = reports.Orders(f.ctx, "all", jan)
	require.NoError(t, err)
	require.Equal(t, 1, rep.TotalOrders, "end date includes the whole day")
	assert.Equal(t, old.ID, rep.Orders[0].ID)

	_, err = reports.Orders(f.ctx, "Lost", DateRange{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductionReport(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.db)
	order := f.newOrder()

	pending := f.addJob(order.ID, 10)
	running := f.addJob(order.ID, 20)
	done := f.addJob(order.ID, 30)
	f.setJobStatus(running.ID, models.JobPress)
	f.setJobStatus(done.ID, models.JobPrepress)

	freezeClock(t, fixedNow.Add(6*time.Hour))
	_, err := f.production.CompleteJob(f.ctx, done.ID, CompleteInput{ActualHours: ptr(5.5)}, "tester")
	require.NoError(t, err)

	rep, err := reports.Production(f.ctx, ProductionAll, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalJobs)
	assert.Equal(t, 1, rep.CompletedJobs)
	assert.InDelta(t, 33.33, rep.CompletionRate, 0.01)
	assert.Equal(t, 5.5, rep.TotalActualHours)
	assert.InDelta(t, 6.0, rep.AvgTurnaroundHrs, 0.001)
	require.Len(t, rep.Products, 1)
	assert.Equal(t, "Flyers", rep.Products[0].Name)
	assert.Equal(t, 60, rep.Products[0].Quantity)

	filters := map[string]uint{
		ProductionPending:    pending.ID,
		ProductionInProgress: running.ID,
		ProductionCompleted:  done.ID,
	}
	for filter, want := range filters {
		rep, err := reports.Production(f.ctx, filter, DateRange{})
		require.NoError(t, err, filter)
		require.Len(t, rep.Jobs, 1, filter)
		assert.Equal(t, want, rep.Jobs[0].ID, filter)
	}

	_, err = reports.Production(f.ctx, "stalled", DateRange{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceReports(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.db)

	paid := f.sentInvoice("100")
	_, err := f.invoices.RecordPayment(f.ctx, paid.ID, pay("100"))
	require.NoError(t, err)
	partly := f.sentInvoice("200")
	_, err = f.invoices.RecordPayment(f.ctx, partly.ID, pay("50"))
	require.NoError(t, err)
	late := f.sentInvoice("300")
	_, err = f.invoices.MarkOverdue(f.ctx, late.ID)
	require.NoError(t, err)

	f.backdate(&models.Invoice{}, paid.ID, time.Date(2024, time.January, 20, 9, 0, 0, 0, time.Local))
	f.backdate(&models.Invoice{}, partly.ID, time.Date(2024, time.February, 2, 9, 0, 0, 0, time.Local))
	f.backdate(&models.Invoice{}, late.ID, time.Date(2024, time.February, 28, 9, 0, 0, 0, time.Local))

	rep, err := reports.Invoices(f.ctx, InvoiceReportOutstanding, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Count)
	assert.Equal(t, "500.00", rep.TotalOutstanding.StringFixed(2))

	rep, err = reports.Invoices(f.ctx, InvoiceReportOverdue, DateRange{})
	require.NoError(t, err)
	require.Len(t, rep.Invoices, 1)
	assert.Equal(t, late.ID, rep.Invoices[0].ID)

	rep, err = reports.Invoices(f.ctx, InvoiceReportPaid, DateRange{})
	require.NoError(t, err)
	require.Len(t, rep.Invoices, 1)
	assert.Equal(t, "100.00", rep.TotalPaid.StringFixed(2))

	rep, err = reports.Invoices(f.ctx, InvoiceReportMonthly, DateRange{})
	require.NoError(t, err)
	assert.Empty(t, rep.Invoices)
	require.Len(t, rep.Months, 2)
	assert.Equal(t, "2024-01", rep.Months[0].Month)
	assert.Equal(t, "January 2024", rep.Months[0].Label)
	assert.Equal(t, "100.00", rep.Months[0].Paid.StringFixed(2))
	assert.Equal(t, "February 2024", rep.Months[1].Label)
	assert.Equal(t, 2, rep.Months[1].Count)
	assert.Equal(t, "500.00", rep.Months[1].Total.StringFixed(2))
	assert.Equal(t, "500.00", rep.Months[1].Outstanding.StringFixed(2))

	// the months add up to the report totals
	paidSum, outstandingSum := decimal.Zero, decimal.Zero
	for _, m := range rep.Months {
		paidSum = paidSum.Add(m.Paid)
		outstandingSum = outstandingSum.Add(m.Outstanding)
	}
	assert.Equal(t, rep.TotalPaid.StringFixed(2), paidSum.StringFixed(2))
	assert.Equal(t, rep.TotalOutstanding.StringFixed(2), outstandingSum.StringFixed(2))
	assert.Equal(t, "100.00", rep.TotalPaid.StringFixed(2))

	feb, err := ParseDateRange("2024-02-01", "2024-02-29")
	require.NoError(t, err)
	rep, err = reports.Invoices(f.ctx, InvoiceReportMonthly, feb)
	require.NoError(t, err)
	require.Len(t, rep.Months, 1)

	_, err = reports.Invoices(f.ctx, "written_off", DateRange{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, r.Start)
	assert.Nil(t, r.End)

	_, err = ParseDateRange("2024-03-10", "2024-03-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseDateRange("03/01/2024", "")
	assert.ErrorIs(t, err, ErrValidation)

	r, err = ParseDateRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
}
