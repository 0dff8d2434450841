package workflow

import (
	"testing"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.OrderStatus
		jobs    []models.JobStatus
		want    models.OrderStatus
	}{
		{"no jobs keeps status", models.OrderApproved, nil, models.OrderApproved},
		{"single job prepress", models.OrderPending, []models.JobStatus{models.JobPrepress}, models.OrderInProduction},
		{"single job completed", models.OrderInProduction, []models.JobStatus{models.JobCompleted}, models.OrderCompleted},
		{"all completed", models.OrderInProduction, []models.JobStatus{models.JobCompleted, models.JobCompleted}, models.OrderCompleted},
		{"one completed one pending", models.OrderPending, []models.JobStatus{models.JobCompleted, models.JobPending}, models.OrderInProduction},
		{"completed order reopened by rework", models.OrderCompleted, []models.JobStatus{models.JobCompleted, models.JobPress}, models.OrderInProduction},
		{"all pending from in production", models.OrderInProduction, []models.JobStatus{models.JobPending, models.JobPending}, models.OrderPending},
		{"all pending keeps quote", models.OrderQuote, []models.JobStatus{models.JobPending}, models.OrderQuote},
		{"all pending keeps approved", models.OrderApproved, []models.JobStatus{models.JobPending}, models.OrderApproved},
		{"quality check", models.OrderApproved, []models.JobStatus{models.JobQualityCheck}, models.OrderInProduction},
		{"delivered is terminal", models.OrderDelivered, []models.JobStatus{models.JobPress}, models.OrderDelivered},
		{"cancelled is terminal", models.OrderCancelled, []models.JobStatus{models.JobCompleted}, models.OrderCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.current, tt.jobs))
		})
	}
}

// Completed iff every job is completed, for every non-terminal order.
func TestDeriveOrderStatusCompletedIffAllJobsCompleted(t *testing.T) {
	sets := [][]models.JobStatus{
		{models.JobCompleted},
		{models.JobCompleted, models.JobPending},
		{models.JobCompleted, models.JobQualityCheck, models.JobCompleted},
		{models.JobPrepress, models.JobPostpress},
		{models.JobCompleted, models.JobCompleted, models.JobCompleted},
	}
	for _, current := range []models.OrderStatus{models.OrderQuote, models.OrderPending, models.OrderApproved, models.OrderInProduction, models.OrderCompleted} {
		for _, jobs := range sets {
			allDone := true
			for _, s := range jobs {
				allDone = allDone && s == models.JobCompleted
			}
			got := DeriveOrderStatus(current, jobs)
			assert.Equal(t, allDone, got == models.OrderCompleted, "current=%s jobs=%v", current, jobs)
		}
	}
}

func TestOrderActions(t *testing.T) {
	assert.True(t, CanApproveOrder(models.OrderQuote))
	assert.True(t, CanApproveOrder(models.OrderPending))
	assert.False(t, CanApproveOrder(models.OrderInProduction))

	assert.True(t, CanDeliverOrder(models.OrderCompleted))
	assert.False(t, CanDeliverOrder(models.OrderInProduction))

	assert.True(t, CanCancelOrder(models.OrderInProduction))
	assert.False(t, CanCancelOrder(models.OrderCompleted))
	assert.False(t, CanCancelOrder(models.OrderDelivered))
	assert.False(t, CanCancelOrder(models.OrderCancelled))
}
