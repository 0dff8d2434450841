package workflow

import "github.com/kendall-kelly/printshop-api/models"

// DeriveOrderStatus computes an order's status from the full set of its job statuses.
//
// Delivered and Cancelled orders never change. An order with no jobs keeps its
// status. When every job is Completed the order is Completed; when every job is
// still Pending the order is Pending, unless it is a Quote or already Approved.
// Any other mix puts the order In Production.
func DeriveOrderStatus(current models.OrderStatus, jobs []models.JobStatus) models.OrderStatus {
	if current.Closed() || len(jobs) == 0 {
		return current
	}

	completed, pending := 0, 0
	for _, s := range jobs {
		switch s {
		case models.JobCompleted:
			completed++
		case models.JobPending:
			pending++
		}
	}

	switch {
	case completed == len(jobs):
		return models.OrderCompleted
	case pending == len(jobs):
		if current == models.OrderQuote || current == models.OrderApproved {
			return current
		}
		return models.OrderPending
	default:
		return models.OrderInProduction
	}
}

// CanApproveOrder reports whether an order can be approved
func CanApproveOrder(s models.OrderStatus) bool {
	return s == models.OrderQuote || s == models.OrderPending
}

// CanDeliverOrder reports whether an order can be marked delivered
func CanDeliverOrder(s models.OrderStatus) bool {
	return s == models.OrderCompleted
}

// CanCancelOrder reports whether an order can be cancelled
func CanCancelOrder(s models.OrderStatus) bool {
	switch s {
	case models.OrderCompleted, models.OrderDelivered, models.OrderCancelled:
		return false
	}
	return true
}
