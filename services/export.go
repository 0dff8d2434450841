package services

import (
	"fmt"
	"io"
	"time"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is one worksheet of an export
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]interface{}
}

// WriteXLSX renders tables as worksheets of a single workbook
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.Sheet, err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Sheet, err)
		}
		if err := writeTable(f, t, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t Table, headerStyle int) error {
	for col, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.Sheet, colName, colName, 18); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func dateCell(t time.Time) string {
	return t.Format(dateLayout)
}

// Tables lays out the order report for export
func (r *OrderReport) Tables() []Table {
	t := Table{
		Sheet:   "Orders",
		Headers: []string{"Order Number", "Customer", "Status", "Created", "Due Date", "Total"},
	}
	for _, o := range r.Orders {
		customer := ""
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		due := ""
		if o.DueDate != nil {
			due = dateCell(*o.DueDate)
		}
		t.Rows = append(t.Rows, []interface{}{
			o.OrderNumber, customer, string(o.Status), dateCell(o.CreatedAt), due, o.TotalAmount.InexactFloat64(),
		})
	}

	summary := Table{Sheet: "Summary", Headers: []string{"Status", "Orders", "Amount"}}
	for _, st := range models.OrderStatuses {
		if n := r.ByStatus[st]; n > 0 {
			summary.Rows = append(summary.Rows, []interface{}{string(st), n, r.AmountBy[st].InexactFloat64()})
		}
	}
	summary.Rows = append(summary.Rows, []interface{}{"Total", r.TotalOrders, r.TotalAmount.InexactFloat64()})
	return []Table{t, summary}
}

// Tables lays out the production report for export
func (r *ProductionReport) Tables() []Table {
	jobs := Table{
		Sheet:   "Jobs",
		Headers: []string{"Job Number", "Order", "Product", "Quantity", "Status", "Start", "Completed", "Estimated Hours", "Actual Hours"},
	}
	for _, j := range r.Jobs {
		order, product, start, done := "", "", "", ""
		if j.Order != nil {
			order = j.Order.OrderNumber
		}
		if j.Product != nil {
			product = j.Product.Name
		}
		if j.StartDate != nil {
			start = dateCell(*j.StartDate)
		}
		if j.CompletionDate != nil {
			done = dateCell(*j.CompletionDate)
		}
		jobs.Rows = append(jobs.Rows, []interface{}{
			j.JobNumber, order, product, j.Quantity, string(j.Status), start, done, floatOrEmpty(j.EstimatedHours), floatOrEmpty(j.ActualHours),
		})
	}

	products := Table{Sheet: "Products", Headers: []string{"Product", "Jobs", "Completed", "Quantity", "Actual Hours"}}
	for _, p := range r.Products {
		products.Rows = append(products.Rows, []interface{}{p.Name, p.Jobs, p.Completed, p.Quantity, p.ActualHours})
	}
	products.Rows = append(products.Rows, []interface{}{
		fmt.Sprintf("Completion rate %.1f%%", r.CompletionRate), r.TotalJobs, r.CompletedJobs, "", r.TotalActualHours,
	})
	return []Table{jobs, products}
}

// Tables lays out the invoice report for export
func (r *InvoiceReport) Tables() []Table {
	if r.Kind == InvoiceReportMonthly {
		t := Table{Sheet: "Monthly", Headers: []string{"Month", "Invoices", "Total", "Paid", "Outstanding"}}
		for _, m := range r.Months {
			t.Rows = append(t.Rows, []interface{}{
				m.Label, m.Count, m.Total.InexactFloat64(), m.Paid.InexactFloat64(), m.Outstanding.InexactFloat64(),
			})
		}
		return []Table{t}
	}

	t := Table{
		Sheet:   "Invoices",
		Headers: []string{"Invoice Number", "Order", "Customer", "Status", "Created", "Due Date", "Total", "Paid", "Balance"},
	}
	for _, inv := range r.Invoices {
		order, customer := "", ""
		if inv.Order != nil {
			order = inv.Order.OrderNumber
			if inv.Order.Customer != nil {
				customer = inv.Order.Customer.Name
			}
		}
		t.Rows = append(t.Rows, []interface{}{
			inv.InvoiceNumber, order, customer, string(inv.Status), dateCell(inv.CreatedAt), dateCell(inv.DueDate),
			inv.TotalAmount.InexactFloat64(), inv.TotalPaid.InexactFloat64(), inv.BalanceDue.InexactFloat64(),
		})
	}
	return []Table{t}
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
