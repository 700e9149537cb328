package export

import (
	"bytes"
	"fmt"
	"time"

	"carebook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	summarySheet  = "Summary"
)

var bookingColumns = []string{
	"ID", "Service", "Customer", "Email", "Duration", "Unit",
	"Division", "District", "City", "Area", "Address", "Total cost", "Status", "Created",
}

var statusFill = map[models.BookingStatus]string{
	models.StatusPending:   "#FFF2CC",
	models.StatusConfirmed: "#DDEBF7",
	models.StatusCompleted: "#E2EFDA",
	models.StatusCancelled: "#F8CBAD",
}

// ContentType of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName builds the download name for an export taken at now.
func FileName(status models.BookingStatus, now time.Time) string {
	if status == "" {
		return fmt.Sprintf("bookings_%s.xlsx", now.Format("2006-01-02"))
	}
	return fmt.Sprintf("bookings_%s_%s.xlsx", status, now.Format("2006-01-02"))
}

// BookingsXLSX renders bookings into a workbook with a bookings sheet and a status summary.
func BookingsXLSX(bookings []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeHeader(f, bookingsSheet, bookingColumns); err != nil {
		return nil, err
	}

	styles := make(map[models.BookingStatus]int, len(statusFill))
	for status, color := range statusFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = style
	}

	revenue := make(map[models.BookingStatus]decimal.Decimal, len(models.AllStatuses))
	counts := make(map[models.BookingStatus]int, len(models.AllStatuses))

	for i, b := range bookings {
		row := i + 2
		created := ""
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			b.ID, b.ServiceName, b.UserName, b.UserEmail,
			b.DurationValue.InexactFloat64(), string(b.DurationType),
			b.Division, b.District, b.City, b.Area, b.Address,
			b.TotalCost.InexactFloat64(), string(b.Status), created,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(bookingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}

		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(13, row)
			_ = f.SetCellStyle(bookingsSheet, statusCell, statusCell, style)
		}

		counts[b.Status]++
		revenue[b.Status] = revenue[b.Status].Add(b.TotalCost)
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 28)
	_ = f.SetColWidth(bookingsSheet, "B", "D", 24)
	_ = f.SetColWidth(bookingsSheet, "E", "N", 14)
	_ = f.SetPanes(bookingsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := writeSummary(f, counts, revenue); err != nil {
		return nil, err
	}

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, counts map[models.BookingStatus]int, revenue map[models.BookingStatus]decimal.Decimal) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeHeader(f, summarySheet, []string{"Status", "Bookings", "Total cost"}); err != nil {
		return err
	}

	total := decimal.Zero
	totalCount := 0
	for i, status := range models.AllStatuses {
		row := []interface{}{string(status), counts[status], revenue[status].InexactFloat64()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
		total = total.Add(revenue[status])
		totalCount += counts[status]
	}

	totalRow := []interface{}{"Total", totalCount, total.InexactFloat64()}
	cell, _ := excelize.CoordinatesToCellName(1, len(models.AllStatuses)+2)
	if err := f.SetSheetRow(summarySheet, cell, &totalRow); err != nil {
		return fmt.Errorf("error writing summary: %w", err)
	}
	_ = f.SetColWidth(summarySheet, "A", "C", 16)
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
	return nil
}
