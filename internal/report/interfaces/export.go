package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	report "store-monitor/internal/report/domain"
	uptime "store-monitor/internal/uptime/domain"
)

// csvHeader is the export contract: field order and units must not change.
var csvHeader = []string{
	"store_id",
	"uptime_last_hour(in minutes)",
	"uptime_last_day(in hours)",
	"uptime_last_week(in hours)",
	"downtime_last_hour(in minutes)",
	"downtime_last_day(in hours)",
	"downtime_last_week(in hours)",
}

// BuildReportCSV renders the tabular export, one row per store. Minute
// values are integers, hour values carry two decimals.
func BuildReportCSV(rows []uptime.Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.StoreID,
			strconv.FormatInt(row.UptimeLastHourMinutes, 10),
			formatHours(row.UptimeLastDayHours),
			formatHours(row.UptimeLastWeekHours),
			strconv.FormatInt(row.DowntimeLastHourMinutes, 10),
			formatHours(row.DowntimeLastDayHours),
			formatHours(row.DowntimeLastWeekHours),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders the report as a workbook: a summary sheet with
// report metadata and a rows sheet mirroring the CSV contract plus the
// derived metrics.
func BuildReportXLSX(rpt *report.Report) ([]byte, error) {
	rows, err := rpt.ReadRows()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	summarySheet := "summary"
	rowsSheet := "stores"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rowsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Store Uptime Report")
	_ = f.SetCellValue(summarySheet, "A3", "Report ID")
	_ = f.SetCellValue(summarySheet, "B3", rpt.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Created")
	_ = f.SetCellValue(summarySheet, "B4", rpt.CreatedAt.Format("2006-01-02 15:04:05"))
	_ = f.SetCellValue(summarySheet, "A5", "Completed")
	_ = f.SetCellValue(summarySheet, "B5", rpt.CompletedAt.Format("2006-01-02 15:04:05"))
	_ = f.SetCellValue(summarySheet, "A6", "Stores")
	_ = f.SetCellValue(summarySheet, "B6", len(rows))

	for col, name := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	extraStart := len(csvHeader)
	for i, name := range []string{"average_uptime_percentage", "total_business_hours_week"} {
		cell, _ := excelize.CoordinatesToCellName(extraStart+i+1, 1)
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, row := range rows {
		values := []any{
			row.StoreID,
			row.UptimeLastHourMinutes,
			row.UptimeLastDayHours,
			row.UptimeLastWeekHours,
			row.DowntimeLastHourMinutes,
			row.DowntimeLastDayHours,
			row.DowntimeLastWeekHours,
			row.AverageUptimePercent,
			row.TotalBusinessHoursWeek,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(rowsSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders a minimal PDF for a completed report.
func BuildReportPDF(rpt *report.Report) ([]byte, error) {
	rows, err := rpt.ReadRows()
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Store Uptime Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Report: %s", rpt.ID))
	pdf.Ln(4)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", rpt.CompletedAt.Format("2006-01-02 15:04:05")))
	pdf.Ln(8)

	widths := []float64{72, 30, 30, 30, 32, 32, 32}
	headers := []string{"Store", "Up 1h (min)", "Up 1d (h)", "Up 1w (h)", "Down 1h (min)", "Down 1d (h)", "Down 1w (h)"}
	pdf.SetFont("Arial", "B", 8)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 6, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range rows {
		cells := []string{
			row.StoreID,
			strconv.FormatInt(row.UptimeLastHourMinutes, 10),
			formatHours(row.UptimeLastDayHours),
			formatHours(row.UptimeLastWeekHours),
			strconv.FormatInt(row.DowntimeLastHourMinutes, 10),
			formatHours(row.DowntimeLastDayHours),
			formatHours(row.DowntimeLastWeekHours),
		}
		for i, cell := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatHours(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
