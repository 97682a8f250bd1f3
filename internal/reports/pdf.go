package reports

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 38, "L"},
	{"Product", 52, "L"},
	{"Action", 38, "L"},
	{"Qty", 16, "R"},
	{"Reference", 46, "L"},
}

// RenderMonthLog writes a one-table PDF of the month's ledger rows to w.
func RenderMonthLog(w io.Writer, month string, rows []inventorylog.ReportRow, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Inventory log %s", month), true)
	pdf.SetCreator("stockroom", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Inventory log - %s", month), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d entries, times in %s", len(rows), loc.String()), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range columns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	if len(rows) == 0 {
		pdf.CellFormat(0, 7, "No inventory activity recorded for this month.", "1", 1, "C", false, 0, "")
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			row.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			truncate(productLabel(row), 32),
			row.ActionType.String(),
			strconv.Itoa(row.QuantityChanged),
			reference(row),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render month log: %w", err)
	}
	return pdf.Output(w)
}

func productLabel(row inventorylog.ReportRow) string {
	if row.ProductName != "" {
		return row.ProductName
	}
	return row.ProductID.String()
}

func reference(row inventorylog.ReportRow) string {
	if row.ReferenceID == nil {
		return "-"
	}
	return row.ReferenceID.String()[:8]
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "~"
}
