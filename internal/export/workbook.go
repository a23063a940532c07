package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"workshop-payroll-bot/internal/payroll"
)

// YearWorkbook writes the year summary as an .xlsx file: one row per week,
// a subtotal per month and the year total. It returns the file path.
func YearWorkbook(summary *payroll.YearSummary, workplaceName, dir string) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("year workbook: empty summary")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("recap_%d_%d.xlsx", summary.WorkplaceID, summary.Year))

	f := excelize.NewFile()
	defer f.Close()

	sheet := strconv.Itoa(summary.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return "", err
	}
	boldAmount, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2})
	if err != nil {
		return "", err
	}

	w := sheetWriter{f: f, sheet: sheet}
	w.row(bold, "Atelier", workplaceName)
	w.row(bold, "Mois", "Semaine", "Montant")

	for _, m := range summary.Months {
		for _, wk := range m.Weeks {
			w.row(0, m.Name, wk.WeekText, wk.TotalAmount.InexactFloat64())
			w.style("C", amount)
		}
		w.row(bold, "Total "+m.Name, "", m.TotalAmount.InexactFloat64())
		w.style("C", boldAmount)
	}
	w.row(bold, "Total annuel", "", summary.TotalAmount.InexactFloat64())
	w.style("C", boldAmount)

	if w.err != nil {
		return "", w.err
	}
	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return "", err
	}
	if err := f.SaveAs(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	n     int
	err   error
}

func (w *sheetWriter) row(style int, values ...any) {
	if w.err != nil {
		return
	}
	w.n++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.n)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
	if style != 0 {
		first, _ := excelize.CoordinatesToCellName(1, w.n)
		last, _ := excelize.CoordinatesToCellName(len(values), w.n)
		w.err = w.f.SetCellStyle(w.sheet, first, last, style)
	}
}

func (w *sheetWriter) style(col string, style int) {
	if w.err != nil {
		return
	}
	cell := fmt.Sprintf("%s%d", col, w.n)
	w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
}
