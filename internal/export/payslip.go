package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// PaySlipPDF writes a one-page pay slip for the record in view and returns
// the file path.
func PaySlipPDF(view service.RecordView, workplaceName, dir string) (string, error) {
	if view.Record == nil {
		return "", fmt.Errorf("pay slip: empty record")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("fiche_%s.pdf", view.Record.ID))

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Fiche de paie"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Ouvrier: %s", view.WorkerName)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Atelier: %s", workplaceName)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Semaine: %s", view.WeekText)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 8, tr("Jour"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr("Heures"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, tr("Heures supp."), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	att := view.Record.Attendance()
	for _, d := range payroll.Days() {
		pdf.CellFormat(50, 7, tr(d.String()), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, att[d].Regular.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, att[d].Overtime.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	c := view.Computation
	lines := []struct {
		label string
		value string
	}{
		{"Salaire hebdomadaire", service.FormatAmount(view.Record.SalaireHebdomadaire)},
		{"Taux journalier", service.FormatAmount(c.DailyRate)},
		{"Taux horaire", service.FormatAmount(c.HourlyRate)},
		{"Heures normales", c.NormalHours.StringFixed(2)},
		{"Heures supplémentaires", c.ExtraHours.StringFixed(2)},
		{"Total heures", c.TotalHours.StringFixed(2)},
		{"Salaire brut", service.FormatAmount(c.TotalSalaire)},
		{"Avance", service.FormatAmount(view.Record.Avance)},
		{"Reste", service.FormatAmount(c.Reste)},
	}
	for _, l := range lines {
		pdf.CellFormat(70, 7, tr(l.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, l.value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	status := "Non payé"
	if view.State == payroll.StatePaid {
		status = "Payé"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Statut: %s", status)))

	if view.Record.Description != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr(view.Record.Description), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
