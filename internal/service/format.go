package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
)

// FormatAmount prints an amount with two decimals and no currency symbol.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatHours(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0) + "h"
	}
	return d.StringFixed(2) + "h"
}

func stateIcon(v RecordView) string {
	switch {
	case v.State == payroll.StatePaid:
		return "✅"
	case !payroll.Balance(v.Computation).IsPositive():
		return "➖"
	default:
		return "⏳"
	}
}

// FormatRecordView prints one record as a short block.
func FormatRecordView(v RecordView) string {
	var b strings.Builder

	name := v.WorkerName
	if name == "" {
		name = fmt.Sprintf("Ouvrier #%d", v.Record.WorkerID)
	}
	fmt.Fprintf(&b, "%s %s", stateIcon(v), name)
	if v.WeekText != "" {
		fmt.Fprintf(&b, " (%s)", v.WeekText)
	}
	b.WriteString("\n")

	att := v.Record.Attendance()
	days := make([]string, 0, payroll.DaysInWeek)
	for _, d := range payroll.Days() {
		h := att[d]
		cell := fmt.Sprintf("%s %s", strings.ToUpper(d.String()[:2]), h.Regular.String())
		if h.Overtime.IsPositive() {
			cell += "+" + h.Overtime.String()
		}
		days = append(days, cell)
	}
	b.WriteString("   " + strings.Join(days, " | ") + "\n")

	fmt.Fprintf(&b, "   Heures: %s (+%s supp) = %s\n",
		formatHours(v.Computation.NormalHours),
		formatHours(v.Computation.ExtraHours),
		formatHours(v.Computation.TotalHours))
	fmt.Fprintf(&b, "   Salaire: %s | Avance: %s | Reste: %s\n",
		FormatAmount(v.Computation.TotalSalaire),
		FormatAmount(v.Record.Avance),
		FormatAmount(v.Computation.Reste))
	if v.Record.Description != "" {
		fmt.Fprintf(&b, "   📝 %s\n", v.Record.Description)
	}
	fmt.Fprintf(&b, "   🆔 %s", v.Record.ID)
	return b.String()
}

// FormatWeekPage prints the table of a week at a workplace.
func FormatWeekPage(page *WeekPage, workplaceName string) string {
	if page == nil || page.Week == nil {
		return "❌ Semaine introuvable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s, %s\n", page.Week.Text(), workplaceName)

	if len(page.Records) == 0 {
		b.WriteString("\n📭 Aucun ouvrier planifié cette semaine")
		return b.String()
	}

	for _, v := range page.Records {
		b.WriteString("\n")
		b.WriteString(FormatRecordView(v))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n💰 Total: %s | Reste à payer: %s",
		FormatAmount(page.TotalAmount), FormatAmount(page.TotalDue))
	return b.String()
}

// FormatWorkerPage prints one page of a worker's history.
func FormatWorkerPage(page *WorkerPage) string {
	if page == nil || page.Worker == nil {
		return "❌ Ouvrier introuvable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👷 %s, salaire hebdomadaire %s\n",
		page.Worker.FullName(), FormatAmount(page.Worker.SalaireHebdomadaire))

	if len(page.Records) == 0 {
		b.WriteString("\n📭 Aucune semaine enregistrée")
		return b.String()
	}

	for _, v := range page.Records {
		fmt.Fprintf(&b, "\n%s %s: %s, reste %s",
			stateIcon(v), v.WeekText,
			FormatAmount(v.Computation.TotalSalaire),
			FormatAmount(v.Computation.Reste))
	}

	p := page.Pagination
	fmt.Fprintf(&b, "\n\nPage %d/%d (%d semaines)", p.Page, max(p.TotalPages, 1), p.Total)
	return b.String()
}

// FormatYearSummary prints month totals with their weeks.
func FormatYearSummary(summary *payroll.YearSummary, workplaceName string) string {
	if summary == nil {
		return "❌ Année introuvable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %d, %s\n", summary.Year, workplaceName)

	if len(summary.Months) == 0 {
		b.WriteString("\n📭 Aucune semaine pour cette année")
		return b.String()
	}

	for _, m := range summary.Months {
		fmt.Fprintf(&b, "\n%s: %s\n", m.Name, FormatAmount(m.TotalAmount))
		for _, w := range m.Weeks {
			fmt.Fprintf(&b, "   %s: %s\n", w.WeekText, FormatAmount(w.TotalAmount))
		}
	}

	fmt.Fprintf(&b, "\n💰 Total annuel: %s", FormatAmount(summary.TotalAmount))
	return b.String()
}

func FormatWorkplaces(workplaces []*models.Workplace) string {
	if len(workplaces) == 0 {
		return "📭 Aucun atelier. Utilisez /addworkplace <nom>"
	}

	var b strings.Builder
	b.WriteString("🏭 Ateliers:\n\n")
	for _, w := range workplaces {
		fmt.Fprintf(&b, "%d. %s\n", w.ID, w.Name)
	}
	return b.String()
}

func FormatWorkers(workers []*models.Worker) string {
	if len(workers) == 0 {
		return "📭 Aucun ouvrier. Utilisez /addworker <prénom> <nom> <salaire>"
	}

	var b strings.Builder
	b.WriteString("👷 Ouvriers:\n\n")
	for _, w := range workers {
		fmt.Fprintf(&b, "%d. %s, %s\n", w.ID, w.FullName(), FormatAmount(w.SalaireHebdomadaire))
	}
	return b.String()
}
