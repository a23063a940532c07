package service

import (
	"github.com/shopspring/decimal"

	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
)

// RecordView is a stored record with everything derived from it. Only the
// record is authoritative; the rest is recomputed on every read.
type RecordView struct {
	Record      *models.WeekRecord  `json:"record"`
	WorkerName  string              `json:"workerName"`
	WeekText    string              `json:"weekText"`
	Computation payroll.Computation `json:"computation"`
	State       payroll.State       `json:"state"`
	Action      payroll.ActionType  `json:"action,omitempty"`
	Due         decimal.Decimal     `json:"due"`
}

type WeekPage struct {
	Week        *models.Week    `json:"week"`
	WorkplaceID uint            `json:"workplaceId"`
	Records     []RecordView    `json:"records"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalDue    decimal.Decimal `json:"totalDue"`
	NextWeekID  *uint           `json:"nextWeekId"`
	PrevWeekID  *uint           `json:"prevWeekId"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }
func (p Pagination) HasPrev() bool { return p.Page > 1 }

type WorkerPage struct {
	Worker     *models.Worker `json:"worker"`
	Records    []RecordView   `json:"records"`
	Pagination Pagination     `json:"pagination"`
}

// NewRecordView computes the derived fields of rec under schedule.
func NewRecordView(rec *models.WeekRecord, schedule payroll.Schedule) RecordView {
	comp := schedule.ComputePay(rec.ToPayroll())
	view := RecordView{
		Record:      rec,
		Computation: comp,
		State:       payroll.StateOf(rec.IsPaid),
		Due:         payroll.Due(comp, rec.IsPaid),
	}
	if action, ok := payroll.AvailableAction(comp, rec.IsPaid); ok {
		view.Action = action
	}
	if rec.Worker != nil {
		view.WorkerName = rec.Worker.FullName()
	}
	if rec.Week != nil {
		view.WeekText = rec.Week.Text()
	}
	return view
}

// PayrollRecord returns the engine record behind the view.
func (v RecordView) PayrollRecord() payroll.Record {
	return v.Record.ToPayroll()
}
