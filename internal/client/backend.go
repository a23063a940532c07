package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// Backend is the collaborator that owns week records. Front-ends talk to it
// either in process (the service itself) or over HTTP.
type Backend interface {
	GetWeekRecords(ctx context.Context, weekID, workplaceID uint) (*service.WeekPage, error)
	GetWorkerRecords(ctx context.Context, workerID uint, page, limit int) (*service.WorkerPage, error)
	GetYearRecords(ctx context.Context, year int, workplaceID uint) (*payroll.YearSummary, error)
	GetWeekRecord(ctx context.Context, recordID string) (*service.RecordView, error)
	UpdateWeekRecord(ctx context.Context, recordID string, update payroll.RecordUpdate) (*service.RecordView, error)
	UpdateWeekRecordPayment(ctx context.Context, recordID string, action payroll.ActionType) (*service.RecordView, error)
	DeleteWeekRecord(ctx context.Context, recordID string) error

	CreateWorkplace(ctx context.Context, name string) (*models.Workplace, error)
	ListWorkplaces(ctx context.Context) ([]*models.Workplace, error)
	GetWorkplace(ctx context.Context, id uint) (*models.Workplace, error)
	CreateWorker(ctx context.Context, firstName, lastName string, workplaceID uint, salaire decimal.Decimal) (*models.Worker, error)
	ListWorkers(ctx context.Context, workplaceID uint) ([]*models.Worker, error)
	GetWorker(ctx context.Context, id uint) (*models.Worker, error)
	GenerateWeeks(ctx context.Context, year int) (int, error)
	GetWeek(ctx context.Context, id uint) (*models.Week, error)
	CurrentWeek(ctx context.Context, date time.Time) (*models.Week, error)
	Years(ctx context.Context) ([]int, error)
	ScheduleWorker(ctx context.Context, workerID, weekID uint) (*service.RecordView, error)
}

var (
	_ Backend = (*service.PayrollService)(nil)
	_ Backend = (*HTTPBackend)(nil)
)
