package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/repository"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	defaultYearConcurrency = 4
)

type PayrollService struct {
	workplaceRepo repository.WorkplaceRepository
	workerRepo    repository.WorkerRepository
	weekRepo      repository.WeekRepository
	recordRepo    repository.WeekRecordRepository
	schedule      payroll.Schedule
	concurrency   int
	logger        *logrus.Logger
}

type Option func(*PayrollService)

// WithSchedule overrides the divisors used to derive rates.
func WithSchedule(s payroll.Schedule) Option {
	return func(ps *PayrollService) { ps.schedule = s }
}

// WithYearConcurrency bounds the number of weeks loaded at once when a year
// summary is built.
func WithYearConcurrency(n int) Option {
	return func(ps *PayrollService) {
		if n > 0 {
			ps.concurrency = n
		}
	}
}

func NewPayrollService(
	workplaceRepo repository.WorkplaceRepository,
	workerRepo repository.WorkerRepository,
	weekRepo repository.WeekRepository,
	recordRepo repository.WeekRecordRepository,
	opts ...Option,
) *PayrollService {
	s := &PayrollService{
		workplaceRepo: workplaceRepo,
		workerRepo:    workerRepo,
		weekRepo:      weekRepo,
		recordRepo:    recordRepo,
		schedule:      payroll.DefaultSchedule,
		concurrency:   defaultYearConcurrency,
		logger:        logging.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PayrollService) Schedule() payroll.Schedule {
	return s.schedule
}

func (s *PayrollService) view(rec *models.WeekRecord) RecordView {
	return NewRecordView(rec, s.schedule)
}

// GetWeekRecords returns the records of one week at one workplace with their
// computed pay, plus the neighbouring week ids.
func (s *PayrollService) GetWeekRecords(ctx context.Context, weekID, workplaceID uint) (*WeekPage, error) {
	s.logger.WithFields(logrus.Fields{
		"week_id":      weekID,
		"workplace_id": workplaceID,
	}).Debug("Getting week records")

	week, err := s.weekRepo.GetByID(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return nil, fmt.Errorf("week %d: %w", weekID, ErrNotFound)
	}

	records, err := s.recordRepo.GetByWeekAndWorkplace(ctx, weekID, workplaceID)
	if err != nil {
		return nil, err
	}

	next, prev, err := s.weekRepo.Neighbours(ctx, week)
	if err != nil {
		return nil, err
	}

	page := &WeekPage{
		Week:        week,
		WorkplaceID: workplaceID,
		Records:     make([]RecordView, 0, len(records)),
		TotalAmount: decimal.Zero,
		TotalDue:    decimal.Zero,
		NextWeekID:  next,
		PrevWeekID:  prev,
	}
	for _, rec := range records {
		v := s.view(rec)
		page.Records = append(page.Records, v)
		page.TotalAmount = page.TotalAmount.Add(v.Computation.TotalSalaire)
		page.TotalDue = page.TotalDue.Add(v.Due)
	}
	return page, nil
}

// GetWorkerRecords returns one page of a worker's history, newest week first.
func (s *PayrollService) GetWorkerRecords(ctx context.Context, workerID uint, page, limit int) (*WorkerPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	worker, err := s.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, fmt.Errorf("worker %d: %w", workerID, ErrNotFound)
	}

	records, total, err := s.recordRepo.GetByWorker(ctx, workerID, page, limit)
	if err != nil {
		return nil, err
	}

	result := &WorkerPage{
		Worker:     worker,
		Records:    make([]RecordView, 0, len(records)),
		Pagination: NewPagination(page, limit, total),
	}
	for _, rec := range records {
		result.Records = append(result.Records, s.view(rec))
	}
	return result, nil
}

// GetYearRecords builds the month summaries of a workplace for a year. Weeks
// are loaded concurrently; if any of them fails nothing is returned.
func (s *PayrollService) GetYearRecords(ctx context.Context, year int, workplaceID uint) (*payroll.YearSummary, error) {
	s.logger.WithFields(logrus.Fields{
		"year":         year,
		"workplace_id": workplaceID,
	}).Debug("Getting year records")

	weeks, err := s.weekRepo.GetByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	fetches := make([]payroll.WeekFetch, len(weeks))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, w := range weeks {
		i, w := i, w
		fetches[i].Week = payroll.WeekTotal{
			WeekID:   w.ID,
			WeekText: w.Text(),
			Month:    w.MonthOf(),
		}
		g.Go(func() error {
			records, err := s.recordRepo.GetByWeekAndWorkplace(ctx, w.ID, workplaceID)
			if err != nil {
				fetches[i].Err = err
				return nil
			}
			comps := make([]payroll.Computation, 0, len(records))
			for _, rec := range records {
				comps = append(comps, s.schedule.ComputePay(rec.ToPayroll()))
			}
			fetches[i].Computations = comps
			return nil
		})
	}
	_ = g.Wait()

	months, total, err := payroll.AggregateFetched(fetches, payroll.GroupByWeekMonth)
	if err != nil {
		s.logger.WithError(err).WithField("year", year).Warn("Year summary incomplete")
		return nil, err
	}

	next, prev, err := s.weekRepo.YearNeighbours(ctx, year)
	if err != nil {
		return nil, err
	}

	return &payroll.YearSummary{
		Year:        year,
		WorkplaceID: workplaceID,
		Months:      months,
		TotalAmount: total,
		NextYear:    next,
		PrevYear:    prev,
	}, nil
}

// GetWeekRecord returns one record with its computed pay.
func (s *PayrollService) GetWeekRecord(ctx context.Context, recordID string) (*RecordView, error) {
	rec, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("week record %s: %w", recordID, ErrNotFound)
	}
	v := s.view(rec)
	return &v, nil
}

// UpdateWeekRecord applies an edit of hours, avance or description. The edit
// is validated first and stored atomically; on any error nothing changes.
func (s *PayrollService) UpdateWeekRecord(ctx context.Context, recordID string, update payroll.RecordUpdate) (*RecordView, error) {
	s.logger.WithField("record_id", recordID).Info("Updating week record")

	if err := payroll.ValidateUpdate(update); err != nil {
		s.logger.WithError(err).WithField("record_id", recordID).Warn("Rejected week record update")
		return nil, err
	}

	rec, err := s.recordRepo.UpdateFields(ctx, recordID, func(r *models.WeekRecord) error {
		pr := r.ToPayroll()
		description := update.ApplyTo(&pr)
		if err := payroll.ValidateRecord(pr); err != nil {
			return err
		}
		r.SetAttendance(pr.Attendance)
		r.Avance = pr.Avance
		if description != nil {
			r.Description = *description
		}
		return nil
	})
	if err != nil {
		return nil, s.mapRepoError(err, recordID)
	}
	if rec == nil {
		return nil, fmt.Errorf("week record %s: %w", recordID, ErrNotFound)
	}

	v := s.view(rec)
	s.logger.WithFields(logrus.Fields{
		"record_id":     recordID,
		"total_salaire": v.Computation.TotalSalaire.StringFixed(2),
		"reste":         v.Computation.Reste.StringFixed(2),
	}).Info("Week record updated")
	return &v, nil
}

// UpdateWeekRecordPayment applies a pay or undo action. The guard is checked
// again against the stored record, so a stale client cannot pay twice.
func (s *PayrollService) UpdateWeekRecordPayment(ctx context.Context, recordID string, action payroll.ActionType) (*RecordView, error) {
	s.logger.WithFields(logrus.Fields{
		"record_id": recordID,
		"action":    action,
	}).Info("Updating week record payment")

	rec, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("week record %s: %w", recordID, ErrNotFound)
	}

	pr := rec.ToPayroll()
	comp := s.schedule.ComputePay(pr)
	cmd, err := payroll.NewPaymentAction(pr, comp, action)
	if err != nil {
		s.logger.WithError(err).WithField("record_id", recordID).Warn("Payment refused by guard")
		return nil, err
	}

	paid := payroll.Apply(rec.IsPaid, cmd.Type)
	if err := s.recordRepo.SetPaid(ctx, cmd.RecordID, rec.IsPaid, paid); err != nil {
		return nil, s.mapRepoError(err, recordID)
	}
	rec.IsPaid = paid

	v := s.view(rec)
	s.logger.WithFields(logrus.Fields{
		"record_id": recordID,
		"state":     v.State,
	}).Info("Week record payment updated")
	return &v, nil
}

func (s *PayrollService) DeleteWeekRecord(ctx context.Context, recordID string) error {
	s.logger.WithField("record_id", recordID).Info("Deleting week record")

	if err := s.recordRepo.DeleteByID(ctx, recordID); err != nil {
		return s.mapRepoError(err, recordID)
	}
	return nil
}

func (s *PayrollService) mapRepoError(err error, recordID string) error {
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		return fmt.Errorf("week record %s: %w", recordID, ErrNotFound)
	case errors.Is(err, repository.ErrPaidStateChanged):
		return fmt.Errorf("week record %s: %w: %v", recordID, ErrConflict, err)
	case errors.Is(err, repository.ErrInvalidWeekRecord):
		return &payroll.ValidationError{Fields: map[string]string{"record": "stored values would be invalid"}}
	}
	return err
}
