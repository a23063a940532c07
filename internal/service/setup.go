package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/repository"
	"workshop-payroll-bot/pkg/weeks"
)

const (
	minYear = 2000
	maxYear = 2100
)

func (s *PayrollService) CreateWorkplace(ctx context.Context, name string) (*models.Workplace, error) {
	workplace := &models.Workplace{Name: strings.TrimSpace(name)}
	if err := s.workplaceRepo.Create(ctx, workplace); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateName):
			return nil, fmt.Errorf("workplace %q: %w", workplace.Name, ErrConflict)
		case errors.Is(err, repository.ErrInvalidWorkplace):
			return nil, fmt.Errorf("workplace name must be 1 to 100 characters: %w", ErrInvalidInput)
		}
		return nil, err
	}
	return workplace, nil
}

func (s *PayrollService) ListWorkplaces(ctx context.Context) ([]*models.Workplace, error) {
	return s.workplaceRepo.GetAll(ctx)
}

func (s *PayrollService) GetWorkplace(ctx context.Context, id uint) (*models.Workplace, error) {
	workplace, err := s.workplaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workplace == nil {
		return nil, fmt.Errorf("workplace %d: %w", id, ErrNotFound)
	}
	return workplace, nil
}

// CreateWorker registers a worker at a workplace with the weekly salary
// copied into each week the worker is scheduled for.
func (s *PayrollService) CreateWorker(ctx context.Context, firstName, lastName string, workplaceID uint, salaire decimal.Decimal) (*models.Worker, error) {
	if _, err := s.GetWorkplace(ctx, workplaceID); err != nil {
		return nil, err
	}

	worker := &models.Worker{
		FirstName:           strings.TrimSpace(firstName),
		LastName:            strings.TrimSpace(lastName),
		WorkplaceID:         workplaceID,
		SalaireHebdomadaire: salaire,
	}
	if err := s.workerRepo.Create(ctx, worker); err != nil {
		if errors.Is(err, repository.ErrInvalidWorker) {
			return nil, fmt.Errorf("worker needs a first name and a non-negative salary: %w", ErrInvalidInput)
		}
		return nil, err
	}
	return worker, nil
}

// ListWorkers returns the workers of a workplace, or all workers when
// workplaceID is zero.
func (s *PayrollService) ListWorkers(ctx context.Context, workplaceID uint) ([]*models.Worker, error) {
	return s.workerRepo.GetByWorkplace(ctx, workplaceID)
}

func (s *PayrollService) GetWorker(ctx context.Context, id uint) (*models.Worker, error) {
	worker, err := s.workerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if worker == nil {
		return nil, fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	return worker, nil
}

// GenerateWeeks stores the working weeks of year. Weeks already stored are
// kept; the call can be repeated safely. It returns the number created.
func (s *PayrollService) GenerateWeeks(ctx context.Context, year int) (int, error) {
	if year < minYear || year > maxYear {
		return 0, fmt.Errorf("year must be between %d and %d: %w", minYear, maxYear, ErrInvalidInput)
	}

	s.logger.WithField("year", year).Info("Generating weeks")

	calendar := weeks.ForYear(year)
	rows := make([]*models.Week, 0, len(calendar))
	for _, w := range calendar {
		rows = append(rows, &models.Week{
			Year:      w.Year,
			Number:    w.Number,
			Month:     int(w.Month),
			StartDate: w.Start,
			EndDate:   w.End,
		})
	}

	created, err := s.weekRepo.BulkCreate(ctx, rows)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"year":    year,
		"created": created,
		"total":   len(rows),
	}).Info("Weeks generated")
	return int(created), nil
}

func (s *PayrollService) GetWeek(ctx context.Context, id uint) (*models.Week, error) {
	week, err := s.weekRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return nil, fmt.Errorf("week %d: %w", id, ErrNotFound)
	}
	return week, nil
}

// CurrentWeek returns the stored week containing date.
func (s *PayrollService) CurrentWeek(ctx context.Context, date time.Time) (*models.Week, error) {
	week, err := s.weekRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if week == nil {
		return nil, fmt.Errorf("week of %s: %w", date.Format("2006-01-02"), ErrNotFound)
	}
	return week, nil
}

func (s *PayrollService) Years(ctx context.Context) ([]int, error) {
	return s.weekRepo.Years(ctx)
}

// ScheduleWorker creates the worker's record for a week at the worker's
// workplace, starting from the worker's weekly salary and no hours.
func (s *PayrollService) ScheduleWorker(ctx context.Context, workerID, weekID uint) (*RecordView, error) {
	worker, err := s.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	week, err := s.GetWeek(ctx, weekID)
	if err != nil {
		return nil, err
	}

	rec := &models.WeekRecord{
		WorkerID:            worker.ID,
		WorkplaceID:         worker.WorkplaceID,
		WeekID:              week.ID,
		SalaireHebdomadaire: worker.SalaireHebdomadaire,
	}
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, fmt.Errorf("worker %d in week %d: %w", workerID, weekID, ErrConflict)
		}
		return nil, err
	}

	rec.Worker = worker
	rec.Week = week
	v := s.view(rec)
	return &v, nil
}

// ParseWorkerData parses "<prénom> <nom> <salaire>". The last name may hold
// several words; the salary accepts a decimal comma.
func ParseWorkerData(input string) (firstName, lastName string, salaire decimal.Decimal, err error) {
	parts := strings.Fields(input)
	if len(parts) < 2 {
		return "", "", decimal.Zero, fmt.Errorf("format attendu: prénom [nom] salaire: %w", ErrInvalidInput)
	}

	raw := strings.Replace(parts[len(parts)-1], ",", ".", 1)
	salaire, err = decimal.NewFromString(raw)
	if err != nil || salaire.IsNegative() {
		return "", "", decimal.Zero, fmt.Errorf("salaire invalide %q: %w", parts[len(parts)-1], ErrInvalidInput)
	}

	firstName = parts[0]
	lastName = strings.Join(parts[1:len(parts)-1], " ")
	return firstName, lastName, salaire, nil
}

// ParseYear parses a year between 2000 and 2100.
func ParseYear(input string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || year < minYear || year > maxYear {
		return 0, fmt.Errorf("année invalide %q: %w", input, ErrInvalidInput)
	}
	return year, nil
}
