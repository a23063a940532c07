package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-payroll-bot/internal/database"
	"workshop-payroll-bot/internal/models"
)

type testRepos struct {
	workplaces *GormWorkplaceRepository
	workers    *GormWorkerRepository
	weeks      *GormWeekRepository
	records    *GormWeekRecordRepository
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	var r testRepos
	r.workplaces, err = NewGormWorkplaceRepository(db)
	require.NoError(t, err)
	r.workers, err = NewGormWorkerRepository(db)
	require.NoError(t, err)
	r.weeks, err = NewGormWeekRepository(db)
	require.NoError(t, err)
	r.records, err = NewGormWeekRecordRepository(db)
	require.NoError(t, err)
	return r
}

func week(year, number int, monday time.Time) *models.Week {
	return &models.Week{
		Year:      year,
		Number:    number,
		Month:     int(monday.AddDate(0, 0, 3).Month()),
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 5),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWorkplaceRepository(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)

	atelier := &models.Workplace{Name: "Atelier Nord"}
	require.NoError(t, r.workplaces.Create(ctx, atelier))
	assert.NotZero(t, atelier.ID)

	err := r.workplaces.Create(ctx, &models.Workplace{Name: "Atelier Nord"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = r.workplaces.Create(ctx, &models.Workplace{})
	assert.ErrorIs(t, err, ErrInvalidWorkplace)

	require.NoError(t, r.workplaces.Create(ctx, &models.Workplace{Name: "Atelier Centre"}))

	all, err := r.workplaces.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Atelier Centre", all[0].Name)

	missing, err := r.workplaces.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkerRepository(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)

	wp := &models.Workplace{Name: "Atelier"}
	require.NoError(t, r.workplaces.Create(ctx, wp))

	amina := &models.Worker{FirstName: "Amina", LastName: "Benali", WorkplaceID: wp.ID, SalaireHebdomadaire: dec("570")}
	require.NoError(t, r.workers.Create(ctx, amina))

	err := r.workers.Create(ctx, &models.Worker{FirstName: "X", WorkplaceID: wp.ID, SalaireHebdomadaire: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidWorker)

	got, err := r.workers.GetByID(ctx, amina.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Amina Benali", got.FullName())
	assert.True(t, got.SalaireHebdomadaire.Equal(dec("570")))

	list, err := r.workers.GetByWorkplace(ctx, wp.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = r.workers.GetByWorkplace(ctx, wp.ID+1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWeekRepositoryBulkCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)

	weeks := func() []*models.Week {
		return []*models.Week{
			week(2024, 1, day(2024, 1, 1)),
			week(2024, 2, day(2024, 1, 8)),
			week(2024, 3, day(2024, 1, 15)),
		}
	}

	n, err := r.weeks.BulkCreate(ctx, weeks())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = r.weeks.BulkCreate(ctx, weeks())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	stored, err := r.weeks.GetByYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, 1, stored[0].Number)
	assert.Equal(t, 3, stored[2].Number)
	assert.True(t, stored[1].StartDate.Equal(day(2024, 1, 8)))

	_, err = r.weeks.BulkCreate(ctx, []*models.Week{{Year: 2024, Number: 4}})
	assert.ErrorIs(t, err, ErrInvalidWeek)
}

func TestWeekRepositoryNavigation(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)

	_, err := r.weeks.BulkCreate(ctx, []*models.Week{
		week(2023, 52, day(2023, 12, 25)),
		week(2024, 1, day(2024, 1, 1)),
		week(2024, 2, day(2024, 1, 8)),
		week(2026, 1, day(2025, 12, 29)),
	})
	require.NoError(t, err)

	first, err := r.weeks.GetByYearAndNumber(ctx, 2023, 52)
	require.NoError(t, err)
	second, err := r.weeks.GetByYearAndNumber(ctx, 2024, 1)
	require.NoError(t, err)
	third, err := r.weeks.GetByYearAndNumber(ctx, 2024, 2)
	require.NoError(t, err)

	next, prev, err := r.weeks.Neighbours(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.NotNil(t, prev)
	assert.Equal(t, third.ID, *next)
	assert.Equal(t, first.ID, *prev)

	_, prev, err = r.weeks.Neighbours(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, prev)

	nextYear, prevYear, err := r.weeks.YearNeighbours(ctx, 2024)
	require.NoError(t, err)
	require.NotNil(t, nextYear)
	require.NotNil(t, prevYear)
	assert.Equal(t, 2026, *nextYear)
	assert.Equal(t, 2023, *prevYear)

	nextYear, _, err = r.weeks.YearNeighbours(ctx, 2026)
	require.NoError(t, err)
	assert.Nil(t, nextYear)

	years, err := r.weeks.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024, 2026}, years)

	// Sunday 14 January belongs to the week starting Monday 8 January.
	found, err := r.weeks.FindByDate(ctx, day(2024, 1, 14))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, third.ID, found.ID)
}

type recordFixture struct {
	workplace *models.Workplace
	worker    *models.Worker
	weeks     []*models.Week
}

func seedRecords(t *testing.T, r testRepos) recordFixture {
	t.Helper()
	ctx := context.Background()

	f := recordFixture{workplace: &models.Workplace{Name: "Atelier"}}
	require.NoError(t, r.workplaces.Create(ctx, f.workplace))
	f.worker = &models.Worker{FirstName: "Amina", WorkplaceID: f.workplace.ID, SalaireHebdomadaire: dec("570")}
	require.NoError(t, r.workers.Create(ctx, f.worker))

	_, err := r.weeks.BulkCreate(ctx, []*models.Week{
		week(2024, 1, day(2024, 1, 1)),
		week(2024, 2, day(2024, 1, 8)),
		week(2024, 3, day(2024, 1, 15)),
	})
	require.NoError(t, err)
	f.weeks, err = r.weeks.GetByYear(ctx, 2024)
	require.NoError(t, err)
	return f
}

func newRecord(f recordFixture, w *models.Week) *models.WeekRecord {
	return &models.WeekRecord{
		WorkerID:            f.worker.ID,
		WorkplaceID:         f.workplace.ID,
		WeekID:              w.ID,
		SalaireHebdomadaire: f.worker.SalaireHebdomadaire,
	}
}

func TestWeekRecordRepositoryCreateAndQuery(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	f := seedRecords(t, r)

	for _, w := range f.weeks {
		require.NoError(t, r.records.Create(ctx, newRecord(f, w)))
	}

	err := r.records.Create(ctx, newRecord(f, f.weeks[0]))
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	bad := newRecord(f, f.weeks[0])
	bad.Avance = dec("-5")
	assert.ErrorIs(t, r.records.Create(ctx, bad), ErrInvalidWeekRecord)

	list, err := r.records.GetByWeekAndWorkplace(ctx, f.weeks[1].ID, f.workplace.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].ID, 36)
	require.NotNil(t, list[0].Worker)
	assert.Equal(t, "Amina", list[0].Worker.FirstName)
	require.NotNil(t, list[0].Week)
	assert.Equal(t, 2, list[0].Week.Number)

	page, total, err := r.records.GetByWorker(ctx, f.worker.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, f.weeks[2].ID, page[0].WeekID)
	assert.Equal(t, f.weeks[1].ID, page[1].WeekID)

	page, _, err = r.records.GetByWorker(ctx, f.worker.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, f.weeks[0].ID, page[0].WeekID)
}

func TestWeekRecordRepositoryUpdateFields(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	f := seedRecords(t, r)

	rec := newRecord(f, f.weeks[0])
	require.NoError(t, r.records.Create(ctx, rec))

	updated, err := r.records.UpdateFields(ctx, rec.ID, func(wr *models.WeekRecord) error {
		wr.Lundi = dec("9.5")
		wr.Avance = dec("200")
		wr.Description = "avance outillage"
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Lundi.Equal(dec("9.5")))
	assert.True(t, updated.Avance.Equal(dec("200")))
	assert.Equal(t, "avance outillage", updated.Description)

	_, err = r.records.UpdateFields(ctx, rec.ID, func(wr *models.WeekRecord) error {
		wr.Mardi = dec("8")
		wr.Avance = dec("-1")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidWeekRecord)

	boom := errors.New("boom")
	_, err = r.records.UpdateFields(ctx, rec.ID, func(wr *models.WeekRecord) error {
		wr.Mardi = dec("8")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := r.records.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Mardi.IsZero())
	assert.True(t, stored.Avance.Equal(dec("200")))

	_, err = r.records.UpdateFields(ctx, "missing", func(*models.WeekRecord) error { return nil })
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestWeekRecordRepositorySetPaid(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	f := seedRecords(t, r)

	rec := newRecord(f, f.weeks[0])
	require.NoError(t, r.records.Create(ctx, rec))

	require.NoError(t, r.records.SetPaid(ctx, rec.ID, false, true))
	assert.ErrorIs(t, r.records.SetPaid(ctx, rec.ID, false, true), ErrPaidStateChanged)

	stored, err := r.records.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)

	require.NoError(t, r.records.SetPaid(ctx, rec.ID, true, false))
	assert.ErrorIs(t, r.records.SetPaid(ctx, "missing", false, true), ErrRecordNotFound)
}

func TestWeekRecordRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	r := setupRepos(t)
	f := seedRecords(t, r)

	rec := newRecord(f, f.weeks[0])
	require.NoError(t, r.records.Create(ctx, rec))

	require.NoError(t, r.records.DeleteByID(ctx, rec.ID))
	assert.ErrorIs(t, r.records.DeleteByID(ctx, rec.ID), ErrRecordNotFound)

	gone, err := r.records.GetByID(ctx, rec.ID)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}
