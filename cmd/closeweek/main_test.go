package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-payroll-bot/internal/api"
	"workshop-payroll-bot/internal/client"
	"workshop-payroll-bot/internal/database"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/repository"
	"workshop-payroll-bot/internal/service"
)

func TestCloseWeek(t *testing.T) {
	ctx := context.Background()

	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	workplaces, err := repository.NewGormWorkplaceRepository(db)
	require.NoError(t, err)
	workers, err := repository.NewGormWorkerRepository(db)
	require.NoError(t, err)
	weeks, err := repository.NewGormWeekRepository(db)
	require.NoError(t, err)
	records, err := repository.NewGormWeekRecordRepository(db)
	require.NoError(t, err)
	svc := service.NewPayrollService(workplaces, workers, weeks, records)

	wp, err := svc.CreateWorkplace(ctx, "Atelier Nord")
	require.NoError(t, err)
	_, err = svc.GenerateWeeks(ctx, 2024)
	require.NoError(t, err)
	week, err := svc.CurrentWeek(ctx, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	amina, err := svc.CreateWorker(ctx, "Amina", "Benali", wp.ID, decimal.NewFromInt(570))
	require.NoError(t, err)
	karim, err := svc.CreateWorker(ctx, "Karim", "Haddad", wp.ID, decimal.NewFromInt(570))
	require.NoError(t, err)

	worked, err := svc.ScheduleWorker(ctx, amina.ID, week.ID)
	require.NoError(t, err)
	idle, err := svc.ScheduleWorker(ctx, karim.ID, week.ID)
	require.NoError(t, err)

	var update payroll.RecordUpdate
	for _, d := range payroll.Days() {
		update.SetDay(d, false, decimal.NewFromInt(9))
	}
	avance := decimal.NewFromInt(200)
	update.Avance = &avance
	_, err = svc.UpdateWeekRecord(ctx, worked.Record.ID, update)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(svc, logging.New(), api.RouterOptions{}))
	t.Cleanup(srv.Close)
	backend := client.NewHTTPBackend(srv.URL, srv.Client())

	paid, total, err := closeWeek(ctx, backend, wp.ID, week.ID, true)
	require.NoError(t, err)
	assert.Zero(t, paid)
	assert.True(t, total.IsZero())

	paid, total, err = closeWeek(ctx, backend, wp.ID, week.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, paid)
	assert.True(t, total.Equal(decimal.NewFromInt(340)))

	view, err := svc.GetWeekRecord(ctx, worked.Record.ID)
	require.NoError(t, err)
	assert.True(t, view.Record.IsPaid)
	view, err = svc.GetWeekRecord(ctx, idle.Record.ID)
	require.NoError(t, err)
	assert.False(t, view.Record.IsPaid)

	// Running again finds nothing left to pay.
	paid, _, err = closeWeek(ctx, backend, wp.ID, week.ID, false)
	require.NoError(t, err)
	assert.Zero(t, paid)
}
