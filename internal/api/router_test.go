package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-payroll-bot/internal/database"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/repository"
	"workshop-payroll-bot/internal/service"
)

type testEnv struct {
	router   *chi.Mux
	svc      *service.PayrollService
	recordID string
	weekID   uint
	wpID     uint
	workerID uint
}

func setupRouter(t *testing.T) testEnv {
	t.Helper()
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

	ctx := context.Background()
	wp, err := svc.CreateWorkplace(ctx, "Atelier Nord")
	require.NoError(t, err)
	worker, err := svc.CreateWorker(ctx, "Amina", "Benali", wp.ID, decimal.NewFromInt(570))
	require.NoError(t, err)
	_, err = svc.GenerateWeeks(ctx, 2024)
	require.NoError(t, err)
	week, err := svc.CurrentWeek(ctx, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	view, err := svc.ScheduleWorker(ctx, worker.ID, week.ID)
	require.NoError(t, err)

	return testEnv{
		router:   NewRouter(svc, logging.New(), RouterOptions{}),
		svc:      svc,
		recordID: view.Record.ID,
		weekID:   week.ID,
		wpID:     wp.ID,
		workerID: worker.ID,
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env Envelope
	if rec.Code != http.StatusNoContent && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	env := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateAndPayRecord(t *testing.T) {
	env := setupRouter(t)
	path := "/api/v1/records/" + env.recordID

	rec, body := do(t, env.router, http.MethodPatch, path, map[string]any{
		"lundi": 9, "mardi": 9, "mercredi": 9, "jeudi": 9, "vendredi": 9, "samedi": 9,
		"avance": "200",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, body.Success)

	var view service.RecordView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.True(t, view.Computation.Reste.Equal(decimal.NewFromInt(340)))
	assert.EqualValues(t, "pay", view.Action)

	rec, body = do(t, env.router, http.MethodPost, path+"/payment", map[string]string{"type": "pay"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.EqualValues(t, "PAID", view.State)

	rec, body = do(t, env.router, http.MethodPost, path+"/payment", map[string]string{"type": "pay"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeGuard, body.Error.Code)
	assert.Equal(t, "PAID", body.Error.Details[DetailState])

	rec, body = do(t, env.router, http.MethodPost, path+"/payment", map[string]string{"type": "refund"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidInput, body.Error.Code)
}

func TestUpdateRecordValidation(t *testing.T) {
	env := setupRouter(t)
	path := "/api/v1/records/" + env.recordID

	rec, body := do(t, env.router, http.MethodPatch, path, map[string]any{"jeudiSupp": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeValidation, body.Error.Code)
	assert.Contains(t, body.Error.Details, "jeudiSupp")

	rec, body = do(t, env.router, http.MethodPatch, path, map[string]any{"dimanche": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidInput, body.Error.Code)

	rec, body = do(t, env.router, http.MethodPatch, "/api/v1/records/missing", map[string]any{"lundi": 4})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body.Error.Code)
}

func TestReadRoutes(t *testing.T) {
	env := setupRouter(t)

	rec, body := do(t, env.router, http.MethodGet, "/api/v1/weeks/current?date=2024-01-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var week struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &week))
	assert.Equal(t, env.weekID, week.ID)

	rec, body = do(t, env.router, http.MethodGet, "/api/v1/weeks/1/workplaces/1/records", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page service.WeekPage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Len(t, page.Records, 1)
	assert.NotNil(t, page.NextWeekID)

	rec, body = do(t, env.router, http.MethodGet, "/api/v1/workers/1/records?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wpage service.WorkerPage
	require.NoError(t, json.Unmarshal(body.Data, &wpage))
	assert.EqualValues(t, 1, wpage.Pagination.Total)

	rec, body = do(t, env.router, http.MethodGet, "/api/v1/years/2024/workplaces/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Year   int `json:"year"`
		Months []struct {
			Name string `json:"name"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, 2024, summary.Year)
	assert.Len(t, summary.Months, 12)

	rec, _ = do(t, env.router, http.MethodGet, "/api/v1/years/abc/workplaces/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, env.router, http.MethodGet, "/api/v1/weeks/999/workplaces/1/records", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetupRoutes(t *testing.T) {
	env := setupRouter(t)

	rec, body := do(t, env.router, http.MethodPost, "/api/v1/workplaces", map[string]string{"name": "Atelier Sud"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, body.Success)

	rec, body = do(t, env.router, http.MethodPost, "/api/v1/workplaces", map[string]string{"name": "Atelier Sud"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeConflict, body.Error.Code)

	rec, _ = do(t, env.router, http.MethodPost, "/api/v1/workers", map[string]any{
		"firstName": "Karim", "workplaceId": env.wpID, "salaireHebdomadaire": "600",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body = do(t, env.router, http.MethodPost, "/api/v1/years/2025/weeks", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var gen generatedWeeks
	require.NoError(t, json.Unmarshal(body.Data, &gen))
	assert.Equal(t, 52, gen.Created)

	rec, body = do(t, env.router, http.MethodGet, "/api/v1/years", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var years []int
	require.NoError(t, json.Unmarshal(body.Data, &years))
	assert.Equal(t, []int{2024, 2025}, years)

	rec, _ = do(t, env.router, http.MethodPost, "/api/v1/workers/1/weeks/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteRecord(t *testing.T) {
	env := setupRouter(t)
	path := "/api/v1/records/" + env.recordID

	rec, _ := do(t, env.router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body := do(t, env.router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body.Error.Code)
}
