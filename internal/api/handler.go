package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// PayrollService is the part of the service layer exposed over HTTP.
type PayrollService interface {
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

type Handler struct {
	svc    PayrollService
	logger *logrus.Logger
}

func NewHandler(svc PayrollService, logger *logrus.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/weeks", func(r chi.Router) {
		r.Get("/current", h.handleCurrentWeek)
		r.Get("/{weekID}", h.handleGetWeek)
		r.Get("/{weekID}/workplaces/{workplaceID}/records", h.handleWeekRecords)
	})

	r.Route("/records/{recordID}", func(r chi.Router) {
		r.Get("/", h.handleGetRecord)
		r.Patch("/", h.handleUpdateRecord)
		r.Delete("/", h.handleDeleteRecord)
		r.Post("/payment", h.handlePayment)
	})

	r.Route("/workplaces", func(r chi.Router) {
		r.Get("/", h.handleListWorkplaces)
		r.Post("/", h.handleCreateWorkplace)
		r.Get("/{workplaceID}", h.handleGetWorkplace)
	})

	r.Route("/workers", func(r chi.Router) {
		r.Get("/", h.handleListWorkers)
		r.Post("/", h.handleCreateWorker)
		r.Get("/{workerID}", h.handleGetWorker)
		r.Get("/{workerID}/records", h.handleWorkerRecords)
		r.Post("/{workerID}/weeks/{weekID}", h.handleScheduleWorker)
	})

	r.Get("/years", h.handleListYears)
	r.Post("/years/{year}/weeks", h.handleGenerateWeeks)
	r.Get("/years/{year}/workplaces/{workplaceID}", h.handleYearRecords)
}

func uintParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, service.ErrInvalidInput)
	}
	return uint(v), nil
}

func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, service.ErrInvalidInput)
	}
	return nil
}

func (h *Handler) handleWeekRecords(w http.ResponseWriter, r *http.Request) {
	weekID, err := uintParam(r, "weekID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	workplaceID, err := uintParam(r, "workplaceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.svc.GetWeekRecords(r.Context(), weekID, workplaceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, page)
}

func (h *Handler) handleWorkerRecords(w http.ResponseWriter, r *http.Request) {
	workerID, err := uintParam(r, "workerID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.svc.GetWorkerRecords(r.Context(), workerID,
		intQuery(r, "page", 1), intQuery(r, "limit", service.DefaultPageLimit))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, page)
}

func (h *Handler) handleYearRecords(w http.ResponseWriter, r *http.Request) {
	year, err := service.ParseYear(chi.URLParam(r, "year"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	workplaceID, err := uintParam(r, "workplaceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.svc.GetYearRecords(r.Context(), year, workplaceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, summary)
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetWeekRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, view)
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var update payroll.RecordUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.UpdateWeekRecord(r.Context(), chi.URLParam(r, "recordID"), update)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, view)
}

type paymentPayload struct {
	Type string `json:"type"`
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	action, err := payroll.ParseActionType(payload.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.UpdateWeekRecordPayment(r.Context(), chi.URLParam(r, "recordID"), action)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, view)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWeekRecord(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListWorkplaces(w http.ResponseWriter, r *http.Request) {
	workplaces, err := h.svc.ListWorkplaces(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, workplaces)
}

type workplacePayload struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateWorkplace(w http.ResponseWriter, r *http.Request) {
	var payload workplacePayload
	if err := decodeJSON(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}

	workplace, err := h.svc.CreateWorkplace(r.Context(), payload.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Created(w, r, workplace)
}

func (h *Handler) handleGetWorkplace(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "workplaceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	workplace, err := h.svc.GetWorkplace(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, workplace)
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.svc.ListWorkers(r.Context(), uint(max(intQuery(r, "workplaceId", 0), 0)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, workers)
}

type workerPayload struct {
	FirstName           string          `json:"firstName"`
	LastName            string          `json:"lastName"`
	WorkplaceID         uint            `json:"workplaceId"`
	SalaireHebdomadaire decimal.Decimal `json:"salaireHebdomadaire"`
}

func (h *Handler) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var payload workerPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}

	worker, err := h.svc.CreateWorker(r.Context(), payload.FirstName, payload.LastName, payload.WorkplaceID, payload.SalaireHebdomadaire)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Created(w, r, worker)
}

func (h *Handler) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "workerID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	worker, err := h.svc.GetWorker(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, worker)
}

func (h *Handler) handleScheduleWorker(w http.ResponseWriter, r *http.Request) {
	workerID, err := uintParam(r, "workerID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	weekID, err := uintParam(r, "weekID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.ScheduleWorker(r.Context(), workerID, weekID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Created(w, r, view)
}

func (h *Handler) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "weekID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	week, err := h.svc.GetWeek(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, week)
}

func (h *Handler) handleCurrentWeek(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("date must be YYYY-MM-DD: %w", service.ErrInvalidInput))
			return
		}
		date = parsed
	}

	week, err := h.svc.CurrentWeek(r.Context(), date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, week)
}

func (h *Handler) handleListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.Years(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, years)
}

type generatedWeeks struct {
	Year    int `json:"year"`
	Created int `json:"created"`
}

func (h *Handler) handleGenerateWeeks(w http.ResponseWriter, r *http.Request) {
	year, err := service.ParseYear(chi.URLParam(r, "year"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.svc.GenerateWeeks(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Success(w, r, generatedWeeks{Year: year, Created: created})
}
