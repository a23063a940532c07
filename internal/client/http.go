package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/api"
	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/models"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

const defaultTimeout = 15 * time.Second

// HTTPBackend calls the REST API served by internal/api.
type HTTPBackend struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// NewHTTPBackend returns a client for the API at baseURL, e.g.
// "http://localhost:8080". A nil httpClient gets a default with a timeout.
func NewHTTPBackend(baseURL string, httpClient *http.Client) *HTTPBackend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    httpClient,
		logger:  logging.New(),
	}
}

func (b *HTTPBackend) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &BackendError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return &BackendError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(middleware.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b.logger.WithFields(logrus.Fields{
		"op":         op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	}).Debug("Calling backend")

	resp, err := b.http.Do(req)
	if err != nil {
		b.logger.WithError(err).WithField("op", op).Warn("Backend unreachable")
		return &BackendError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env api.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &BackendError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode >= 300 || !env.Success {
		err := decodeError(op, resp.StatusCode, env.Error)
		b.logger.WithFields(logrus.Fields{
			"op":         op,
			"status":     resp.StatusCode,
			"request_id": requestID,
		}).WithError(err).Debug("Backend refused request")
		return err
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &BackendError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}

func (b *HTTPBackend) GetWeekRecords(ctx context.Context, weekID, workplaceID uint) (*service.WeekPage, error) {
	var page service.WeekPage
	path := fmt.Sprintf("/weeks/%d/workplaces/%d/records", weekID, workplaceID)
	if err := b.do(ctx, "GetWeekRecords", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *HTTPBackend) GetWorkerRecords(ctx context.Context, workerID uint, page, limit int) (*service.WorkerPage, error) {
	var result service.WorkerPage
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	path := fmt.Sprintf("/workers/%d/records?%s", workerID, q.Encode())
	if err := b.do(ctx, "GetWorkerRecords", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) GetYearRecords(ctx context.Context, year int, workplaceID uint) (*payroll.YearSummary, error) {
	var summary payroll.YearSummary
	path := fmt.Sprintf("/years/%d/workplaces/%d", year, workplaceID)
	if err := b.do(ctx, "GetYearRecords", http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (b *HTTPBackend) GetWeekRecord(ctx context.Context, recordID string) (*service.RecordView, error) {
	var view service.RecordView
	if err := b.do(ctx, "GetWeekRecord", http.MethodGet, "/records/"+url.PathEscape(recordID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *HTTPBackend) UpdateWeekRecord(ctx context.Context, recordID string, update payroll.RecordUpdate) (*service.RecordView, error) {
	var view service.RecordView
	if err := b.do(ctx, "UpdateWeekRecord", http.MethodPatch, "/records/"+url.PathEscape(recordID), update, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *HTTPBackend) UpdateWeekRecordPayment(ctx context.Context, recordID string, action payroll.ActionType) (*service.RecordView, error) {
	var view service.RecordView
	body := map[string]string{"type": string(action)}
	if err := b.do(ctx, "UpdateWeekRecordPayment", http.MethodPost, "/records/"+url.PathEscape(recordID)+"/payment", body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (b *HTTPBackend) DeleteWeekRecord(ctx context.Context, recordID string) error {
	return b.do(ctx, "DeleteWeekRecord", http.MethodDelete, "/records/"+url.PathEscape(recordID), nil, nil)
}

func (b *HTTPBackend) CreateWorkplace(ctx context.Context, name string) (*models.Workplace, error) {
	var workplace models.Workplace
	if err := b.do(ctx, "CreateWorkplace", http.MethodPost, "/workplaces", map[string]string{"name": name}, &workplace); err != nil {
		return nil, err
	}
	return &workplace, nil
}

func (b *HTTPBackend) ListWorkplaces(ctx context.Context) ([]*models.Workplace, error) {
	var workplaces []*models.Workplace
	if err := b.do(ctx, "ListWorkplaces", http.MethodGet, "/workplaces", nil, &workplaces); err != nil {
		return nil, err
	}
	return workplaces, nil
}

func (b *HTTPBackend) GetWorkplace(ctx context.Context, id uint) (*models.Workplace, error) {
	var workplace models.Workplace
	if err := b.do(ctx, "GetWorkplace", http.MethodGet, fmt.Sprintf("/workplaces/%d", id), nil, &workplace); err != nil {
		return nil, err
	}
	return &workplace, nil
}

func (b *HTTPBackend) CreateWorker(ctx context.Context, firstName, lastName string, workplaceID uint, salaire decimal.Decimal) (*models.Worker, error) {
	var worker models.Worker
	body := map[string]any{
		"firstName":           firstName,
		"lastName":            lastName,
		"workplaceId":         workplaceID,
		"salaireHebdomadaire": salaire,
	}
	if err := b.do(ctx, "CreateWorker", http.MethodPost, "/workers", body, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

func (b *HTTPBackend) ListWorkers(ctx context.Context, workplaceID uint) ([]*models.Worker, error) {
	var workers []*models.Worker
	path := "/workers"
	if workplaceID != 0 {
		path += "?workplaceId=" + strconv.FormatUint(uint64(workplaceID), 10)
	}
	if err := b.do(ctx, "ListWorkers", http.MethodGet, path, nil, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

func (b *HTTPBackend) GetWorker(ctx context.Context, id uint) (*models.Worker, error) {
	var worker models.Worker
	if err := b.do(ctx, "GetWorker", http.MethodGet, fmt.Sprintf("/workers/%d", id), nil, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

func (b *HTTPBackend) GenerateWeeks(ctx context.Context, year int) (int, error) {
	var result struct {
		Created int `json:"created"`
	}
	if err := b.do(ctx, "GenerateWeeks", http.MethodPost, fmt.Sprintf("/years/%d/weeks", year), nil, &result); err != nil {
		return 0, err
	}
	return result.Created, nil
}

func (b *HTTPBackend) GetWeek(ctx context.Context, id uint) (*models.Week, error) {
	var week models.Week
	if err := b.do(ctx, "GetWeek", http.MethodGet, fmt.Sprintf("/weeks/%d", id), nil, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

func (b *HTTPBackend) CurrentWeek(ctx context.Context, date time.Time) (*models.Week, error) {
	var week models.Week
	path := "/weeks/current?date=" + date.Format("2006-01-02")
	if err := b.do(ctx, "CurrentWeek", http.MethodGet, path, nil, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

func (b *HTTPBackend) Years(ctx context.Context) ([]int, error) {
	var years []int
	if err := b.do(ctx, "Years", http.MethodGet, "/years", nil, &years); err != nil {
		return nil, err
	}
	return years, nil
}

func (b *HTTPBackend) ScheduleWorker(ctx context.Context, workerID, weekID uint) (*service.RecordView, error) {
	var view service.RecordView
	path := fmt.Sprintf("/workers/%d/weeks/%d", workerID, weekID)
	if err := b.do(ctx, "ScheduleWorker", http.MethodPost, path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
