package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perm-tracker-api/internal/dto"
	"github.com/noah-isme/perm-tracker-api/internal/middleware"
	"github.com/noah-isme/perm-tracker-api/internal/models"
	"github.com/noah-isme/perm-tracker-api/internal/service"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
)

type caseServiceMock struct {
	lastOwner   string
	lastQuery   dto.CaseListQuery
	lastPayload dto.CasePayload
	lastToday   string
	err         error
}

func (m *caseServiceMock) List(ctx context.Context, ownerID string, query dto.CaseListQuery) (*dto.CaseListResult, error) {
	m.lastOwner, m.lastQuery = ownerID, query
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CaseListResult{
		Items:      []models.CaseCardData{{ID: "c1", EmployerName: "Acme"}},
		Pagination: models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
		Today:      "2025-01-15",
		CacheHit:   true,
	}, nil
}

func (m *caseServiceMock) Get(ctx context.Context, ownerID, id, today string) (*models.CaseDetail, error) {
	m.lastOwner, m.lastToday = ownerID, today
	if m.err != nil {
		return nil, m.err
	}
	return &models.CaseDetail{Case: models.Case{ID: id}}, nil
}

func (m *caseServiceMock) Create(ctx context.Context, ownerID string, payload dto.CasePayload) (*models.Case, error) {
	m.lastOwner, m.lastPayload = ownerID, payload
	if m.err != nil {
		return nil, m.err
	}
	return &models.Case{ID: "new", OwnerID: ownerID, EmployerName: payload.EmployerName}, nil
}

func (m *caseServiceMock) Update(ctx context.Context, ownerID, id string, payload dto.CasePayload) (*models.Case, error) {
	m.lastOwner, m.lastPayload = ownerID, payload
	if m.err != nil {
		return nil, m.err
	}
	return &models.Case{ID: id}, nil
}

func (m *caseServiceMock) Delete(ctx context.Context, ownerID, id string) error {
	m.lastOwner = ownerID
	return m.err
}

func (m *caseServiceMock) Restore(ctx context.Context, ownerID, id string) (*models.Case, error) {
	m.lastOwner = ownerID
	if m.err != nil {
		return nil, m.err
	}
	return &models.Case{ID: id}, nil
}

func (m *caseServiceMock) SetFavorite(ctx context.Context, ownerID, id string, req dto.FavoriteRequest) error {
	m.lastOwner = ownerID
	return m.err
}

func (m *caseServiceMock) AddRequest(ctx context.Context, ownerID, caseID string, req dto.CreateRequestEntry) (*models.RequestEntry, error) {
	m.lastOwner = ownerID
	if m.err != nil {
		return nil, m.err
	}
	return &models.RequestEntry{ID: "r1", CaseID: caseID, Kind: req.Kind, ReceivedDate: req.ReceivedDate}, nil
}

func (m *caseServiceMock) RespondRequest(ctx context.Context, ownerID, caseID, requestID string, req dto.RespondRequest) error {
	m.lastOwner = ownerID
	return m.err
}

type deadlineServiceMock struct{}

func (deadlineServiceMock) Upcoming(ctx context.Context, ownerID, today string, withinDays int) (*models.DeadlineSummary, error) {
	return &models.DeadlineSummary{Today: "2025-01-15", Within: withinDays, Items: []models.CaseDeadline{}}, nil
}

func (deadlineServiceMock) Calendar(ctx context.Context, ownerID, today string) ([]byte, error) {
	if today == "bad" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "today must be a yyyy-MM-dd date")
	}
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

func (deadlineServiceMock) ContentType() string { return "text/calendar; charset=utf-8" }

type exportServiceMock struct {
	lastQuery dto.ExportQuery
}

func (m *exportServiceMock) Export(ctx context.Context, ownerID string, query dto.ExportQuery) (*service.ExportResult, error) {
	m.lastQuery = query
	return &service.ExportResult{Filename: "perm-cases-2025-01-15.csv", ContentType: "text/csv", Body: []byte("Employer\nAcme\n"), Rows: 1}, nil
}

type authServiceMock struct{}

func (authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "secret" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600}, nil
}

func (authServiceMock) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	return &models.UserInfo{ID: userID, Email: "attorney@example.com"}, nil
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func newContext(method, target string, body interface{}, authed bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if authed {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "attorney@example.com"})
	}
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCaseHandlerListBindsQueryAndMeta(t *testing.T) {
	svc := &caseServiceMock{}
	h := NewCaseHandler(svc)
	c, w := newContext(http.MethodGet, "/cases?q=acme&sort=employer&dir=desc&favorites=true&page=2&limit=5&today=2025-01-15", nil, true)
	middleware.WithResponseMeta()(c)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.lastOwner)
	assert.Equal(t, dto.CaseListQuery{Search: "acme", Sort: "employer", Direction: "desc", FavoritesOnly: true, Page: 2, PageSize: 5, Today: "2025-01-15"}, svc.lastQuery)

	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 6, env.Pagination.TotalCount)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, "2025-01-15", env.Meta["today"])
}

func TestCaseHandlerRequiresUser(t *testing.T) {
	h := NewCaseHandler(&caseServiceMock{})
	c, w := newContext(http.MethodGet, "/cases", nil, false)

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCaseHandlerRejectsMalformedInput(t *testing.T) {
	h := NewCaseHandler(&caseServiceMock{})

	c, w := newContext(http.MethodGet, "/cases?page=abc", nil, true)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodPost, "/cases", "{not json", true)
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestCaseHandlerCreate(t *testing.T) {
	svc := &caseServiceMock{}
	h := NewCaseHandler(svc)
	c, w := newContext(http.MethodPost, "/cases", map[string]interface{}{
		"case_status":         "pwd",
		"progress_status":     "working",
		"employer_name":       "Acme",
		"pwd_expiration_date": "2025-06-30",
	}, true)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Acme", svc.lastPayload.EmployerName)
	require.NotNil(t, svc.lastPayload.PWDExpirationDate)
	assert.Equal(t, "2025-06-30", *svc.lastPayload.PWDExpirationDate)
}

func TestCaseHandlerMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		call   func(h *CaseHandler, c *gin.Context)
		status int
	}{
		{"get not found", appErrors.Clone(appErrors.ErrNotFound, "case not found"), func(h *CaseHandler, c *gin.Context) { h.Get(c) }, http.StatusNotFound},
		{"update deleted", appErrors.Clone(appErrors.ErrCaseDeleted, "case has been deleted"), func(h *CaseHandler, c *gin.Context) { h.Update(c) }, http.StatusGone},
		{"restore internal", errors.New("boom"), func(h *CaseHandler, c *gin.Context) { h.Restore(c) }, http.StatusInternalServerError},
		{"delete ok", nil, func(h *CaseHandler, c *gin.Context) { h.Delete(c) }, http.StatusNoContent},
		{"favorite ok", nil, func(h *CaseHandler, c *gin.Context) { h.SetFavorite(c) }, http.StatusNoContent},
		{"respond ok", nil, func(h *CaseHandler, c *gin.Context) { h.RespondRequest(c) }, http.StatusNoContent},
		{"add request ok", nil, func(h *CaseHandler, c *gin.Context) { h.AddRequest(c) }, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCaseHandler(&caseServiceMock{err: tt.err})
			c, w := newContext(http.MethodPut, "/cases/c1", map[string]interface{}{
				"case_status":             "pwd",
				"progress_status":         "working",
				"employer_name":           "Acme",
				"is_favorite":             true,
				"kind":                    "rfi",
				"received_date":           "2025-01-02",
				"response_submitted_date": "2025-01-10",
			}, true)
			c.Params = gin.Params{{Key: "id", Value: "c1"}, {Key: "requestId", Value: "r1"}}

			tt.call(h, c)
			c.Writer.WriteHeaderNow()

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestDeadlineHandler(t *testing.T) {
	h := NewDeadlineHandler(deadlineServiceMock{})

	c, w := newContext(http.MethodGet, "/deadlines/upcoming?within=14", nil, true)
	h.Upcoming(c)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.DeadlineSummary
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &summary))
	assert.Equal(t, 14, summary.Within)

	c, w = newContext(http.MethodGet, "/deadlines/upcoming?within=-3", nil, true)
	h.Upcoming(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodGet, "/deadlines/calendar.ics", nil, true)
	h.Calendar(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "perm-deadlines-u1.ics")

	c, w = newContext(http.MethodGet, "/deadlines/calendar.ics?today=bad", nil, true)
	h.Calendar(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler(t *testing.T) {
	svc := &exportServiceMock{}
	h := NewExportHandler(svc)
	c, w := newContext(http.MethodGet, "/exports/cases?format=csv&q=acme&sort=employer", nil, true)

	h.Cases(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "perm-cases-2025-01-15.csv")
	assert.Equal(t, "csv", svc.lastQuery.Format)
	assert.Equal(t, "acme", svc.lastQuery.Search)
	assert.Equal(t, "employer", svc.lastQuery.Sort)
}

func TestAuthHandler(t *testing.T) {
	h := NewAuthHandler(authServiceMock{})

	c, w := newContext(http.MethodPost, "/auth/login", "nope", false)
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "attorney@example.com", Password: "wrong"}, false)
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "attorney@example.com", Password: "secret"}, false)
	h.Login(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/auth/me", nil, true)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &info))
	assert.Equal(t, "u1", info.ID)
}

func TestMetricsHandlerReadiness(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), failingPinger{})
	c, w := newContext(http.MethodGet, "/ready", nil, false)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h = NewMetricsHandler(service.NewMetricsService(), nil)
	c, w = newContext(http.MethodGet, "/ready", nil, false)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/metrics", nil, false)
	h.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")
}
