package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/service"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type tokenAuthenticator struct{}

func (tokenAuthenticator) Authenticate(token string) (*backend.Session, error) {
	if token == "expired" {
		return nil, appErrors.ErrSessionExpired
	}
	return &backend.Session{Token: token, Subject: "admin"}, nil
}

type fakeAuthSrv struct {
	loginErr  error
	loggedOut *backend.Session
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*dto.LoginResponse, *backend.Session, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return &dto.LoginResponse{AccessToken: "tok-" + req.Username, TokenType: "Bearer", Subject: req.Username}, &backend.Session{Token: "tok"}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, s *backend.Session) error {
	f.loggedOut = s
	return nil
}

type fakeEnquirySrv struct {
	listErr    error
	lastFilter models.EnquiryFilter
	created    dto.EnquiryRequest
	session    *backend.Session
}

func (f *fakeEnquirySrv) List(_ context.Context, s *backend.Session, filter models.EnquiryFilter) (*dto.EnquiryListResponse, error) {
	f.session = s
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	items := []models.ReconciledEnquiry{{Enquiry: models.Enquiry{ID: 5, FirstName: "Ravi"}, DaysOverdue: 5, IsOverdue: true}}
	return &dto.EnquiryListResponse{
		Items:      items,
		Pagination: models.Pagination{Page: 1, PageSize: 10, TotalCount: 1, TotalPages: 1},
		Key:        "INTERESTED|ravi",
	}, nil
}

func (f *fakeEnquirySrv) Get(_ context.Context, _ *backend.Session, id int64) (*dto.EnquiryDetailResponse, error) {
	if id != 5 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Enquiry not found")
	}
	return &dto.EnquiryDetailResponse{Enquiry: models.ReconciledEnquiry{Enquiry: models.Enquiry{ID: 5}}}, nil
}

func (f *fakeEnquirySrv) Create(_ context.Context, _ *backend.Session, req dto.EnquiryRequest) (*models.Enquiry, error) {
	f.created = req
	return &models.Enquiry{ID: 9, FirstName: req.FirstName, CurrentStatus: models.EnquiryStatusPending}, nil
}

func (f *fakeEnquirySrv) Update(context.Context, *backend.Session, int64, dto.EnquiryRequest) (*models.Enquiry, error) {
	return &models.Enquiry{ID: 5}, nil
}

func (f *fakeEnquirySrv) Delete(context.Context, *backend.Session, int64) error {
	return nil
}

func (f *fakeEnquirySrv) Followups(context.Context, *backend.Session, int64) ([]models.Followup, error) {
	return []models.Followup{}, nil
}

func (f *fakeEnquirySrv) AddFollowup(_ context.Context, _ *backend.Session, id int64, req dto.FollowupRequest) (*models.Followup, error) {
	return &models.Followup{ID: 1, EnquiryID: id, Status: models.EnquiryStatus(req.Status)}, nil
}

func (f *fakeEnquirySrv) Export(_ context.Context, _ *backend.Session, _ models.EnquiryFilter, format string) (*service.ExportFile, error) {
	if format != "csv" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{FileName: "enquiries.csv", ContentType: "text/csv", Data: []byte("ID,Name\n5,Ravi\n")}, nil
}

type fakeDashboardSrv struct {
	hit bool
	err error
}

func (f *fakeDashboardSrv) Summary(context.Context, *backend.Session) (*dto.DashboardResponse, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.DashboardResponse{Enquiries: dto.EnquiryStats{Total: 4}}, f.hit, nil
}

type fakeReceiptSrv struct {
	issuedFor int64
}

func (f *fakeReceiptSrv) Issue(_ context.Context, _ *backend.Session, feeID int64) (*dto.ReceiptIssueResponse, error) {
	f.issuedFor = feeID
	return &dto.ReceiptIssueResponse{ReceiptNumber: "48213377", FeeID: feeID, Total: decimal.RequireFromString("2850")}, nil
}

func (f *fakeReceiptSrv) Reprint(_ context.Context, number string) (*service.ExportFile, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
}

func (f *fakeReceiptSrv) Download(_ context.Context, token string) (*service.ExportFile, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	return &service.ExportFile{FileName: "receipt_48213377.html", ContentType: "text/html; charset=utf-8", Data: []byte("<html></html>")}, nil
}

func (f *fakeReceiptSrv) History(context.Context, *int64, *int64) ([]models.IssuedReceipt, error) {
	return nil, appErrors.Clone(appErrors.ErrValidation, "fee_id or student_id is required")
}

type fakeDocumentSrv struct {
	studentID    int64
	documentType string
	fileName     string
	content      string
}

func (f *fakeDocumentSrv) List(context.Context, *backend.Session, *int64) ([]models.StudentDocument, error) {
	return []models.StudentDocument{}, nil
}

func (f *fakeDocumentSrv) Upload(_ context.Context, _ *backend.Session, studentID int64, documentType string, file backend.FileUpload) (*models.StudentDocument, error) {
	f.studentID = studentID
	f.documentType = documentType
	f.fileName = file.FileName
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(file.Reader)
	f.content = buf.String()
	return &models.StudentDocument{ID: 3, StudentID: studentID, DocumentType: documentType, FileName: file.FileName}, nil
}

func (f *fakeDocumentSrv) Delete(context.Context, *backend.Session, int64) error {
	return nil
}

type routerFixture struct {
	router    *gin.Engine
	auth      *fakeAuthSrv
	enquiries *fakeEnquirySrv
	dashboard *fakeDashboardSrv
	receipts  *fakeReceiptSrv
	documents *fakeDocumentSrv
}

func newRouterFixture(checks map[string]ReadinessCheck) routerFixture {
	gin.SetMode(gin.TestMode)
	f := routerFixture{
		auth:      &fakeAuthSrv{},
		enquiries: &fakeEnquirySrv{},
		dashboard: &fakeDashboardSrv{hit: true},
		receipts:  &fakeReceiptSrv{},
		documents: &fakeDocumentSrv{},
	}
	f.router = NewRouter(RouterParams{
		Sessions:   tokenAuthenticator{},
		Auth:       NewAuthHandler(f.auth),
		Enquiries:  NewEnquiryHandler(f.enquiries),
		Admissions: NewAdmissionHandler(nil),
		Courses:    NewCourseHandler(nil),
		Fees:       NewFeeHandler(nil, nil),
		Receipts:   NewReceiptHandler(f.receipts),
		Documents:  NewDocumentHandler(f.documents),
		Settings:   NewSettingsHandler(nil),
		Dashboard:  NewDashboardHandler(f.dashboard),
		System:     NewMetricsHandler(service.NewMetricsService(), checks),
	})
	return f
}

func (f routerFixture) do(method, path string, body []byte, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginReturnsToken(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", []byte(`{"username":"admin","password":"secret"}`), "")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, string(env.Data), `"accessToken":"tok-admin"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestLoginRejectionIsAToast(t *testing.T) {
	f := newRouterFixture(nil)
	f.auth.loginErr = appErrors.Clone(appErrors.ErrUnauthorized, "invalid username or password")

	rec := f.do(http.MethodPost, "/api/v1/auth/login", []byte(`{"username":"admin","password":"nope"}`), "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid username or password", env.Error.Message)
	assert.Equal(t, appErrors.DisplayToast, env.Error.Display)
}

func TestLoginMalformedBody(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", []byte(`{`), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecuredRoutesRequireBearer(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/enquiries", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/enquiries", nil, "expired")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestEnquiryListPassesFilterAndSession(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/enquiries?search=ravi&status=interested&page=2&page_size=10&key=abc", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ravi", f.enquiries.lastFilter.Search)
	assert.Equal(t, "INTERESTED", f.enquiries.lastFilter.Status)
	assert.Equal(t, 2, f.enquiries.lastFilter.Page)
	assert.Equal(t, "abc", f.enquiries.lastFilter.Key)
	assert.Equal(t, "tok", f.enquiries.session.Token)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
	assert.Equal(t, "INTERESTED|ravi", env.Meta["key"])
	assert.Contains(t, string(env.Data), `"daysOverdue":5`)
}

func TestEnquiryListFailureIsAView(t *testing.T) {
	f := newRouterFixture(nil)
	f.enquiries.listErr = appErrors.Clone(appErrors.ErrUpstreamUnavailable, "failed to load enquiries")

	rec := f.do(http.MethodGet, "/api/v1/enquiries", nil, "tok")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.DisplayView, env.Error.Display)
	assert.Equal(t, "failed to load enquiries", env.Error.Message)
}

func TestEnquiryRoutes(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/enquiries", []byte(`{"firstName":"Kiran","lastName":"Rao"}`), "tok")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Kiran", f.enquiries.created.FirstName)

	rec = f.do(http.MethodGet, "/api/v1/enquiries/abc", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/enquiries/6", nil, "tok")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/enquiries/5/followups", []byte(`{"followup_date":"2024-03-15","status":"INTERESTED"}`), "tok")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"enquiry_id":5`)

	rec = f.do(http.MethodDelete, "/api/v1/enquiries/5", nil, "tok")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEnquiryExport(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/enquiries/export", nil, "tok")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="enquiries.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Name\n5,Ravi\n", rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/enquiries/export?format=xlsx", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardReportsCacheHit(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/dashboard", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
	assert.Contains(t, string(env.Data), `"total":4`)
}

func TestDashboardFailure(t *testing.T) {
	f := newRouterFixture(nil)
	f.dashboard.err = errors.New("boom")

	rec := f.do(http.MethodGet, "/api/v1/dashboard", nil, "tok")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, appErrors.DisplayView, decodeEnvelope(t, rec).Error.Display)
}

func TestReceiptRoutes(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/receipts", []byte(`{"feeId":2}`), "tok")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2), f.receipts.issuedFor)

	rec = f.do(http.MethodPost, "/api/v1/receipts", []byte(`{}`), "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/receipts/00000000", nil, "tok")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/receipts", nil, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiptDownloadNeedsNoSession(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/receipts/download?token=good", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html></html>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt_48213377.html")

	rec = f.do(http.MethodGet, "/api/v1/receipts/download?token=bad", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/receipts/download", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUpload(t *testing.T) {
	f := newRouterFixture(nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("student_id", "12"))
	require.NoError(t, w.WriteField("document_type", "AADHAR"))
	part, err := w.CreateFormFile("file", "aadhar.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(12), f.documents.studentID)
	assert.Equal(t, "AADHAR", f.documents.documentType)
	assert.Equal(t, "aadhar.pdf", f.documents.fileName)
	assert.Equal(t, "%PDF-1.4", f.documents.content)
}

func TestLogoutUsesRequestSession(t *testing.T) {
	f := newRouterFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/logout", nil, "tok-42")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, f.auth.loggedOut)
	assert.Equal(t, "tok-42", f.auth.loggedOut.Token)
}

func TestReadiness(t *testing.T) {
	f := newRouterFixture(map[string]ReadinessCheck{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := f.do(http.MethodGet, "/ready", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"connection refused"`)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)

	ok := newRouterFixture(nil)
	rec = ok.do(http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ok.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
