package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/cep"
	pkgerrors "github.com/natanhermes/buildflow/pkg/errors"
	"github.com/natanhermes/buildflow/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
	meResult    *dto.UsuarioResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UsuarioResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock ObraService ──

type mockObraService struct {
	createResult *dto.ObraDetailResponse
	createErr    error
	getResult    *dto.ObraDetailResponse
	getErr       error
	exists       bool
	existsErr    error
}

func (m *mockObraService) Create(_ context.Context, _ *dto.CreateObraRequest, _ string) (*dto.ObraDetailResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockObraService) GetByID(_ context.Context, _ string) (*dto.ObraDetailResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockObraService) List(_ context.Context, _ *dto.ObraListRequest) ([]dto.ObraResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockObraService) Options(_ context.Context) ([]dto.ObraOption, error) {
	return nil, nil
}
func (m *mockObraService) CEIExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}
func (m *mockObraService) ListPavimentos(_ context.Context, _ string) ([]dto.PavimentoResponse, error) {
	return nil, nil
}
func (m *mockObraService) Delete(_ context.Context, _ string) error {
	return nil
}

// ── Mock TotalsService ──

type mockTotalsService struct {
	result *dto.ObraTotalsResponse
	err    error
}

func (m *mockTotalsService) RecalculateObra(_ context.Context, _ string) (*dto.ObraTotalsResponse, error) {
	return m.result, m.err
}
func (m *mockTotalsService) RecalculateAll(_ context.Context) (int, error) {
	return 0, m.err
}

// ── Mock ReportService ──

type mockReportService struct {
	buf      *bytes.Buffer
	data     []byte
	filename string
	err      error
}

func (m *mockReportService) ExportAtividades(_ context.Context, _ *dto.AtividadeListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockReportService) ObraReportPDF(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockReportService) ObraCalendar(_ context.Context, _ string) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

// ── Mock AtividadeService ──

type mockAtividadeService struct {
	createResult *dto.AtividadeResponse
	createErr    error
	createUser   string
	getErr       error
}

func (m *mockAtividadeService) Create(_ context.Context, _ *dto.CreateAtividadeRequest, userID string) (*dto.AtividadeResponse, error) {
	m.createUser = userID
	return m.createResult, m.createErr
}
func (m *mockAtividadeService) GetByID(_ context.Context, id string) (*dto.AtividadeResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.AtividadeResponse{ID: id}, nil
}
func (m *mockAtividadeService) List(_ context.Context, _ *dto.AtividadeListRequest) ([]dto.AtividadeResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockAtividadeService) Update(_ context.Context, id string, _ *dto.UpdateAtividadeRequest) (*dto.AtividadeResponse, error) {
	return &dto.AtividadeResponse{ID: id}, nil
}
func (m *mockAtividadeService) Delete(_ context.Context, _ string) error {
	return nil
}

// ── Mock CEP lookup ──

type mockCEPLookup struct {
	addr *cep.Address
	err  error
}

func (m *mockCEPLookup) Lookup(_ context.Context, _ string) (*cep.Address, error) {
	return m.addr, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	return r, w
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "MASTER")
	c.Set("username", "master")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func authed(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func cookieConfig() config.CookieConfig {
	return config.CookieConfig{Name: "buildflow_session", SameSite: "Lax"}
}

func validAtividadeBody() map[string]interface{} {
	return map[string]interface{}{
		"status":            "EXECUCAO",
		"obra_id":           "7d0c6f0e-2f7a-4c55-9b55-6f1f0d0b8a11",
		"pavimento_id":      "5b7f0a3c-8d1e-4c2b-a6f4-2b1d9c0e7f22",
		"data_execucao":     "2026-03-10",
		"area_executada_m2": "50",
		"integrante_ids":    []string{"0e9f5a7b-1c2d-4e3f-8a9b-0c1d2e3f4a55"},
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", ExpiresIn: 3600},
	}
	h := NewAuthHandler(mock, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "master",
		Password: "Senha123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "buildflow_session" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected buildflow_session cookie to be set")
	}
	if session.Value != "test-access-token" {
		t.Errorf("expected cookie value test-access-token, got %s", session.Value)
	}
	if !session.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if session.MaxAge != 3600 {
		t.Errorf("expected MaxAge 3600, got %d", session.MaxAge)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, 11001},
		{"inactive user", service.ErrUsuarioInativo, http.StatusForbidden, 11002},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: tt.err}, cookieConfig(), zap.NewNop())

			r, w := setupGin()
			req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
				Username: "master",
				Password: "wrong",
			}))
			req.Header.Set("Content-Type", "application/json")

			r.POST("/auth/login", h.Login)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
			if strings.Contains(w.Header().Get("Set-Cookie"), "buildflow_session") {
				t.Error("no cookie expected on failed login")
			}
		})
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r.POST("/auth/logout", authed(h.Logout))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti to be revoked, got %q", mock.logoutJTI)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "buildflow_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

func TestAuthHandler_Logout_StoreFailureStillClears(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{logoutErr: errors.New("redis down")}, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r.POST("/auth/logout", authed(h.Logout))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		meResult: &dto.UsuarioResponse{ID: "test-user-id", Username: "master"},
	}, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	r.GET("/auth/me", authed(h.Me))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me_UserGone(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meErr: service.ErrUsuarioNotFound}, cookieConfig(), zap.NewNop())

	r, w := setupGin()
	r.GET("/auth/me", authed(h.Me))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if resp := parseResponse(w); w.Code != http.StatusUnauthorized || resp.Code != 11003 {
		t.Errorf("expected 401/11003, got %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AtividadeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAtividadeHandler_Create_Success(t *testing.T) {
	mock := &mockAtividadeService{createResult: &dto.AtividadeResponse{ID: "atv-1", Status: "EXECUCAO"}}
	h := NewAtividadeHandler(mock, &mockReportService{}, zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/atividades", jsonBody(validAtividadeBody()))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/atividades", authed(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.createUser != "test-user-id" {
		t.Errorf("expected activity attributed to test-user-id, got %q", mock.createUser)
	}
}

func TestAtividadeHandler_Create_BindingDetails(t *testing.T) {
	h := NewAtividadeHandler(&mockAtividadeService{}, &mockReportService{}, zap.NewNop())

	body := validAtividadeBody()
	delete(body, "status")
	body["inicio_expediente"] = "25:00"

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/atividades", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/atividades", authed(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
	details, ok := resp.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("expected field details, got %T", resp.Details)
	}
	for _, field := range []string{"status", "inicio_expediente"} {
		if _, ok := details[field]; !ok {
			t.Errorf("expected details for %s, got %v", field, details)
		}
	}
}

func TestAtividadeHandler_Create_ServiceValidation(t *testing.T) {
	mock := &mockAtividadeService{
		createErr: dto.FieldError("area_executada_m2", "a área executada não pode ser maior que a área do pavimento"),
	}
	h := NewAtividadeHandler(mock, &mockReportService{}, zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/atividades", jsonBody(validAtividadeBody()))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/atividades", authed(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, _ := parseResponse(w).Details.(map[string]interface{})
	if _, ok := details["area_executada_m2"]; !ok {
		t.Errorf("expected details for area_executada_m2, got %v", details)
	}
}

func TestAtividadeHandler_Create_Timeout(t *testing.T) {
	mock := &mockAtividadeService{createErr: pkgerrors.ErrTransactionTimeout}
	h := NewAtividadeHandler(mock, &mockReportService{}, zap.NewNop())

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/atividades", jsonBody(validAtividadeBody()))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/atividades", authed(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After 2, got %q", got)
	}
	if resp := parseResponse(w); resp.Code != 50300 {
		t.Errorf("expected error code 50300, got %d", resp.Code)
	}
}

func TestAtividadeHandler_Create_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"obra", service.ErrObraNotFound, http.StatusNotFound, 13001},
		{"pavimento", service.ErrPavimentoNotFound, http.StatusNotFound, 14001},
		{"pavimento of another obra", service.ErrPavimentoForaDaObra, http.StatusBadRequest, 14002},
		{"integrante", service.ErrIntegranteNotFound, http.StatusNotFound, 16001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAtividadeHandler(&mockAtividadeService{createErr: tt.err}, &mockReportService{}, zap.NewNop())

			r, w := setupGin()
			req := httptest.NewRequest("POST", "/atividades", jsonBody(validAtividadeBody()))
			req.Header.Set("Content-Type", "application/json")

			r.POST("/atividades", authed(h.Create))
			r.ServeHTTP(w, req)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAtividadeHandler_GetByID_NotFound(t *testing.T) {
	h := NewAtividadeHandler(&mockAtividadeService{getErr: service.ErrAtividadeNotFound}, &mockReportService{}, zap.NewNop())

	r, w := setupGin()
	r.GET("/atividades/:id", authed(h.GetByID))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/atividades/nope", nil))

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 17001 {
		t.Errorf("expected 404/17001, got %d/%d", w.Code, resp.Code)
	}
}

func TestAtividadeHandler_Export(t *testing.T) {
	report := &mockReportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "atividades_20260315.xlsx"}
	h := NewAtividadeHandler(&mockAtividadeService{}, report, zap.NewNop())

	r, w := setupGin()
	r.GET("/atividades/export", authed(h.Export))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/atividades/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "atividades_20260315.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestAtividadeHandler_Export_NoData(t *testing.T) {
	h := NewAtividadeHandler(&mockAtividadeService{}, &mockReportService{err: service.ErrExportNoData}, zap.NewNop())

	r, w := setupGin()
	r.GET("/atividades/export", authed(h.Export))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/atividades/export", nil))

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 19001 {
		t.Errorf("expected 404/19001, got %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ObraHandler Tests
// ═══════════════════════════════════════════════════════════

func newTestObraHandler(obra *mockObraService, report *mockReportService) *ObraHandler {
	return NewObraHandler(obra, &mockTotalsService{}, report, zap.NewNop())
}

func TestObraHandler_Create_CEIConflict(t *testing.T) {
	h := newTestObraHandler(&mockObraService{createErr: service.ErrCEIExists}, &mockReportService{})

	body := map[string]interface{}{
		"nome":        "Residencial Ponta Negra",
		"cei":         "12.345.678/0001-90",
		"data_inicio": "2026-01-05",
		"data_fim":    "2026-12-20",
		"endereco": map[string]interface{}{
			"cep": "59015-000", "logradouro": "Av. Deodoro", "numero": "100",
			"bairro": "Cidade Alta", "cidade": "Natal", "estado": "RN",
		},
		"torres": []map[string]interface{}{{
			"nome": "Torre A",
			"pavimentos": []map[string]interface{}{
				{"identificador": "1º Pavimento", "area_m2": "200", "argamassa_m3": "3"},
			},
		}},
	}

	r, w := setupGin()
	req := httptest.NewRequest("POST", "/obras", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")

	r.POST("/obras", authed(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != 13002 {
		t.Errorf("expected error code 13002, got %d", resp.Code)
	}
}

func TestObraHandler_GetByID_NotFound(t *testing.T) {
	h := newTestObraHandler(&mockObraService{getErr: service.ErrObraNotFound}, &mockReportService{})

	r, w := setupGin()
	r.GET("/obras/:id", authed(h.GetByID))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/obras/nope", nil))

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 13001 {
		t.Errorf("expected 404/13001, got %d/%d", w.Code, resp.Code)
	}
}

func TestObraHandler_CEIExists(t *testing.T) {
	h := newTestObraHandler(&mockObraService{exists: true}, &mockReportService{})

	r, w := setupGin()
	r.GET("/obras/cei-exists", authed(h.CEIExists))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/obras/cei-exists?cei=12.345.678%2F0001-90", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"exists":true`) {
		t.Errorf("expected exists=true, got %s", w.Body.String())
	}
}

func TestObraHandler_CEIExists_BadFormat(t *testing.T) {
	h := newTestObraHandler(&mockObraService{}, &mockReportService{})

	r, w := setupGin()
	r.GET("/obras/cei-exists", authed(h.CEIExists))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/obras/cei-exists?cei=123", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestObraHandler_ReportPDF(t *testing.T) {
	report := &mockReportService{buf: bytes.NewBufferString("%PDF-1.3"), filename: "relatorio_12345678000190.pdf"}
	h := newTestObraHandler(&mockObraService{}, report)

	r, w := setupGin()
	r.GET("/obras/:id/relatorio.pdf", authed(h.ReportPDF))
	r.ServeHTTP(w, httptest.NewRequest("GET", "/obras/o1/relatorio.pdf", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "relatorio_12345678000190.pdf") {
		t.Errorf("unexpected disposition %q", cd)
	}
}

func TestObraHandler_RecalculateTotals_Timeout(t *testing.T) {
	h := NewObraHandler(&mockObraService{}, &mockTotalsService{err: pkgerrors.ErrTransactionTimeout}, &mockReportService{}, zap.NewNop())

	r, w := setupGin()
	r.POST("/obras/:id/recalcular", authed(h.RecalculateTotals))
	r.ServeHTTP(w, httptest.NewRequest("POST", "/obras/o1/recalcular", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CEPHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCEPHandler_Lookup(t *testing.T) {
	tests := []struct {
		name     string
		client   CEPLookup
		wantHTTP int
		wantCode int
	}{
		{"found", &mockCEPLookup{addr: &cep.Address{CEP: "59015-000", Localidade: "Natal", UF: "RN"}}, http.StatusOK, 0},
		{"invalid", &mockCEPLookup{err: cep.ErrInvalidCEP}, http.StatusBadRequest, 10001},
		{"not found", &mockCEPLookup{err: cep.ErrCEPNotFound}, http.StatusNotFound, 18001},
		{"upstream failure", &mockCEPLookup{err: errors.New("timeout")}, http.StatusBadGateway, 18002},
		{"not configured", nil, http.StatusServiceUnavailable, 18003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCEPHandler(tt.client, zap.NewNop())

			r, w := setupGin()
			r.GET("/cep/:cep", authed(h.Lookup))
			r.ServeHTTP(w, httptest.NewRequest("GET", "/cep/59015000", nil))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}
