package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/api/handler"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/jwt"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:      8080,
			BodyLimit: 1 << 20,
			CORS:      config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		},
		Auth: config.AuthConfig{
			JWTSecret:      "router-test-secret-0123456789",
			AccessTokenTTL: time.Hour,
			Cookie:         config.CookieConfig{Name: "buildflow_session"},
		},
	}
}

func setup(t *testing.T, db Pinger) (*jwt.Manager, http.Handler) {
	t.Helper()
	cfg := testConfig()
	mgr := jwt.NewManager(&cfg.Auth)
	h := handler.NewHandler(cfg, &service.Service{}, nil, zap.NewNop())
	return mgr, Setup(Deps{Config: cfg, Handler: h, JWT: mgr, DB: db, Logger: zap.NewNop()})
}

func TestHealth(t *testing.T) {
	_, r := setup(t, stubPinger{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, r = setup(t, stubPinger{err: errors.New("connection refused")})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	_, r := setup(t, nil)

	for _, path := range []string{"/api/v1/obras", "/api/v1/atividades", "/api/v1/dashboard", "/api/v1/auth/me"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestMasterOnlyRoutes(t *testing.T) {
	mgr, r := setup(t, nil)
	token, err := mgr.GenerateAccessToken("u-op", "operador", "OPERADOR")
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/usuarios"},
		{http.MethodPost, "/api/v1/obras"},
		{http.MethodDelete, "/api/v1/obras/7d0c6f0e-2f7a-4c55-9b55-6f1f0d0b8a11"},
		{http.MethodDelete, "/api/v1/atividades/7d0c6f0e-2f7a-4c55-9b55-6f1f0d0b8a11"},
		{http.MethodPost, "/api/v1/integrantes/import"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestCEPUnavailableWithoutClient(t *testing.T) {
	mgr, r := setup(t, nil)
	token, err := mgr.GenerateAccessToken("u-op", "operador", "OPERADOR")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cep/59015000", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
