package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/pkg/jwt"
)

// ── Mock TokenStore ──

type mockTokenStore struct {
	revoked map[string]time.Duration
	err     error
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

// ── helpers ──

func setupTestAuthService(tokens TokenStore) (AuthService, *mockRepos, *jwt.Manager) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: 12 * time.Hour,
		},
	}
	m := newMockRepos()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, m.repo, jwtMgr, tokens, zap.NewNop()), m, jwtMgr
}

func createTestUsuario(t *testing.T, m *mockRepos, username, password, role string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &model.Usuario{
		Username:     username,
		PasswordHash: string(hash),
		Nome:         "Ana",
		Sobrenome:    "Souza",
		Email:        username + "@buildflow.test",
		Role:         role,
		Status:       model.UsuarioAtivo,
	}
	if err := m.usuario.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, m, jwtMgr := setupTestAuthService(nil)
	user := createTestUsuario(t, m, "ana", "senha-forte-123", model.RoleMaster)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ana", Password: "senha-forte-123"})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}
	if resp.ExpiresIn != int((12 * time.Hour).Seconds()) {
		t.Errorf("unexpected expires_in %d", resp.ExpiresIn)
	}
	if resp.User.ID != user.ID || resp.User.Role != model.RoleMaster {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token should parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleMaster || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	createTestUsuario(t, m, "ana", "senha-forte-123", model.RoleOperador)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ana", Password: "errada"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ninguem", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	u := createTestUsuario(t, m, "ana", "senha-forte-123", model.RoleOperador)
	u.Status = model.UsuarioInativo

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ana", Password: "senha-forte-123"})
	if !errors.Is(err, ErrUsuarioInativo) {
		t.Errorf("want ErrUsuarioInativo, got %v", err)
	}
}

// ── Logout ──

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	store := &mockTokenStore{revoked: map[string]time.Duration{}}
	svc, _, _ := setupTestAuthService(store)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	ttl, ok := store.revoked["jti-1"]
	if !ok {
		t.Fatal("token should be blacklisted")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("ttl should be the remaining lifetime, got %s", ttl)
	}

	if err := svc.Logout(context.Background(), "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("expired token logout should be a no-op: %v", err)
	}
	if _, ok := store.revoked["jti-old"]; ok {
		t.Error("expired token should not be stored")
	}
}

func TestLogout_WithoutStore(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("Logout without a token store should succeed: %v", err)
	}
}

func TestLogout_StoreFailure(t *testing.T) {
	store := &mockTokenStore{revoked: map[string]time.Duration{}, err: errors.New("redis down")}
	svc, _, _ := setupTestAuthService(store)
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err == nil {
		t.Error("store failure should be reported")
	}
}

// ── Me ──

func TestMe(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	u := createTestUsuario(t, m, "ana", "senha-forte-123", model.RoleOperador)

	resp, err := svc.Me(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if resp.Username != "ana" || resp.Email != "ana@buildflow.test" {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := svc.Me(context.Background(), "usr-x"); !errors.Is(err, ErrUsuarioNotFound) {
		t.Errorf("want ErrUsuarioNotFound, got %v", err)
	}
}

// ── Usuarios ──

func TestUsuarioService_Create(t *testing.T) {
	m := newMockRepos()
	svc := NewUsuarioService(m.repo, zap.NewNop())
	ctx := context.Background()

	req := &dto.CreateUsuarioRequest{
		Username: "Carlos", Password: "senha-forte-123", Nome: "Carlos",
		Email: "Carlos@BuildFlow.test", Role: model.RoleOperador,
	}
	resp, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Username != "carlos" || resp.Email != "carlos@buildflow.test" || resp.Status != model.UsuarioAtivo {
		t.Errorf("unexpected response %+v", resp)
	}
	stored := m.usuario.users[resp.ID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("senha-forte-123")) != nil {
		t.Error("password should be stored as a bcrypt hash")
	}

	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("want ErrUsernameExists, got %v", err)
	}
	req.Username = "outro"
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrEmailExists) {
		t.Errorf("want ErrEmailExists, got %v", err)
	}
}

func TestUsuarioService_UpdateStatus(t *testing.T) {
	m := newMockRepos()
	svc := NewUsuarioService(m.repo, zap.NewNop())
	master := createTestUsuario(t, m, "master", "senha-forte-123", model.RoleMaster)
	op := createTestUsuario(t, m, "operador", "senha-forte-123", model.RoleOperador)
	ctx := context.Background()

	inactive := &dto.UpdateUsuarioStatusRequest{Status: model.UsuarioInativo}
	if err := svc.UpdateStatus(ctx, master.ID, inactive, master.ID); !errors.Is(err, ErrUsuarioSelfDisable) {
		t.Errorf("want ErrUsuarioSelfDisable, got %v", err)
	}
	if err := svc.UpdateStatus(ctx, op.ID, inactive, master.ID); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if m.usuario.users[op.ID].Status != model.UsuarioInativo {
		t.Error("status not updated")
	}
	if err := svc.UpdateStatus(ctx, "usr-x", inactive, master.ID); !errors.Is(err, ErrUsuarioNotFound) {
		t.Errorf("want ErrUsuarioNotFound, got %v", err)
	}

	list, total, err := svc.List(ctx, &dto.UsuarioListRequest{Status: model.UsuarioAtivo})
	if err != nil || total != 1 || list[0].Username != "master" {
		t.Errorf("unexpected active list: %+v total=%d err=%v", list, total, err)
	}
}
