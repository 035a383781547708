package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
)

// ── usuário errors ──

var (
	ErrUsernameExists     = errors.New("nome de usuário já cadastrado")
	ErrEmailExists        = errors.New("e-mail já cadastrado")
	ErrUsuarioSelfDisable = errors.New("não é possível desativar o próprio usuário")
)

// UsuarioService account management (MASTER only).
type UsuarioService interface {
	Create(ctx context.Context, req *dto.CreateUsuarioRequest) (*dto.UsuarioResponse, error)
	List(ctx context.Context, req *dto.UsuarioListRequest) ([]dto.UsuarioResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateUsuarioStatusRequest, callerID string) error
}

type usuarioService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUsuarioService creates a UsuarioService.
func NewUsuarioService(repo *repository.Repository, logger *zap.Logger) UsuarioService {
	return &usuarioService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *usuarioService) Create(ctx context.Context, req *dto.CreateUsuarioRequest) (*dto.UsuarioResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.Usuario.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("falha ao buscar usuário", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Usuario.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("falha ao buscar usuário", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("falha ao gerar hash de senha", zap.Error(err))
		return nil, err
	}

	u := &model.Usuario{
		Username:     username,
		PasswordHash: string(hash),
		Nome:         strings.TrimSpace(req.Nome),
		Sobrenome:    strings.TrimSpace(req.Sobrenome),
		Email:        email,
		Role:         req.Role,
		Status:       model.UsuarioAtivo,
	}
	if err := s.repo.Usuario.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("falha ao criar usuário", zap.Error(err))
		return nil, err
	}

	s.logger.Info("usuário criado", zap.String("id", u.ID), zap.String("role", u.Role))
	resp := toUsuarioResponse(u)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *usuarioService) List(ctx context.Context, req *dto.UsuarioListRequest) ([]dto.UsuarioResponse, int64, error) {
	users, total, err := s.repo.Usuario.List(ctx, req.Role, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar usuários", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		list = append(list, toUsuarioResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *usuarioService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateUsuarioStatusRequest, callerID string) error {
	if id == callerID && req.Status == model.UsuarioInativo {
		return ErrUsuarioSelfDisable
	}
	if err := s.repo.Usuario.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUsuarioNotFound
		}
		s.logger.Error("falha ao atualizar status do usuário", zap.Error(err))
		return err
	}
	return nil
}
