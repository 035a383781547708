package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
)

// ── equipe errors ──

var (
	ErrEquipeNotFound         = errors.New("equipe não encontrada")
	ErrEquipeNomeExists       = errors.New("já existe uma equipe com este nome na obra")
	ErrIntegranteJaNaEquipe   = errors.New("integrante já pertence a esta equipe")
	ErrIntegranteForaDaEquipe = errors.New("integrante não pertence a esta equipe")
	ErrMesmaEquipe            = errors.New("equipe de destino é a equipe atual")
)

// EquipeService crews and their membership.
type EquipeService interface {
	Create(ctx context.Context, req *dto.CreateEquipeRequest) (*dto.EquipeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EquipeResponse, error)
	List(ctx context.Context, req *dto.EquipeListRequest) ([]dto.EquipeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEquipeRequest) (*dto.EquipeResponse, error)
	Delete(ctx context.Context, id string) error
	AddIntegrante(ctx context.Context, equipeID, integranteID string) (*dto.EquipeResponse, error)
	// MoveIntegrante moves a worker from equipeID to the destination crew.
	MoveIntegrante(ctx context.Context, equipeID string, req *dto.MoveIntegranteRequest) (*dto.EquipeResponse, error)
	RemoveIntegrante(ctx context.Context, equipeID, integranteID string) (*dto.EquipeResponse, error)
}

type equipeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEquipeService creates an EquipeService.
func NewEquipeService(repo *repository.Repository, logger *zap.Logger) EquipeService {
	return &equipeService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *equipeService) Create(ctx context.Context, req *dto.CreateEquipeRequest) (*dto.EquipeResponse, error) {
	if _, err := s.repo.Obra.GetByID(ctx, req.ObraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return nil, err
	}

	nome := strings.TrimSpace(req.Nome)
	if err := s.checkNomeDisponivel(ctx, req.ObraID, nome, ""); err != nil {
		return nil, err
	}

	e := &model.Equipe{Nome: nome, ObraID: req.ObraID}
	if err := s.repo.Equipe.Create(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEquipeNomeExists
		}
		s.logger.Error("falha ao criar equipe", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, e.ID)
}

func (s *equipeService) checkNomeDisponivel(ctx context.Context, obraID, nome, selfID string) error {
	existing, err := s.repo.Equipe.GetByNome(ctx, obraID, nome)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("falha ao buscar equipe", zap.Error(err))
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrEquipeNomeExists
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *equipeService) GetByID(ctx context.Context, id string) (*dto.EquipeResponse, error) {
	e, err := s.getEquipe(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEquipeResponse(e), nil
}

func (s *equipeService) getEquipe(ctx context.Context, id string) (*model.Equipe, error) {
	e, err := s.repo.Equipe.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipeNotFound
		}
		s.logger.Error("falha ao buscar equipe", zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (s *equipeService) List(ctx context.Context, req *dto.EquipeListRequest) ([]dto.EquipeResponse, int64, error) {
	equipes, total, err := s.repo.Equipe.List(ctx, req.ObraID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar equipes", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.EquipeResponse, 0, len(equipes))
	for i := range equipes {
		list = append(list, *toEquipeResponse(&equipes[i]))
	}
	return list, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *equipeService) Update(ctx context.Context, id string, req *dto.UpdateEquipeRequest) (*dto.EquipeResponse, error) {
	e, err := s.getEquipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nome != nil {
		nome := strings.TrimSpace(*req.Nome)
		if err := s.checkNomeDisponivel(ctx, e.ObraID, nome, e.ID); err != nil {
			return nil, err
		}
		e.Nome = nome
	}
	if err := s.repo.Equipe.Update(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEquipeNomeExists
		}
		s.logger.Error("falha ao atualizar equipe", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *equipeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Equipe.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipeNotFound
		}
		s.logger.Error("falha ao excluir equipe", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Membership ──────────────────────

func (s *equipeService) getIntegrante(ctx context.Context, id string) (*model.Integrante, error) {
	i, err := s.repo.Integrante.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntegranteNotFound
		}
		s.logger.Error("falha ao buscar integrante", zap.Error(err))
		return nil, err
	}
	return i, nil
}

func (s *equipeService) AddIntegrante(ctx context.Context, equipeID, integranteID string) (*dto.EquipeResponse, error) {
	e, err := s.getEquipe(ctx, equipeID)
	if err != nil {
		return nil, err
	}
	integ, err := s.getIntegrante(ctx, integranteID)
	if err != nil {
		return nil, err
	}
	if integ.EquipeID != nil && *integ.EquipeID == e.ID {
		return nil, ErrIntegranteJaNaEquipe
	}

	if err := s.repo.Integrante.SetEquipe(ctx, integ.ID, &e.ID); err != nil {
		s.logger.Error("falha ao vincular integrante", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, e.ID)
}

func (s *equipeService) MoveIntegrante(ctx context.Context, equipeID string, req *dto.MoveIntegranteRequest) (*dto.EquipeResponse, error) {
	if equipeID == req.DestinoEquipeID {
		return nil, ErrMesmaEquipe
	}
	if _, err := s.getEquipe(ctx, equipeID); err != nil {
		return nil, err
	}
	destino, err := s.getEquipe(ctx, req.DestinoEquipeID)
	if err != nil {
		return nil, err
	}
	integ, err := s.getIntegrante(ctx, req.IntegranteID)
	if err != nil {
		return nil, err
	}
	if integ.EquipeID == nil || *integ.EquipeID != equipeID {
		return nil, ErrIntegranteForaDaEquipe
	}

	if err := s.repo.Integrante.SetEquipe(ctx, integ.ID, &destino.ID); err != nil {
		s.logger.Error("falha ao mover integrante", zap.Error(err))
		return nil, err
	}
	s.logger.Info("integrante movido",
		zap.String("integrante_id", integ.ID),
		zap.String("origem", equipeID),
		zap.String("destino", destino.ID),
	)
	return s.GetByID(ctx, destino.ID)
}

func (s *equipeService) RemoveIntegrante(ctx context.Context, equipeID, integranteID string) (*dto.EquipeResponse, error) {
	if _, err := s.getEquipe(ctx, equipeID); err != nil {
		return nil, err
	}
	integ, err := s.getIntegrante(ctx, integranteID)
	if err != nil {
		return nil, err
	}
	if integ.EquipeID == nil || *integ.EquipeID != equipeID {
		return nil, ErrIntegranteForaDaEquipe
	}

	if err := s.repo.Integrante.SetEquipe(ctx, integ.ID, nil); err != nil {
		s.logger.Error("falha ao desvincular integrante", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, equipeID)
}
