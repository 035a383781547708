package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/repository"
)

// TotalsService keeps the denormalized obra totals in line with floor progress.
type TotalsService interface {
	// RecalculateObra sets totalExecutado = Σ pavimento.areaExecutadaM2 and
	// totalPendente = totalGeral - totalExecutado.
	RecalculateObra(ctx context.Context, obraID string) (*dto.ObraTotalsResponse, error)
	// RecalculateAll refreshes every obra; failures are logged and skipped.
	RecalculateAll(ctx context.Context) (int, error)
}

type totalsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTotalsService creates a TotalsService.
func NewTotalsService(repo *repository.Repository, logger *zap.Logger) TotalsService {
	return &totalsService{repo: repo, logger: logger}
}

func (s *totalsService) RecalculateObra(ctx context.Context, obraID string) (*dto.ObraTotalsResponse, error) {
	obra, err := s.repo.Obra.GetByID(ctx, obraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return nil, err
	}

	executado, err := s.repo.Pavimento.SumExecutadoByObra(ctx, obraID)
	if err != nil {
		s.logger.Error("falha ao somar área executada", zap.String("obra_id", obraID), zap.Error(err))
		return nil, err
	}
	pendente := obra.TotalGeral.Sub(executado)
	if pendente.IsNegative() {
		pendente = decimal.Zero
	}

	if err := s.repo.Obra.UpdateTotals(ctx, obraID, executado, pendente); err != nil {
		s.logger.Error("falha ao atualizar totais", zap.String("obra_id", obraID), zap.Error(err))
		return nil, err
	}

	return &dto.ObraTotalsResponse{
		ObraID:         obraID,
		TotalGeral:     obra.TotalGeral,
		TotalExecutado: executado,
		TotalPendente:  pendente,
	}, nil
}

func (s *totalsService) RecalculateAll(ctx context.Context) (int, error) {
	ids, err := s.repo.Obra.ListIDs(ctx)
	if err != nil {
		s.logger.Error("falha ao listar obras", zap.Error(err))
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := s.RecalculateObra(ctx, id); err != nil {
			s.logger.Warn("totais não recalculados", zap.String("obra_id", id), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}
