package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
	"github.com/natanhermes/buildflow/pkg/cep"
)

// ── obra errors ──

var (
	ErrObraNotFound = errors.New("obra não encontrada")
	ErrCEIExists    = errors.New("CEI já cadastrado")
)

// ObraService construction sites.
type ObraService interface {
	Create(ctx context.Context, req *dto.CreateObraRequest, callerID string) (*dto.ObraDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ObraDetailResponse, error)
	List(ctx context.Context, req *dto.ObraListRequest) ([]dto.ObraResponse, int64, error)
	Options(ctx context.Context) ([]dto.ObraOption, error)
	CEIExists(ctx context.Context, cei string) (bool, error)
	ListPavimentos(ctx context.Context, obraID string) ([]dto.PavimentoResponse, error)
	Delete(ctx context.Context, id string) error
}

type obraService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewObraService creates an ObraService.
func NewObraService(repo *repository.Repository, logger *zap.Logger) ObraService {
	return &obraService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *obraService) Create(ctx context.Context, req *dto.CreateObraRequest, callerID string) (*dto.ObraDetailResponse, error) {
	obra, err := buildObra(req)
	if err != nil {
		return nil, err
	}
	if callerID != "" {
		obra.CriadoPorID = &callerID
	}

	if _, err := s.repo.Obra.GetByCEI(ctx, obra.CEI); err == nil {
		return nil, ErrCEIExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("falha ao verificar CEI", zap.Error(err))
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Obra.Create(ctx, obra)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCEIExists
		}
		s.logger.Error("falha ao criar obra", zap.Error(err))
		return nil, err
	}

	s.logger.Info("obra criada",
		zap.String("id", obra.ID),
		zap.String("cei", obra.CEI),
		zap.Int("torres", len(obra.Torres)),
		zap.String("total_geral", obra.TotalGeral.String()),
	)
	return toObraDetailResponse(obra), nil
}

// buildObra validates the nested payload and assembles the aggregate with its
// initial totals: totalGeral = Σ areaM2, nothing executed yet.
func buildObra(req *dto.CreateObraRequest) (*model.Obra, error) {
	verr := dto.NewValidationError()

	if !req.ValorM2.IsPositive() {
		verr.Add("valor_m2", "deve ser maior que zero")
	}
	inicio, errInicio := parseDate(req.DataInicio)
	fim, errFim := parseDate(req.DataFim)
	if errInicio != nil {
		verr.Add("data_inicio", "data inválida")
	}
	if errFim != nil {
		verr.Add("data_fim", "data inválida")
	}
	if errInicio == nil && errFim == nil && !inicio.Before(fim) {
		verr.Add("data_fim", "deve ser posterior à data de início")
	}
	cepCode, err := cep.Normalize(req.Endereco.CEP)
	if err != nil {
		verr.Add("endereco.cep", err.Error())
	}
	if len(req.Torres) == 0 {
		verr.Add("torres", "informe ao menos uma torre")
	}

	total := decimal.Zero
	torres := make([]model.Torre, 0, len(req.Torres))
	for i, t := range req.Torres {
		if len(t.Pavimentos) == 0 {
			verr.Add(fmt.Sprintf("torres[%d].pavimentos", i), "informe ao menos um pavimento")
		}
		torre := model.Torre{Nome: strings.TrimSpace(t.Nome), Pavimentos: make([]model.Pavimento, 0, len(t.Pavimentos))}
		for j, p := range t.Pavimentos {
			field := fmt.Sprintf("torres[%d].pavimentos[%d]", i, j)
			if !p.AreaM2.IsPositive() {
				verr.Add(field+".area_m2", "deve ser maior que zero")
			}
			if !p.ArgamassaM3.IsPositive() {
				verr.Add(field+".argamassa_m3", "deve ser maior que zero")
			}
			total = total.Add(p.AreaM2)
			torre.Pavimentos = append(torre.Pavimentos, model.Pavimento{
				Identificador: strings.TrimSpace(p.Identificador),
				AreaM2:        p.AreaM2,
				ArgamassaM3:   p.ArgamassaM3,
				Obs:           p.Obs,
			})
		}
		torres = append(torres, torre)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	contatos := make([]model.Contato, 0, len(req.Contatos))
	for _, c := range req.Contatos {
		contatos = append(contatos, model.Contato{Nome: c.Nome, Funcao: c.Funcao, Email: c.Email, Telefone: c.Telefone})
	}

	return &model.Obra{
		Nome:           strings.TrimSpace(req.Nome),
		CEI:            req.CEI,
		Construtora:    strings.TrimSpace(req.Construtora),
		ValorM2:        req.ValorM2,
		DataInicio:     inicio,
		DataFim:        fim,
		TotalGeral:     total,
		TotalExecutado: decimal.Zero,
		TotalPendente:  total,
		Contatos:       datatypes.NewJSONSlice(contatos),
		Endereco: &model.Endereco{
			CEP:         cepCode[:5] + "-" + cepCode[5:],
			Logradouro:  req.Endereco.Logradouro,
			Numero:      req.Endereco.Numero,
			Complemento: req.Endereco.Complemento,
			Bairro:      req.Endereco.Bairro,
			Cidade:      req.Endereco.Cidade,
			Estado:      strings.ToUpper(req.Endereco.Estado),
		},
		Torres: torres,
	}, nil
}

// ────────────────────── Read ──────────────────────

func (s *obraService) GetByID(ctx context.Context, id string) (*dto.ObraDetailResponse, error) {
	obra, err := s.repo.Obra.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return nil, err
	}
	return toObraDetailResponse(obra), nil
}

func (s *obraService) List(ctx context.Context, req *dto.ObraListRequest) ([]dto.ObraResponse, int64, error) {
	obras, total, err := s.repo.Obra.List(ctx, strings.TrimSpace(req.Search), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar obras", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.ObraResponse, 0, len(obras))
	for i := range obras {
		list = append(list, toObraResponse(&obras[i]))
	}
	return list, total, nil
}

func (s *obraService) Options(ctx context.Context) ([]dto.ObraOption, error) {
	obras, err := s.repo.Obra.ListOptions(ctx)
	if err != nil {
		s.logger.Error("falha ao listar obras", zap.Error(err))
		return nil, err
	}
	opts := make([]dto.ObraOption, 0, len(obras))
	for _, o := range obras {
		opts = append(opts, dto.ObraOption{ID: o.ID, Nome: o.Nome, CEI: o.CEI})
	}
	return opts, nil
}

func (s *obraService) CEIExists(ctx context.Context, cei string) (bool, error) {
	_, err := s.repo.Obra.GetByCEI(ctx, cei)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	s.logger.Error("falha ao verificar CEI", zap.Error(err))
	return false, err
}

func (s *obraService) ListPavimentos(ctx context.Context, obraID string) ([]dto.PavimentoResponse, error) {
	if _, err := s.repo.Obra.GetByID(ctx, obraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return nil, err
	}
	pavs, err := s.repo.Pavimento.ListByObra(ctx, obraID)
	if err != nil {
		s.logger.Error("falha ao listar pavimentos", zap.Error(err))
		return nil, err
	}
	list := make([]dto.PavimentoResponse, 0, len(pavs))
	for i := range pavs {
		list = append(list, toPavimentoResponse(&pavs[i]))
	}
	return list, nil
}

// ────────────────────── Delete ──────────────────────

func (s *obraService) Delete(ctx context.Context, id string) error {
	obra, err := s.repo.Obra.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return err
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Obra.Delete(ctx, obra)
	})
	if err != nil {
		s.logger.Error("falha ao excluir obra", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("obra excluída", zap.String("id", id))
	return nil
}
