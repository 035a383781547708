package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
)

// ── integrante errors ──

var (
	ErrIntegranteNotFound = errors.New("integrante não encontrado")
	ErrCPFExists          = errors.New("CPF já cadastrado")
	ErrImportNoData       = errors.New("a planilha não contém linhas de dados")
	ErrImportBadHeader    = errors.New("cabeçalho inválido: são necessárias as colunas nome e cpf")
	ErrImportTooManyRows  = errors.New("a planilha excede o limite de linhas")
	ErrImportFileInvalid  = errors.New("arquivo .xlsx inválido")
)

const (
	maxImportRows         = 1000
	atividadesRecentesQtd = 10
)

// ImportIntegranteRow one parsed spreadsheet row.
type ImportIntegranteRow struct {
	Row      int
	Nome     string
	CPF      string
	EquipeID string
}

// IntegranteService workers.
type IntegranteService interface {
	Create(ctx context.Context, req *dto.CreateIntegranteRequest) (*dto.IntegranteResponse, error)
	GetByID(ctx context.Context, id string) (*dto.IntegranteDetailResponse, error)
	List(ctx context.Context, req *dto.IntegranteListRequest) ([]dto.IntegranteResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateIntegranteRequest) (*dto.IntegranteResponse, error)
	Delete(ctx context.Context, id string) error
	CPFExists(ctx context.Context, cpf string) (bool, error)
	ListAtividades(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.AtividadeResponse, int64, error)
	ParseImportFile(reader io.Reader) ([]ImportIntegranteRow, error)
	// Import validates every row first and then inserts the valid ones in a
	// single transaction.
	Import(ctx context.Context, rows []ImportIntegranteRow) (*dto.ImportResponse, error)
}

type integranteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewIntegranteService creates an IntegranteService.
func NewIntegranteService(repo *repository.Repository, logger *zap.Logger) IntegranteService {
	return &integranteService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *integranteService) Create(ctx context.Context, req *dto.CreateIntegranteRequest) (*dto.IntegranteResponse, error) {
	cpf := dto.NormalizeCPF(req.CPF)
	if !dto.ValidCPF(cpf) {
		return nil, dto.FieldError("cpf", "CPF inválido")
	}
	if err := s.checkCPFDisponivel(ctx, cpf, ""); err != nil {
		return nil, err
	}

	integ := &model.Integrante{Nome: strings.TrimSpace(req.Nome), CPF: cpf}
	if req.EquipeID != nil && *req.EquipeID != "" {
		if _, err := s.repo.Equipe.GetByID(ctx, *req.EquipeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEquipeNotFound
			}
			s.logger.Error("falha ao buscar equipe", zap.Error(err))
			return nil, err
		}
		integ.EquipeID = req.EquipeID
	}

	if err := s.repo.Integrante.Create(ctx, integ); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCPFExists
		}
		s.logger.Error("falha ao criar integrante", zap.Error(err))
		return nil, err
	}
	resp := toIntegranteResponse(integ)
	return &resp, nil
}

func (s *integranteService) checkCPFDisponivel(ctx context.Context, cpf, selfID string) error {
	existing, err := s.repo.Integrante.GetByCPF(ctx, cpf)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("falha ao verificar CPF", zap.Error(err))
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrCPFExists
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *integranteService) getIntegrante(ctx context.Context, id string) (*model.Integrante, error) {
	integ, err := s.repo.Integrante.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntegranteNotFound
		}
		s.logger.Error("falha ao buscar integrante", zap.Error(err))
		return nil, err
	}
	return integ, nil
}

func (s *integranteService) GetByID(ctx context.Context, id string) (*dto.IntegranteDetailResponse, error) {
	integ, err := s.getIntegrante(ctx, id)
	if err != nil {
		return nil, err
	}
	atividades, _, err := s.repo.Atividade.List(ctx, repository.AtividadeFilter{IntegranteID: id}, 0, atividadesRecentesQtd)
	if err != nil {
		s.logger.Error("falha ao listar atividades do integrante", zap.Error(err))
		return nil, err
	}

	resp := &dto.IntegranteDetailResponse{
		IntegranteResponse: toIntegranteResponse(integ),
		AtividadesRecentes: make([]dto.AtividadeResponse, 0, len(atividades)),
	}
	for i := range atividades {
		resp.AtividadesRecentes = append(resp.AtividadesRecentes, toAtividadeResponse(&atividades[i]))
	}
	return resp, nil
}

func (s *integranteService) List(ctx context.Context, req *dto.IntegranteListRequest) ([]dto.IntegranteResponse, int64, error) {
	filter := repository.IntegranteFilter{
		EquipeID:  req.EquipeID,
		SemEquipe: req.SemEquipe,
		Search:    strings.TrimSpace(req.Search),
	}
	integs, total, err := s.repo.Integrante.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar integrantes", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.IntegranteResponse, 0, len(integs))
	for i := range integs {
		list = append(list, toIntegranteResponse(&integs[i]))
	}
	return list, total, nil
}

func (s *integranteService) CPFExists(ctx context.Context, cpf string) (bool, error) {
	cpf = dto.NormalizeCPF(cpf)
	if !dto.ValidCPF(cpf) {
		return false, dto.FieldError("cpf", "CPF inválido")
	}
	_, err := s.repo.Integrante.GetByCPF(ctx, cpf)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	s.logger.Error("falha ao verificar CPF", zap.Error(err))
	return false, err
}

func (s *integranteService) ListAtividades(ctx context.Context, id string, page *dto.PaginationRequest) ([]dto.AtividadeResponse, int64, error) {
	if _, err := s.getIntegrante(ctx, id); err != nil {
		return nil, 0, err
	}
	atividades, total, err := s.repo.Atividade.List(ctx, repository.AtividadeFilter{IntegranteID: id}, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar atividades do integrante", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.AtividadeResponse, 0, len(atividades))
	for i := range atividades {
		list = append(list, toAtividadeResponse(&atividades[i]))
	}
	return list, total, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *integranteService) Update(ctx context.Context, id string, req *dto.UpdateIntegranteRequest) (*dto.IntegranteResponse, error) {
	integ, err := s.getIntegrante(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nome != nil {
		integ.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.CPF != nil {
		cpf := dto.NormalizeCPF(*req.CPF)
		if !dto.ValidCPF(cpf) {
			return nil, dto.FieldError("cpf", "CPF inválido")
		}
		if err := s.checkCPFDisponivel(ctx, cpf, integ.ID); err != nil {
			return nil, err
		}
		integ.CPF = cpf
	}

	if err := s.repo.Integrante.Update(ctx, integ); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCPFExists
		}
		s.logger.Error("falha ao atualizar integrante", zap.Error(err))
		return nil, err
	}
	resp := toIntegranteResponse(integ)
	return &resp, nil
}

func (s *integranteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Integrante.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIntegranteNotFound
		}
		s.logger.Error("falha ao excluir integrante", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile reads the first sheet. The header row must name the nome
// and cpf columns in any order; equipe_id is optional.
func (s *integranteService) ParseImportFile(reader io.Reader) ([]ImportIntegranteRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileInvalid, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileInvalid, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := importHeaderIndex(excelRows[0])
	if col["nome"] < 0 || col["cpf"] < 0 {
		return nil, ErrImportBadHeader
	}

	cellAt := func(row []string, key string) string {
		if idx := col[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportIntegranteRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportIntegranteRow{
			Row:      i + 1,
			Nome:     cellAt(excelRows[i], "nome"),
			CPF:      cellAt(excelRows[i], "cpf"),
			EquipeID: cellAt(excelRows[i], "equipe_id"),
		}
		if item.Nome == "" && item.CPF == "" && item.EquipeID == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func importHeaderIndex(header []string) map[string]int {
	idx := map[string]int{"nome": -1, "cpf": -1, "equipe_id": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nome", "name":
			idx["nome"] = i
		case "cpf":
			idx["cpf"] = i
		case "equipe_id", "equipe":
			idx["equipe_id"] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

func (s *integranteService) Import(ctx context.Context, rows []ImportIntegranteRow) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{Total: len(rows)}
	reject := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportError{Row: row, Reason: reason})
	}

	// phase 1: validation only, no writes
	cpfs := make([]string, 0, len(rows))
	for i := range rows {
		rows[i].CPF = dto.NormalizeCPF(rows[i].CPF)
		cpfs = append(cpfs, rows[i].CPF)
	}
	existing, err := s.repo.Integrante.ExistingCPFs(ctx, cpfs)
	if err != nil {
		s.logger.Error("falha ao verificar CPFs", zap.Error(err))
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c] = true
	}
	equipeOK := make(map[string]bool)

	var valid []model.Integrante
	for _, row := range rows {
		switch {
		case row.Nome == "" || row.CPF == "":
			reject(row.Row, "nome e CPF são obrigatórios")
			continue
		case len([]rune(row.Nome)) > 100 || !dto.ValidNome(row.Nome):
			reject(row.Row, "nome inválido")
			continue
		case !dto.ValidCPF(row.CPF):
			reject(row.Row, "CPF inválido: "+row.CPF)
			continue
		case taken[row.CPF]:
			reject(row.Row, "CPF já cadastrado: "+row.CPF)
			continue
		}

		integ := model.Integrante{Nome: row.Nome, CPF: row.CPF}
		if row.EquipeID != "" {
			ok, seen := equipeOK[row.EquipeID]
			if !seen {
				_, err := s.repo.Equipe.GetByID(ctx, row.EquipeID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Error("falha ao buscar equipe", zap.Error(err))
					return nil, err
				}
				ok = err == nil
				equipeOK[row.EquipeID] = ok
			}
			if !ok {
				reject(row.Row, "equipe não encontrada: "+row.EquipeID)
				continue
			}
			equipeID := row.EquipeID
			integ.EquipeID = &equipeID
		}

		// duplicates inside the same file keep the first occurrence
		taken[row.CPF] = true
		valid = append(valid, integ)
	}

	// phase 2: all valid rows in one transaction
	if len(valid) > 0 {
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return tx.Integrante.CreateBatch(ctx, valid)
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrCPFExists
			}
			s.logger.Error("falha ao importar integrantes", zap.Error(err))
			return nil, err
		}
	}
	resp.Success = len(valid)

	s.logger.Info("importação de integrantes concluída",
		zap.Int("total", resp.Total),
		zap.Int("sucesso", resp.Success),
		zap.Int("falhas", resp.Failed),
	)
	return resp, nil
}
