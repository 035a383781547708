package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
	pkgerrors "github.com/natanhermes/buildflow/pkg/errors"
	"github.com/natanhermes/buildflow/pkg/progress"
)

// ── atividade errors ──

var (
	ErrAtividadeNotFound = errors.New("atividade não encontrada")
)

const maxObsLen = 500

// AtividadeService daily work-log entries and the floor progress they drive.
type AtividadeService interface {
	// Create records an activity. For EXECUCAO it locks the floor, derives
	// percent, thickness and the running cumulative, and writes floor and
	// activity in one transaction bounded by the configured timeout.
	Create(ctx context.Context, req *dto.CreateAtividadeRequest, userID string) (*dto.AtividadeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AtividadeResponse, error)
	List(ctx context.Context, req *dto.AtividadeListRequest) ([]dto.AtividadeResponse, int64, error)
	// Update edits notes, shift times, aditivos, date and workers. Status,
	// obra, floor and executed area are fixed once recorded.
	Update(ctx context.Context, id string, req *dto.UpdateAtividadeRequest) (*dto.AtividadeResponse, error)
	Delete(ctx context.Context, id string) error
}

type atividadeService struct {
	repo      *repository.Repository
	txTimeout time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewAtividadeService creates an AtividadeService.
func NewAtividadeService(repo *repository.Repository, txTimeout time.Duration, logger *zap.Logger) AtividadeService {
	return &atividadeService{
		repo:      repo,
		txTimeout: txTimeout,
		now:       time.Now,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func (s *atividadeService) Create(ctx context.Context, req *dto.CreateAtividadeRequest, userID string) (*dto.AtividadeResponse, error) {
	// 1. request rules, no reads
	data, integranteIDs, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	// 2. referenced entities, before any write or prior-saldo lookup
	pav, err := s.checkReferences(ctx, req.ObraID, req.PavimentoID, integranteIDs)
	if err != nil {
		return nil, err
	}
	if req.Status == model.StatusExecucao {
		if err := progress.Validate(*req.AreaExecutadaM2, pav.AreaM2); err != nil {
			return nil, dto.FieldError("area_executada_m2", err.Error())
		}
	}

	a := &model.Atividade{
		Status:           req.Status,
		ObraID:           req.ObraID,
		PavimentoID:      req.PavimentoID,
		UsuarioID:        userID,
		DataExecucao:     data,
		AreaExecutadaM2:  nullable(req.AreaExecutadaM2),
		AreaPreparadaM2:  nullable(req.AreaPreparadaM2),
		AditivoM3:        nullable(req.AditivoM3),
		AditivoL:         nullable(req.AditivoL),
		InicioExpediente: req.InicioExpediente,
		InicioAlmoco:     req.InicioAlmoco,
		FimAlmoco:        req.FimAlmoco,
		FimExpediente:    req.FimExpediente,
		ObsExecucao:      req.ObsExecucao,
		ObsPonto:         req.ObsPonto,
		ObsQtdBetoneira:  req.ObsQtdBetoneira,
		ObsHOI:           req.ObsHOI,
	}

	// 3. unit of work
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err = s.repo.Transaction(txCtx, func(tx *repository.Repository) error {
		return s.record(txCtx, tx, a, integranteIDs)
	})
	if err != nil {
		return nil, s.txError(ctx, txCtx, err, a)
	}

	s.logger.Info("atividade registrada",
		zap.String("id", a.ID),
		zap.String("status", a.Status),
		zap.String("pavimento_id", a.PavimentoID),
		zap.String("saldo_acumulado_m2", a.SaldoAcumuladoM2.String()),
	)

	created, err := s.repo.Atividade.GetByID(ctx, a.ID)
	if err != nil {
		s.logger.Warn("atividade criada mas não recarregada", zap.String("id", a.ID), zap.Error(err))
		resp := toAtividadeResponse(a)
		return &resp, nil
	}
	resp := toAtividadeResponse(created)
	return &resp, nil
}

// record runs inside the transaction: lock, read prior, compute, write.
func (s *atividadeService) record(ctx context.Context, tx *repository.Repository, a *model.Atividade, integranteIDs []string) error {
	pav, err := tx.Pavimento.GetForUpdate(ctx, a.PavimentoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPavimentoNotFound
		}
		return err
	}

	prior, err := tx.Atividade.LatestSaldo(ctx, pav.ID)
	if err != nil {
		return err
	}

	share := decimal.Zero
	if a.Status == model.StatusExecucao {
		executed := a.AreaExecutadaM2.Decimal
		res, err := progress.Compute(progress.Input{
			ExecutedM2:  executed,
			FloorAreaM2: pav.AreaM2,
			MortarM3:    pav.ArgamassaM3,
			PriorSaldo:  prior,
		})
		if err != nil {
			return dto.FieldError("area_executada_m2", err.Error())
		}
		a.SaldoAcumuladoM2 = res.SaldoAcumuladoM2

		dataExecucao := a.DataExecucao
		pav.AreaExecutadaM2 = decimal.NewNullDecimal(executed)
		pav.PercentualExecutado = decimal.NewNullDecimal(res.PercentualExecutado)
		pav.EspessuraCM = decimal.NewNullDecimal(res.EspessuraCM)
		pav.DataExecucao = &dataExecucao
		if err := tx.Pavimento.UpdateExecution(ctx, pav); err != nil {
			return err
		}

		if share, err = progress.ShareOf(executed, len(integranteIDs)); err != nil {
			return dto.FieldError("integrante_ids", err.Error())
		}
	} else {
		a.SaldoAcumuladoM2 = progress.CarryForward(prior)
	}

	a.Integrantes = make([]model.AtividadeIntegrante, 0, len(integranteIDs))
	for _, id := range integranteIDs {
		a.Integrantes = append(a.Integrantes, model.AtividadeIntegrante{IntegranteID: id, ProducaoM2: share})
	}
	return tx.Atividade.Create(ctx, a)
}

// txError classifies a failed unit of work. A deadline hit by the
// transaction context (and not by the caller's) becomes ErrTransactionTimeout.
func (s *atividadeService) txError(ctx, txCtx context.Context, err error, a *model.Atividade) error {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, ErrPavimentoNotFound):
		return err
	case ctx.Err() == nil && (errors.Is(txCtx.Err(), context.DeadlineExceeded) || pkgerrors.IsTimeout(err)):
		s.logger.Warn("transação de atividade excedeu o tempo limite",
			zap.String("pavimento_id", a.PavimentoID),
			zap.Duration("timeout", s.txTimeout),
			zap.Error(err),
		)
		return pkgerrors.ErrTransactionTimeout
	default:
		s.logger.Error("falha ao registrar atividade",
			zap.String("pavimento_id", a.PavimentoID),
			zap.String("status", a.Status),
			zap.Error(err),
		)
		return err
	}
}

// checkReferences loads obra, floor and workers concurrently. The floor must
// sit in a torre of the obra and every worker must exist.
func (s *atividadeService) checkReferences(ctx context.Context, obraID, pavimentoID string, integranteIDs []string) (*model.Pavimento, error) {
	var pav *model.Pavimento
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := s.repo.Obra.GetByID(gctx, obraID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrObraNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		p, err := s.repo.Pavimento.GetByID(gctx, pavimentoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPavimentoNotFound
			}
			return err
		}
		pav = p
		return nil
	})
	g.Go(func() error {
		found, err := s.repo.Integrante.GetByIDs(gctx, integranteIDs)
		if err != nil {
			return err
		}
		if len(found) != len(integranteIDs) {
			return ErrIntegranteNotFound
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrObraNotFound) && !errors.Is(err, ErrPavimentoNotFound) && !errors.Is(err, ErrIntegranteNotFound) {
			s.logger.Error("falha ao verificar referências da atividade", zap.Error(err))
		}
		return nil, err
	}
	if pav.Torre == nil || pav.Torre.ObraID != obraID {
		return nil, ErrPavimentoForaDaObra
	}
	return pav, nil
}

// ═══════════════════════════════════════════════════════════
// Validation
// ═══════════════════════════════════════════════════════════

func (s *atividadeService) validateCreate(req *dto.CreateAtividadeRequest) (time.Time, []string, error) {
	verr := dto.NewValidationError()

	isSet := func(d *decimal.Decimal) bool { return d != nil }
	switch {
	case req.Status == model.StatusExecucao:
		if req.AreaExecutadaM2 == nil || !req.AreaExecutadaM2.IsPositive() {
			verr.Add("area_executada_m2", "deve ser maior que zero")
		}
		if isSet(req.AreaPreparadaM2) {
			verr.Add("area_preparada_m2", "não se aplica a atividades de execução")
		}
	case model.IsPreparacao(req.Status):
		if req.AreaPreparadaM2 == nil || !req.AreaPreparadaM2.IsPositive() {
			verr.Add("area_preparada_m2", "deve ser maior que zero")
		}
		if isSet(req.AreaExecutadaM2) {
			verr.Add("area_executada_m2", "não se aplica a atividades de preparação")
		}
		if isSet(req.AditivoM3) {
			verr.Add("aditivo_m3", "não se aplica a atividades de preparação")
		}
		if isSet(req.AditivoL) {
			verr.Add("aditivo_l", "não se aplica a atividades de preparação")
		}
	case req.Status == model.StatusManutencao || req.Status == model.StatusSemAtividade:
		for field, v := range map[string]*decimal.Decimal{
			"area_executada_m2": req.AreaExecutadaM2,
			"area_preparada_m2": req.AreaPreparadaM2,
			"aditivo_m3":        req.AditivoM3,
			"aditivo_l":         req.AditivoL,
		} {
			if isSet(v) {
				verr.Add(field, "deve ficar vazio para este status")
			}
		}
	default:
		verr.Add("status", "status inválido")
	}

	validateAditivos(verr, req.AditivoM3, req.AditivoL)
	data := s.validateData(verr, req.DataExecucao)
	validateHorarios(verr, req.InicioExpediente, req.FimExpediente, req.InicioAlmoco, req.FimAlmoco)
	validateObs(verr, map[string]string{
		"obs_execucao":      req.ObsExecucao,
		"obs_ponto":         req.ObsPonto,
		"obs_qtd_betoneira": req.ObsQtdBetoneira,
		"obs_hoi":           req.ObsHOI,
	})

	ids := dedupe(req.IntegranteIDs)
	if len(ids) == 0 {
		verr.Add("integrante_ids", "informe ao menos um integrante")
	}

	if err := verr.OrNil(); err != nil {
		return time.Time{}, nil, err
	}
	return data, ids, nil
}

func (s *atividadeService) validateData(verr *dto.ValidationError, raw string) time.Time {
	data, err := parseDate(raw)
	if err != nil {
		verr.Add("data_execucao", "data inválida (use AAAA-MM-DD)")
		return time.Time{}
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if data.After(today) {
		verr.Add("data_execucao", "não pode ser uma data futura")
	}
	return data
}

func validateAditivos(verr *dto.ValidationError, m3, l *decimal.Decimal) {
	if m3 != nil && m3.IsNegative() {
		verr.Add("aditivo_m3", "não pode ser negativo")
	}
	if l != nil && l.IsNegative() {
		verr.Add("aditivo_l", "não pode ser negativo")
	}
}

// validateHorarios checks HH:MM format and that each interval ends after it starts.
func validateHorarios(verr *dto.ValidationError, inicioExp, fimExp, inicioAlm, fimAlm string) {
	for field, v := range map[string]string{
		"inicio_expediente": inicioExp,
		"fim_expediente":    fimExp,
		"inicio_almoco":     inicioAlm,
		"fim_almoco":        fimAlm,
	} {
		if v != "" && !dto.ValidHHMM(v) {
			verr.Add(field, "horário inválido (use HH:MM)")
		}
	}
	// zero-padded HH:MM compares correctly as text
	if inicioExp != "" && fimExp != "" && !verr.Has("inicio_expediente") && !verr.Has("fim_expediente") && inicioExp >= fimExp {
		verr.Add("fim_expediente", "deve ser posterior ao início do expediente")
	}
	if inicioAlm != "" && fimAlm != "" && !verr.Has("inicio_almoco") && !verr.Has("fim_almoco") && inicioAlm >= fimAlm {
		verr.Add("fim_almoco", "deve ser posterior ao início do almoço")
	}
}

func validateObs(verr *dto.ValidationError, fields map[string]string) {
	for field, v := range fields {
		if utf8.RuneCountInString(v) > maxObsLen {
			verr.Add(field, "máximo de 500 caracteres")
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// ═══════════════════════════════════════════════════════════
// Read
// ═══════════════════════════════════════════════════════════

func (s *atividadeService) GetByID(ctx context.Context, id string) (*dto.AtividadeResponse, error) {
	a, err := s.getAtividade(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAtividadeResponse(a)
	return &resp, nil
}

func (s *atividadeService) getAtividade(ctx context.Context, id string) (*model.Atividade, error) {
	a, err := s.repo.Atividade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAtividadeNotFound
		}
		s.logger.Error("falha ao buscar atividade", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// atividadeFilter maps list query parameters onto the repository filter.
// The date range is inclusive on both ends.
func atividadeFilter(req *dto.AtividadeListRequest) (repository.AtividadeFilter, error) {
	f := repository.AtividadeFilter{
		ObraID:       req.ObraID,
		PavimentoID:  req.PavimentoID,
		IntegranteID: req.IntegranteID,
		Status:       req.Status,
	}

	verr := dto.NewValidationError()
	if req.De != "" {
		de, err := parseDate(req.De)
		if err != nil {
			verr.Add("de", "data inválida (use AAAA-MM-DD)")
		} else {
			f.De = &de
		}
	}
	if req.Ate != "" {
		ate, err := parseDate(req.Ate)
		if err != nil {
			verr.Add("ate", "data inválida (use AAAA-MM-DD)")
		} else {
			f.Ate = &ate
		}
	}
	if f.De != nil && f.Ate != nil && f.Ate.Before(*f.De) {
		verr.Add("ate", "deve ser igual ou posterior à data inicial")
	}
	if err := verr.OrNil(); err != nil {
		return repository.AtividadeFilter{}, err
	}
	return f, nil
}

func (s *atividadeService) List(ctx context.Context, req *dto.AtividadeListRequest) ([]dto.AtividadeResponse, int64, error) {
	filter, err := atividadeFilter(req)
	if err != nil {
		return nil, 0, err
	}
	atividades, total, err := s.repo.Atividade.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("falha ao listar atividades", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.AtividadeResponse, 0, len(atividades))
	for i := range atividades {
		list = append(list, toAtividadeResponse(&atividades[i]))
	}
	return list, total, nil
}

// ═══════════════════════════════════════════════════════════
// Update / Delete
// ═══════════════════════════════════════════════════════════

func (s *atividadeService) Update(ctx context.Context, id string, req *dto.UpdateAtividadeRequest) (*dto.AtividadeResponse, error) {
	a, err := s.getAtividade(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := dto.NewValidationError()
	if req.DataExecucao != nil {
		a.DataExecucao = s.validateData(verr, *req.DataExecucao)
	}
	if req.AditivoM3 != nil || req.AditivoL != nil {
		if a.Status != model.StatusExecucao {
			verr.Add("aditivo_m3", "aditivos só se aplicam a atividades de execução")
		}
		validateAditivos(verr, req.AditivoM3, req.AditivoL)
		if req.AditivoM3 != nil {
			a.AditivoM3 = nullable(req.AditivoM3)
		}
		if req.AditivoL != nil {
			a.AditivoL = nullable(req.AditivoL)
		}
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&a.InicioExpediente, req.InicioExpediente)
	assign(&a.FimExpediente, req.FimExpediente)
	assign(&a.InicioAlmoco, req.InicioAlmoco)
	assign(&a.FimAlmoco, req.FimAlmoco)
	assign(&a.ObsExecucao, req.ObsExecucao)
	assign(&a.ObsPonto, req.ObsPonto)
	assign(&a.ObsQtdBetoneira, req.ObsQtdBetoneira)
	assign(&a.ObsHOI, req.ObsHOI)
	validateHorarios(verr, a.InicioExpediente, a.FimExpediente, a.InicioAlmoco, a.FimAlmoco)
	validateObs(verr, map[string]string{
		"obs_execucao":      a.ObsExecucao,
		"obs_ponto":         a.ObsPonto,
		"obs_qtd_betoneira": a.ObsQtdBetoneira,
		"obs_hoi":           a.ObsHOI,
	})

	var rows []model.AtividadeIntegrante
	if req.IntegranteIDs != nil {
		ids := dedupe(req.IntegranteIDs)
		if len(ids) == 0 {
			verr.Add("integrante_ids", "informe ao menos um integrante")
		} else {
			rows, err = s.joinRows(ctx, a, ids)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Atividade.Update(ctx, a); err != nil {
			return err
		}
		if rows != nil {
			return tx.Atividade.ReplaceIntegrantes(ctx, a.ID, rows)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAtividadeNotFound
		}
		s.logger.Error("falha ao atualizar atividade", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// joinRows checks the workers exist and splits the executed area among them.
func (s *atividadeService) joinRows(ctx context.Context, a *model.Atividade, ids []string) ([]model.AtividadeIntegrante, error) {
	found, err := s.repo.Integrante.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("falha ao buscar integrantes", zap.Error(err))
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, ErrIntegranteNotFound
	}

	share := decimal.Zero
	if a.Status == model.StatusExecucao && a.AreaExecutadaM2.Valid {
		if share, err = progress.ShareOf(a.AreaExecutadaM2.Decimal, len(ids)); err != nil {
			return nil, dto.FieldError("integrante_ids", err.Error())
		}
	}
	rows := make([]model.AtividadeIntegrante, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.AtividadeIntegrante{AtividadeID: a.ID, IntegranteID: id, ProducaoM2: share})
	}
	return rows, nil
}

func (s *atividadeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Atividade.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAtividadeNotFound
		}
		s.logger.Error("falha ao excluir atividade", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("atividade excluída", zap.String("id", id))
	return nil
}
