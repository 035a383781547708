package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
)

// AtividadeFilter narrows activity listings. Zero values are ignored.
type AtividadeFilter struct {
	ObraID       string
	PavimentoID  string
	IntegranteID string
	Status       string
	De           *time.Time
	Ate          *time.Time
}

// AditivoTotals sums of additive consumption.
type AditivoTotals struct {
	TotalM3 decimal.Decimal
	TotalL  decimal.Decimal
}

// AtividadeRepository daily work-log entries.
type AtividadeRepository interface {
	// Create inserts the activity and its integrante join rows.
	Create(ctx context.Context, a *model.Atividade) error
	GetByID(ctx context.Context, id string) (*model.Atividade, error)
	List(ctx context.Context, f AtividadeFilter, offset, limit int) ([]model.Atividade, int64, error)
	ListAll(ctx context.Context, f AtividadeFilter) ([]model.Atividade, error)
	// LatestSaldo returns the cumulative of the most recent activity on the
	// floor, or zero when the floor has none.
	LatestSaldo(ctx context.Context, pavimentoID string) (decimal.Decimal, error)
	Update(ctx context.Context, a *model.Atividade) error
	ReplaceIntegrantes(ctx context.Context, atividadeID string, rows []model.AtividadeIntegrante) error
	Delete(ctx context.Context, id string) error
	SumAditivos(ctx context.Context) (*AditivoTotals, error)
	Count(ctx context.Context) (int64, error)
}

type atividadeRepo struct {
	db *gorm.DB
}

// NewAtividadeRepo creates the GORM implementation.
func NewAtividadeRepo(db *gorm.DB) AtividadeRepository {
	return &atividadeRepo{db: db}
}

func (r *atividadeRepo) Create(ctx context.Context, a *model.Atividade) error {
	return r.db.WithContext(ctx).
		Omit("Obra", "Pavimento", "Usuario", "Integrantes.Integrante").
		Create(a).Error
}

func (r *atividadeRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Obra", func(db *gorm.DB) *gorm.DB { return db.Select("id", "nome", "cei") }).
		Preload("Pavimento").
		Preload("Pavimento.Torre").
		Preload("Usuario").
		Preload("Integrantes.Integrante")
}

func (r *atividadeRepo) GetByID(ctx context.Context, id string) (*model.Atividade, error) {
	var a model.Atividade
	if err := r.preloaded(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *atividadeRepo) filtered(db *gorm.DB, f AtividadeFilter) *gorm.DB {
	if f.ObraID != "" {
		db = db.Where("atividades.obra_id = ?", f.ObraID)
	}
	if f.PavimentoID != "" {
		db = db.Where("atividades.pavimento_id = ?", f.PavimentoID)
	}
	if f.Status != "" {
		db = db.Where("atividades.status = ?", f.Status)
	}
	if f.IntegranteID != "" {
		db = db.Where("EXISTS (SELECT 1 FROM atividade_integrantes ai WHERE ai.atividade_id = atividades.id AND ai.integrante_id = ?)", f.IntegranteID)
	}
	if f.De != nil {
		db = db.Where("atividades.data_execucao >= ?", f.De.Format("2006-01-02"))
	}
	if f.Ate != nil {
		db = db.Where("atividades.data_execucao <= ?", f.Ate.Format("2006-01-02"))
	}
	return db
}

func (r *atividadeRepo) List(ctx context.Context, f AtividadeFilter, offset, limit int) ([]model.Atividade, int64, error) {
	var list []model.Atividade
	var total int64

	if err := r.filtered(r.db.WithContext(ctx).Model(&model.Atividade{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.filtered(r.preloaded(ctx), f).
		Offset(offset).Limit(limit).
		Order("atividades.data_execucao DESC, atividades.created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *atividadeRepo) ListAll(ctx context.Context, f AtividadeFilter) ([]model.Atividade, error) {
	var list []model.Atividade
	err := r.filtered(r.preloaded(ctx), f).
		Order("atividades.data_execucao ASC, atividades.created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *atividadeRepo) LatestSaldo(ctx context.Context, pavimentoID string) (decimal.Decimal, error) {
	var a model.Atividade
	err := r.db.WithContext(ctx).
		Select("saldo_acumulado_m2").
		Where("pavimento_id = ?", pavimentoID).
		Order("created_at DESC, id DESC").
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return a.SaldoAcumuladoM2, nil
}

func (r *atividadeRepo) Update(ctx context.Context, a *model.Atividade) error {
	res := r.db.WithContext(ctx).Model(&model.Atividade{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"data_execucao":     a.DataExecucao,
			"aditivo_m3":        a.AditivoM3,
			"aditivo_l":         a.AditivoL,
			"inicio_expediente": a.InicioExpediente,
			"inicio_almoco":     a.InicioAlmoco,
			"fim_almoco":        a.FimAlmoco,
			"fim_expediente":    a.FimExpediente,
			"obs_execucao":      a.ObsExecucao,
			"obs_ponto":         a.ObsPonto,
			"obs_qtd_betoneira": a.ObsQtdBetoneira,
			"obs_hoi":           a.ObsHOI,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *atividadeRepo) ReplaceIntegrantes(ctx context.Context, atividadeID string, rows []model.AtividadeIntegrante) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("atividade_id = ?", atividadeID).Delete(&model.AtividadeIntegrante{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Omit("Integrante").Create(&rows).Error
}

func (r *atividadeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Atividade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *atividadeRepo) SumAditivos(ctx context.Context) (*AditivoTotals, error) {
	var row struct {
		TotalM3 decimal.Decimal
		TotalL  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Atividade{}).
		Select("COALESCE(SUM(aditivo_m3), 0) AS total_m3, COALESCE(SUM(aditivo_l), 0) AS total_l").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &AditivoTotals{TotalM3: row.TotalM3, TotalL: row.TotalL}, nil
}

func (r *atividadeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Atividade{}).Count(&n).Error
	return n, err
}
