package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/natanhermes/buildflow/internal/model"
)

// ExecutionStats aggregate over floors that were executed at least once.
type ExecutionStats struct {
	TotalExecutadoM2 decimal.Decimal
	MediaPercentual  decimal.Decimal
}

// PavimentoRepository floors.
type PavimentoRepository interface {
	GetByID(ctx context.Context, id string) (*model.Pavimento, error)
	// GetForUpdate reads the row with SELECT ... FOR UPDATE. Must run inside a
	// transaction; concurrent executions on the same floor queue behind it.
	GetForUpdate(ctx context.Context, id string) (*model.Pavimento, error)
	UpdateExecution(ctx context.Context, p *model.Pavimento) error
	ListByObra(ctx context.Context, obraID string) ([]model.Pavimento, error)
	SumExecutadoByObra(ctx context.Context, obraID string) (decimal.Decimal, error)
	Stats(ctx context.Context) (*ExecutionStats, error)
}

type pavimentoRepo struct {
	db *gorm.DB
}

// NewPavimentoRepo creates the GORM implementation.
func NewPavimentoRepo(db *gorm.DB) PavimentoRepository {
	return &pavimentoRepo{db: db}
}

func (r *pavimentoRepo) GetByID(ctx context.Context, id string) (*model.Pavimento, error) {
	var p model.Pavimento
	if err := r.db.WithContext(ctx).Preload("Torre").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pavimentoRepo) GetForUpdate(ctx context.Context, id string) (*model.Pavimento, error) {
	var p model.Pavimento
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pavimentoRepo) UpdateExecution(ctx context.Context, p *model.Pavimento) error {
	res := r.db.WithContext(ctx).Model(&model.Pavimento{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"area_executada_m2":    p.AreaExecutadaM2,
			"percentual_executado": p.PercentualExecutado,
			"espessura_cm":         p.EspessuraCM,
			"data_execucao":        p.DataExecucao,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pavimentoRepo) ListByObra(ctx context.Context, obraID string) ([]model.Pavimento, error) {
	var list []model.Pavimento
	err := r.db.WithContext(ctx).
		Joins("Torre").
		Where(`"Torre"."obra_id" = ?`, obraID).
		Order(`"Torre"."nome" ASC, pavimentos.identificador ASC`).
		Find(&list).Error
	return list, err
}

func (r *pavimentoRepo) SumExecutadoByObra(ctx context.Context, obraID string) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&model.Pavimento{}).
		Select("COALESCE(SUM(pavimentos.area_executada_m2), 0) AS total").
		Joins("JOIN torres ON torres.id = pavimentos.torre_id").
		Where("torres.obra_id = ?", obraID).
		Scan(&row).Error
	return row.Total, err
}

func (r *pavimentoRepo) Stats(ctx context.Context) (*ExecutionStats, error) {
	var row struct {
		Total decimal.Decimal
		Media decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Pavimento{}).
		Select("COALESCE(SUM(area_executada_m2), 0) AS total, COALESCE(AVG(percentual_executado), 0) AS media").
		Where("percentual_executado IS NOT NULL").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &ExecutionStats{TotalExecutadoM2: row.Total, MediaPercentual: row.Media.Round(2)}, nil
}
