package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
)

// ObraRepository construction sites and their address.
type ObraRepository interface {
	// Create inserts the obra with its endereco, torres and pavimentos.
	Create(ctx context.Context, obra *model.Obra) error
	GetByID(ctx context.Context, id string) (*model.Obra, error)
	GetByCEI(ctx context.Context, cei string) (*model.Obra, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.Obra, int64, error)
	ListOptions(ctx context.Context) ([]model.Obra, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateTotals(ctx context.Context, id string, executado, pendente decimal.Decimal) error
	// Delete removes the obra (cascading to its structure) and its endereco.
	Delete(ctx context.Context, obra *model.Obra) error
	CountActive(ctx context.Context, day time.Time) (int64, error)
}

type obraRepo struct {
	db *gorm.DB
}

// NewObraRepo creates the GORM implementation.
func NewObraRepo(db *gorm.DB) ObraRepository {
	return &obraRepo{db: db}
}

func (r *obraRepo) Create(ctx context.Context, obra *model.Obra) error {
	return r.db.WithContext(ctx).Create(obra).Error
}

func (r *obraRepo) GetByID(ctx context.Context, id string) (*model.Obra, error) {
	var obra model.Obra
	err := r.db.WithContext(ctx).
		Preload("Endereco").
		Preload("Torres", func(db *gorm.DB) *gorm.DB { return db.Order("torres.nome ASC") }).
		Preload("Torres.Pavimentos", func(db *gorm.DB) *gorm.DB { return db.Order("pavimentos.identificador ASC") }).
		Where("id = ?", id).
		First(&obra).Error
	if err != nil {
		return nil, err
	}
	return &obra, nil
}

func (r *obraRepo) GetByCEI(ctx context.Context, cei string) (*model.Obra, error) {
	var obra model.Obra
	if err := r.db.WithContext(ctx).Where("cei = ?", cei).First(&obra).Error; err != nil {
		return nil, err
	}
	return &obra, nil
}

func (r *obraRepo) List(ctx context.Context, search string, offset, limit int) ([]model.Obra, int64, error) {
	var obras []model.Obra
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Obra{})
	if search != "" {
		like := "%" + search + "%"
		db = db.Where("nome ILIKE ? OR cei ILIKE ? OR construtora ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&obras).Error; err != nil {
		return nil, 0, err
	}
	return obras, total, nil
}

func (r *obraRepo) ListOptions(ctx context.Context) ([]model.Obra, error) {
	var obras []model.Obra
	err := r.db.WithContext(ctx).
		Select("id", "nome", "cei").
		Order("nome ASC").
		Find(&obras).Error
	return obras, err
}

func (r *obraRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Obra{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *obraRepo) UpdateTotals(ctx context.Context, id string, executado, pendente decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Obra{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_executado": executado,
			"total_pendente":  pendente,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *obraRepo) Delete(ctx context.Context, obra *model.Obra) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("id = ?", obra.ID).Delete(&model.Obra{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", obra.EnderecoID).Delete(&model.Endereco{}).Error
}

func (r *obraRepo) CountActive(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Obra{}).
		Where("data_fim >= ?", day.Format("2006-01-02")).
		Count(&n).Error
	return n, err
}
