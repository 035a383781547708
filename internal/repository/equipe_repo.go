package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
)

// EquipeRepository crews.
type EquipeRepository interface {
	Create(ctx context.Context, e *model.Equipe) error
	GetByID(ctx context.Context, id string) (*model.Equipe, error)
	GetByNome(ctx context.Context, obraID, nome string) (*model.Equipe, error)
	List(ctx context.Context, obraID string, offset, limit int) ([]model.Equipe, int64, error)
	Update(ctx context.Context, e *model.Equipe) error
	// Delete removes the crew; its members keep existing with no crew.
	Delete(ctx context.Context, id string) error
}

type equipeRepo struct {
	db *gorm.DB
}

// NewEquipeRepo creates the GORM implementation.
func NewEquipeRepo(db *gorm.DB) EquipeRepository {
	return &equipeRepo{db: db}
}

func (r *equipeRepo) Create(ctx context.Context, e *model.Equipe) error {
	return r.db.WithContext(ctx).Omit("Obra", "Integrantes").Create(e).Error
}

func (r *equipeRepo) GetByID(ctx context.Context, id string) (*model.Equipe, error) {
	var e model.Equipe
	err := r.db.WithContext(ctx).
		Preload("Obra", func(db *gorm.DB) *gorm.DB { return db.Select("id", "nome", "cei") }).
		Preload("Integrantes", func(db *gorm.DB) *gorm.DB { return db.Order("integrantes.nome ASC") }).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipeRepo) GetByNome(ctx context.Context, obraID, nome string) (*model.Equipe, error) {
	var e model.Equipe
	err := r.db.WithContext(ctx).
		Where("obra_id = ? AND LOWER(nome) = LOWER(?)", obraID, nome).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipeRepo) List(ctx context.Context, obraID string, offset, limit int) ([]model.Equipe, int64, error) {
	var list []model.Equipe
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Equipe{})
	if obraID != "" {
		db = db.Where("obra_id = ?", obraID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Preload("Obra", func(db *gorm.DB) *gorm.DB { return db.Select("id", "nome", "cei") }).
		Preload("Integrantes", func(db *gorm.DB) *gorm.DB { return db.Order("integrantes.nome ASC") }).
		Order("nome ASC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *equipeRepo) Update(ctx context.Context, e *model.Equipe) error {
	return r.db.WithContext(ctx).Model(&model.Equipe{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{"nome": e.Nome, "obra_id": e.ObraID}).Error
}

func (r *equipeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Equipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
