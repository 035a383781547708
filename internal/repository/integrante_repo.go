package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
)

// IntegranteFilter narrows integrante listings. Empty fields are ignored.
type IntegranteFilter struct {
	EquipeID  string
	SemEquipe bool
	Search    string
}

// IntegranteRepository workers.
type IntegranteRepository interface {
	Create(ctx context.Context, i *model.Integrante) error
	CreateBatch(ctx context.Context, list []model.Integrante) error
	GetByID(ctx context.Context, id string) (*model.Integrante, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Integrante, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Integrante, error)
	ExistingCPFs(ctx context.Context, cpfs []string) ([]string, error)
	List(ctx context.Context, f IntegranteFilter, offset, limit int) ([]model.Integrante, int64, error)
	Update(ctx context.Context, i *model.Integrante) error
	// SetEquipe assigns (or, with a nil equipeID, clears) the crew of a worker.
	SetEquipe(ctx context.Context, id string, equipeID *string) error
	Delete(ctx context.Context, id string) error
}

type integranteRepo struct {
	db *gorm.DB
}

// NewIntegranteRepo creates the GORM implementation.
func NewIntegranteRepo(db *gorm.DB) IntegranteRepository {
	return &integranteRepo{db: db}
}

func (r *integranteRepo) Create(ctx context.Context, i *model.Integrante) error {
	return r.db.WithContext(ctx).Omit("Equipe").Create(i).Error
}

func (r *integranteRepo) CreateBatch(ctx context.Context, list []model.Integrante) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Equipe").CreateInBatches(list, 100).Error
}

func (r *integranteRepo) GetByID(ctx context.Context, id string) (*model.Integrante, error) {
	var i model.Integrante
	if err := r.db.WithContext(ctx).Preload("Equipe").Where("id = ?", id).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *integranteRepo) GetByCPF(ctx context.Context, cpf string) (*model.Integrante, error) {
	var i model.Integrante
	if err := r.db.WithContext(ctx).Where("cpf = ?", cpf).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *integranteRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Integrante, error) {
	var list []model.Integrante
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *integranteRepo) ExistingCPFs(ctx context.Context, cpfs []string) ([]string, error) {
	var found []string
	if len(cpfs) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Integrante{}).
		Where("cpf IN ?", cpfs).
		Pluck("cpf", &found).Error
	return found, err
}

func (r *integranteRepo) List(ctx context.Context, f IntegranteFilter, offset, limit int) ([]model.Integrante, int64, error) {
	var list []model.Integrante
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Integrante{})
	switch {
	case f.SemEquipe:
		db = db.Where("equipe_id IS NULL")
	case f.EquipeID != "":
		db = db.Where("equipe_id = ?", f.EquipeID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		db = db.Where("nome ILIKE ? OR cpf LIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Preload("Equipe").
		Order("nome ASC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *integranteRepo) Update(ctx context.Context, i *model.Integrante) error {
	return r.db.WithContext(ctx).Model(&model.Integrante{}).
		Where("id = ?", i.ID).
		Updates(map[string]interface{}{"nome": i.Nome, "cpf": i.CPF}).Error
}

func (r *integranteRepo) SetEquipe(ctx context.Context, id string, equipeID *string) error {
	res := r.db.WithContext(ctx).Model(&model.Integrante{}).
		Where("id = ?", id).
		Update("equipe_id", equipeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *integranteRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Integrante{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
