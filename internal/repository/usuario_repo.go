package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/model"
)

// UsuarioRepository user accounts.
type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	GetByID(ctx context.Context, id string) (*model.Usuario, error)
	GetByUsername(ctx context.Context, username string) (*model.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*model.Usuario, error)
	List(ctx context.Context, role, status string, offset, limit int) ([]model.Usuario, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type usuarioRepo struct {
	db *gorm.DB
}

// NewUsuarioRepo creates the GORM implementation.
func NewUsuarioRepo(db *gorm.DB) UsuarioRepository {
	return &usuarioRepo{db: db}
}

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) GetByID(ctx context.Context, id string) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) GetByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) GetByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) List(ctx context.Context, role, status string, offset, limit int) ([]model.Usuario, int64, error) {
	var users []model.Usuario
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Usuario{})
	if role != "" {
		db = db.Where("role = ?", role)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("nome ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *usuarioRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
