package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates every data access interface. A Repository bound to a
// transaction is obtained through WithTx or inside Transaction.
type Repository struct {
	db *gorm.DB

	Usuario    UsuarioRepository
	Obra       ObraRepository
	Pavimento  PavimentoRepository
	Equipe     EquipeRepository
	Integrante IntegranteRepository
	Atividade  AtividadeRepository
}

// NewRepository builds the aggregate over a connection pool.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Usuario:    NewUsuarioRepo(db),
		Obra:       NewObraRepo(db),
		Pavimento:  NewPavimentoRepo(db),
		Equipe:     NewEquipeRepo(db),
		Integrante: NewIntegranteRepo(db),
		Atividade:  NewAtividadeRepo(db),
	}
}

// WithTx returns a Repository whose members all run on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn in a single database transaction bound to ctx; any
// error returned by fn, or a cancelled ctx, rolls everything back.
//
// Repositories assembled by hand (no pool) run fn directly on themselves.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("repositório sem conexão")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
