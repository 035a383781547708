package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/repository"
	"github.com/natanhermes/buildflow/pkg/jwt"
)

// TokenStore revokes session tokens. Implemented by the redis client; nil
// when redis is unavailable, in which case logout only clears the cookie.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service aggregates every business service.
type Service struct {
	Auth       AuthService
	Usuario    UsuarioService
	Obra       ObraService
	Totals     TotalsService
	Pavimento  PavimentoService
	Equipe     EquipeService
	Integrante IntegranteService
	Atividade  AtividadeService
	Dashboard  DashboardService
	Report     ReportService
}

// NewService wires the services over one repository aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Usuario:    NewUsuarioService(repo, logger),
		Obra:       NewObraService(repo, logger),
		Totals:     NewTotalsService(repo, logger),
		Pavimento:  NewPavimentoService(repo, cfg.Server.FrontendURL, logger),
		Equipe:     NewEquipeService(repo, logger),
		Integrante: NewIntegranteService(repo, logger),
		Atividade:  NewAtividadeService(repo, cfg.Database.TxTimeout, logger),
		Dashboard:  NewDashboardService(repo, logger),
		Report:     NewReportService(repo, logger),
	}
}
