package handler

import (
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	Usuario    *UsuarioHandler
	Obra       *ObraHandler
	Pavimento  *PavimentoHandler
	Equipe     *EquipeHandler
	Integrante *IntegranteHandler
	Atividade  *AtividadeHandler
	Dashboard  *DashboardHandler
	CEP        *CEPHandler
}

// NewHandler wires the handlers over the service aggregate. cep may be nil,
// in which case the lookup route answers 503.
func NewHandler(cfg *config.Config, svc *service.Service, cep CEPLookup, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, cfg.Auth.Cookie, logger),
		Usuario:    NewUsuarioHandler(svc.Usuario, logger),
		Obra:       NewObraHandler(svc.Obra, svc.Totals, svc.Report, logger),
		Pavimento:  NewPavimentoHandler(svc.Pavimento, logger),
		Equipe:     NewEquipeHandler(svc.Equipe, logger),
		Integrante: NewIntegranteHandler(svc.Integrante, logger),
		Atividade:  NewAtividadeHandler(svc.Atividade, svc.Report, logger),
		Dashboard:  NewDashboardHandler(svc.Dashboard, logger),
		CEP:        NewCEPHandler(cep, logger),
	}
}
