package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	_ "github.com/natanhermes/buildflow/docs"
	"github.com/natanhermes/buildflow/internal/api/handler"
	"github.com/natanhermes/buildflow/internal/api/middleware"
	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/pkg/jwt"
)

// Pinger reports database liveness for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the router. Tokens and Limiter may be nil
// when Redis is unavailable.
type Deps struct {
	Config  *config.Config
	Handler *handler.Handler
	JWT     *jwt.Manager
	Tokens  middleware.TokenChecker
	Limiter middleware.RateLimiter
	DB      Pinger
	Logger  *zap.Logger
}

// Setup builds the gin engine with every route.
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	dto.RegisterValidators()

	cfg, h := d.Config, d.Handler
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	master := middleware.RoleAuth(model.RoleMaster)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimit(d.Limiter, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Tokens, cfg.Auth.Cookie.Name))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			usuarios := authorized.Group("/usuarios", master)
			{
				usuarios.GET("", h.Usuario.List)
				usuarios.POST("", h.Usuario.Create)
				usuarios.PATCH("/:id/status", h.Usuario.UpdateStatus)
			}

			obras := authorized.Group("/obras")
			{
				obras.GET("", h.Obra.List)
				obras.GET("/options", h.Obra.Options)
				obras.GET("/cei-exists", h.Obra.CEIExists)
				obras.GET("/:id", h.Obra.GetByID)
				obras.GET("/:id/pavimentos", h.Obra.ListPavimentos)
				obras.GET("/:id/relatorio.pdf", h.Obra.ReportPDF)
				obras.GET("/:id/atividades.ics", h.Obra.Calendar)
				obras.POST("", master, h.Obra.Create)
				obras.POST("/:id/recalcular", h.Obra.RecalculateTotals)
				obras.DELETE("/:id", master, h.Obra.Delete)
			}

			pavimentos := authorized.Group("/pavimentos")
			{
				pavimentos.GET("/:id", h.Pavimento.GetByID)
				pavimentos.GET("/:id/qrcode.png", h.Pavimento.QRCode)
			}

			equipes := authorized.Group("/equipes")
			{
				equipes.GET("", h.Equipe.List)
				equipes.GET("/:id", h.Equipe.GetByID)
				equipes.POST("", h.Equipe.Create)
				equipes.PUT("/:id", h.Equipe.Update)
				equipes.DELETE("/:id", master, h.Equipe.Delete)
				equipes.POST("/:id/integrantes", h.Equipe.AddIntegrante)
				equipes.POST("/:id/integrantes/mover", h.Equipe.MoveIntegrante)
				equipes.DELETE("/:id/integrantes/:integranteId", h.Equipe.RemoveIntegrante)
			}

			integrantes := authorized.Group("/integrantes")
			{
				integrantes.GET("", h.Integrante.List)
				integrantes.GET("/cpf-exists", h.Integrante.CPFExists)
				integrantes.GET("/:id", h.Integrante.GetByID)
				integrantes.GET("/:id/atividades", h.Integrante.ListAtividades)
				integrantes.POST("", h.Integrante.Create)
				integrantes.POST("/import", master, h.Integrante.Import)
				integrantes.PUT("/:id", h.Integrante.Update)
				integrantes.DELETE("/:id", master, h.Integrante.Delete)
			}

			atividades := authorized.Group("/atividades")
			{
				atividades.GET("", h.Atividade.List)
				atividades.GET("/export", h.Atividade.Export)
				atividades.GET("/:id", h.Atividade.GetByID)
				atividades.POST("", h.Atividade.Create)
				atividades.PUT("/:id", h.Atividade.Update)
				atividades.DELETE("/:id", master, h.Atividade.Delete)
			}

			authorized.GET("/dashboard", h.Dashboard.Metrics)
			authorized.GET("/cep/:cep", h.CEP.Lookup)
		}
	}

	return r
}
