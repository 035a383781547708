package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/natanhermes/buildflow/config"
	"github.com/natanhermes/buildflow/internal/api/handler"
	"github.com/natanhermes/buildflow/internal/api/middleware"
	"github.com/natanhermes/buildflow/internal/api/router"
	"github.com/natanhermes/buildflow/internal/job"
	"github.com/natanhermes/buildflow/internal/repository"
	"github.com/natanhermes/buildflow/internal/service"
	"github.com/natanhermes/buildflow/pkg/cep"
	"github.com/natanhermes/buildflow/pkg/database"
	"github.com/natanhermes/buildflow/pkg/jwt"
	applogger "github.com/natanhermes/buildflow/pkg/logger"
	"github.com/natanhermes/buildflow/pkg/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o servidor HTTP e os jobs agendados",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := loadBootstrap()
		if err != nil {
			return err
		}
		defer b.logger.Sync()
		return serve(cmd.Context(), b)
	},
}

func serve(ctx context.Context, b *bootstrap) error {
	cfg, logger := b.cfg, b.logger

	logger.Info("iniciando aplicação",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// only the log level is applied without a restart
	config.Watch(configPath, func(next *config.Config) {
		if err := applogger.SetLevel(b.level, next.Log.Level); err != nil {
			logger.Warn("nível de log ignorado", zap.String("level", next.Log.Level), zap.Error(err))
			return
		}
		logger.Info("configuração recarregada", zap.String("log_level", next.Log.Level))
	}, func(err error) {
		logger.Warn("configuração recarregada inválida", zap.Error(err))
	})

	// ── database ──
	db, err := b.openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obter sql.DB: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return err
	}

	// ── redis (optional) ──
	var (
		tokenStore service.TokenStore
		tokenCheck middleware.TokenChecker
		limiter    middleware.RateLimiter
		cepCache   cep.Cache
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis indisponível: revogação de sessão, limite de tentativas e cache de CEP desativados", zap.Error(err))
	} else {
		defer rdb.Close()
		tokenStore, tokenCheck, limiter, cepCache = rdb, rdb, rdb, rdb
	}

	var cepLookup handler.CEPLookup
	if cfg.CEP.BaseURL != "" {
		cepLookup = cep.NewClient(cfg.CEP.BaseURL, cfg.CEP.Timeout, cepCache, cfg.CEP.CacheTTL, logger)
	}

	// ── wiring: repository → service → handler ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, tokenStore, logger)
	h := handler.NewHandler(cfg, svc, cepLookup, logger)

	engine := router.Setup(router.Deps{
		Config:  cfg,
		Handler: h,
		JWT:     jwtMgr,
		Tokens:  tokenCheck,
		Limiter: limiter,
		DB:      repo,
		Logger:  logger,
	})

	// ── jobs ──
	scheduler, err := job.NewScheduler(cfg.Jobs.TotalsCron, svc.Totals, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("servidor HTTP iniciado", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("sinal recebido, encerrando", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("servidor HTTP falhou", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("erro ao encerrar servidor", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("jobs não finalizados a tempo", zap.Error(err))
	}

	logger.Info("servidor encerrado")
	return nil
}
