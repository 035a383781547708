package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/natanhermes/buildflow/config"
)

// NewLogger builds a zap logger from config. The returned AtomicLevel can be
// adjusted at runtime (see SetLevel).
func NewLogger(cfg *config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("nível de log inválido %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("falha ao inicializar logger: %w", err)
	}

	return logger, zapCfg.Level, nil
}

// SetLevel applies a textual level to an AtomicLevel. Unknown levels leave it unchanged.
func SetLevel(atom zap.AtomicLevel, level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	if atom.Level() != l {
		atom.SetLevel(l)
	}
	return nil
}
