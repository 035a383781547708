// Package job runs the periodic maintenance tasks of the API process.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const totalsRunTimeout = 5 * time.Minute

// TotalsRecalculator refreshes the denormalized obra totals.
type TotalsRecalculator interface {
	RecalculateAll(ctx context.Context) (int, error)
}

// Scheduler owns the cron runner. Overlapping runs of the same job are
// skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewScheduler registers the totals job on the given cron spec.
func NewScheduler(totalsSpec string, totals TotalsRecalculator, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger.Sugar().Named("cron")}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, ctx: ctx, cancel: cancel, logger: logger}

	if _, err := c.AddFunc(totalsSpec, s.recalculateTotals(totals)); err != nil {
		cancel()
		return nil, fmt.Errorf("agendamento inválido %q: %w", totalsSpec, err)
	}
	return s, nil
}

func (s *Scheduler) recalculateTotals(totals TotalsRecalculator) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, totalsRunTimeout)
		defer cancel()

		start := time.Now()
		n, err := totals.RecalculateAll(ctx)
		if err != nil {
			s.logger.Error("recálculo de totais interrompido", zap.Int("obras", n), zap.Error(err))
			return
		}
		s.logger.Info("totais recalculados", zap.Int("obras", n), zap.Duration("duracao", time.Since(start)))
	}
}

// Start launches the runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("agendador iniciado", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
