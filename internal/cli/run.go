package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/pipeline"
	"go.uber.org/zap"
)

// session is the config, logger and pipeline of one command invocation
type session struct {
	cfg      *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
}

func (s *session) close() {
	if err := s.pipeline.Close(); err != nil {
		s.logger.Warn("Closing store clients", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// withSession loads the config, opens the stores and runs fn until it
// returns or the process is interrupted.
func withSession(fn func(ctx context.Context, s *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, logger, pipeline.Deps{Progress: os.Stderr})
	if err != nil {
		_ = logger.Sync()
		return fmt.Errorf("setup: %w", err)
	}
	s := &session{cfg: cfg, logger: logger, pipeline: p}
	defer s.close()

	return fn(ctx, s)
}
