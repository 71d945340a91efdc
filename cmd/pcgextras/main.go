// Package main builds a level, lays its spline meshes onto the ground and
// prints the exclusion points every generator collects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/pcgextras/internal/config"
	"github.com/Faultbox/pcgextras/internal/logger"
	"github.com/Faultbox/pcgextras/internal/session"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	opts := logger.Options{
		Level:   cfg.Logging.Level,
		JSON:    cfg.Logging.JSON,
		Console: true,
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.Init(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== PCG Extras ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := session.New(cfg, os.Stdout)
	if err != nil {
		logger.Error("failed to load level", zap.Error(err))
		os.Exit(1)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}
