// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/recommend"
)

// Retrainer is the part of recommend.Engine the retrain loop drives.
type Retrainer interface {
	RetrainPending(ctx context.Context) (*recommend.RetrainSummary, error)
}

// RetrainServiceConfig holds configuration for the retrain loop.
type RetrainServiceConfig struct {
	// TrainOnStartup runs one pass as soon as the service starts.
	TrainOnStartup bool

	// Interval between passes. Zero disables the periodic loop; the
	// service then only runs the startup pass, if any, and idles.
	Interval time.Duration

	// PassTimeout bounds one pass over all pending users.
	// Default: 30m
	PassTimeout time.Duration
}

// RetrainService retrains per-user models on a schedule under suture.
type RetrainService struct {
	engine Retrainer
	config RetrainServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRetrainService creates a retrain loop service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(engine Retrainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = 30 * time.Minute
	}
	return &RetrainService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "retrain").Logger(),
		name:   "retrain-service",
	}
}

// Serve implements suture.Service. Pass failures are logged and retried on
// the next tick rather than returned, so a transient database error does
// not cost the supervisor a restart.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("interval", s.config.Interval).
		Msg("retrain service starting")

	if s.config.TrainOnStartup {
		s.runPass(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx, "scheduled")
		}
	}
}

func (s *RetrainService) runPass(ctx context.Context, trigger string) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.PassTimeout)
	defer cancel()

	summary, err := s.engine.RetrainPending(passCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("retrain pass failed")
		return
	}

	s.logger.Info().
		Str("trigger", trigger).
		Int("users", summary.Users).
		Int("trained", summary.Trained).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("retrain pass complete")
}

// String returns the service name for supervisor logs.
func (s *RetrainService) String() string {
	return s.name
}
