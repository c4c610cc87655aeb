// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/recommend"
)

// mockRetrainer is a mock implementation for testing.
type mockRetrainer struct {
	mu       sync.Mutex
	calls    int
	err      error
	deadline bool
}

func (m *mockRetrainer) RetrainPending(ctx context.Context) (*recommend.RetrainSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := ctx.Deadline(); ok {
		m.deadline = true
	}
	if m.err != nil {
		return nil, m.err
	}
	return &recommend.RetrainSummary{Users: 3, Trained: 2, Skipped: 1}, nil
}

func (m *mockRetrainer) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestRetrainService_String(t *testing.T) {
	svc := NewRetrainService(&mockRetrainer{}, RetrainServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "retrain-service" {
		t.Errorf("String() = %q, want %q", got, "retrain-service")
	}
}

func TestRetrainService_Schedule(t *testing.T) {
	tests := []struct {
		name      string
		cfg       RetrainServiceConfig
		runFor    time.Duration
		wantMin   int
		wantMax   int
		retrainer *mockRetrainer
	}{
		{
			name:      "startup only",
			cfg:       RetrainServiceConfig{TrainOnStartup: true, Interval: time.Hour},
			runFor:    100 * time.Millisecond,
			wantMin:   1,
			wantMax:   1,
			retrainer: &mockRetrainer{},
		},
		{
			name:      "no startup pass",
			cfg:       RetrainServiceConfig{Interval: time.Hour},
			runFor:    100 * time.Millisecond,
			wantMin:   0,
			wantMax:   0,
			retrainer: &mockRetrainer{},
		},
		{
			name:      "scheduled passes",
			cfg:       RetrainServiceConfig{Interval: 40 * time.Millisecond},
			runFor:    130 * time.Millisecond,
			wantMin:   2,
			wantMax:   3,
			retrainer: &mockRetrainer{},
		},
		{
			name:      "interval disabled idles after startup",
			cfg:       RetrainServiceConfig{TrainOnStartup: true},
			runFor:    100 * time.Millisecond,
			wantMin:   1,
			wantMax:   1,
			retrainer: &mockRetrainer{},
		},
		{
			name:      "failures keep the loop alive",
			cfg:       RetrainServiceConfig{Interval: 30 * time.Millisecond},
			runFor:    130 * time.Millisecond,
			wantMin:   2,
			wantMax:   5,
			retrainer: &mockRetrainer{err: errors.New("database is locked")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRetrainService(tt.retrainer, tt.cfg, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), tt.runFor)
			defer cancel()

			err := svc.Serve(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
			}

			got := tt.retrainer.getCalls()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("RetrainPending() called %d times, want %d..%d", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestRetrainService_PassHasDeadline(t *testing.T) {
	r := &mockRetrainer{}
	svc := NewRetrainService(r, RetrainServiceConfig{TrainOnStartup: true}, zerolog.Nop())
	if svc.config.PassTimeout != 30*time.Minute {
		t.Errorf("PassTimeout = %v, want default 30m", svc.config.PassTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.deadline {
		t.Error("retrain pass should run with a deadline")
	}
}
