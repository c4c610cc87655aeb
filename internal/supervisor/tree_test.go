// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, _ := NewSupervisorTree(nil, TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
		if tree.config.FailureThreshold != 2 {
			t.Errorf("FailureThreshold = %v, want 2", tree.config.FailureThreshold)
		}
		if tree.config.ShutdownTimeout != time.Second {
			t.Errorf("ShutdownTimeout = %v, want 1s", tree.config.ShutdownTimeout)
		}
		if tree.config.FailureDecay != 30 {
			t.Errorf("FailureDecay = %v, want default 30", tree.config.FailureDecay)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	training := newMockService("mock-training", 0)
	messaging := newMockService("mock-messaging", 0)
	ops := newMockService("mock-ops", 0)
	tree.AddTrainingService(training)
	tree.AddMessagingService(messaging)
	tree.AddOpsService(ops)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	for _, svc := range []*mockService{training, messaging, ops} {
		if svc.StartCount() < 1 {
			t.Errorf("%s was not started", svc)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) != 0 {
		t.Errorf("unstopped services: %v", unstopped)
	}
}

func TestSupervisorTreeRestartsFailedService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newMockService("flaky-consumer", 2)
	steady := newMockService("steady-ops", 0)
	tree.AddMessagingService(flaky)
	tree.AddOpsService(steady)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(400 * time.Millisecond)
	for flaky.StartCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if flaky.StartCount() < 3 {
		t.Errorf("flaky service started %d times, want at least 3", flaky.StartCount())
	}
	if steady.StartCount() != 1 {
		t.Errorf("steady service started %d times, want 1 (isolated from sibling failures)", steady.StartCount())
	}

	cancel()
	<-errCh
}
