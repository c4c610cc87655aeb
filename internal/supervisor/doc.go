// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package supervisor runs Thread's long-lived services under suture v4.

# Overview

	RootSupervisor ("thread")
	├── "training-layer"
	│   └── RetrainService (RETRAIN_INTERVAL > 0 or TRAIN_ON_STARTUP)
	├── "messaging-layer"
	│   └── FeedbackConsumerService (NATS_ENABLED)
	└── "ops-layer"
	    └── HTTPServerService (OPS_ADDR)

Each layer counts failures independently, so a consumer that keeps failing
while NATS is unreachable backs off without disturbing retraining or the
ops listener.

Supervisor events (start, stop, panic, backoff) are logged through
sutureslog using the zerolog-backed slog handler from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddTrainingService(services.NewRetrainService(engine, retrainCfg, logger))
	tree.AddOpsService(services.NewHTTPServerService(server, 15*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	for err := range errCh {
	    // context.Canceled on clean shutdown
	}

The service wrappers live in the services subpackage.
*/
package supervisor
