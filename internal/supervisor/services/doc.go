// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package services provides suture.Service wrappers for Thread components.

Each wrapper translates a component lifecycle into suture's
Serve(ctx) error and names itself via fmt.Stringer for supervisor logs.

RetrainService (training layer):
  - Calls Engine.RetrainPending on an interval, optionally once at startup
  - Pass failures are logged, not returned

FeedbackConsumerService (messaging layer):
  - Start/Shutdown lifecycle of eventprocessor.FeedbackConsumer
  - Start failures and unexpected stops are returned so suture restarts
    the consumer with backoff

HTTPServerService (ops layer):
  - ListenAndServe with graceful Shutdown on cancellation
  - http.ErrServerClosed is treated as a clean stop
*/
package services
