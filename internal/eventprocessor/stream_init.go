// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamHealthName = "feedback-stream"

// JetStreamContext is the part of jetstream.JetStream the stream
// initializer needs. Tests substitute an in-memory fake.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamInitializer owns the feedback stream definition. It runs before the
// subscriber binds, because wildcard subjects cannot be auto-provisioned.
type StreamInitializer struct {
	js  JetStreamContext
	cfg StreamConfig
}

// NewStreamInitializer validates cfg and returns an initializer for it.
func NewStreamInitializer(js JetStreamContext, cfg *StreamConfig) (*StreamInitializer, error) {
	switch {
	case js == nil:
		return nil, errors.New("stream initializer: jetstream context is nil")
	case cfg == nil:
		return nil, errors.New("stream initializer: config is nil")
	case cfg.Name == "" || len(cfg.Subjects) == 0:
		return nil, fmt.Errorf("%w: stream name and subjects are required", ErrInvalidConfig)
	}
	return &StreamInitializer{js: js, cfg: *cfg}, nil
}

// definition is the JetStream view of the feedback stream. Feedback lives
// on disk for MaxAge and publishes are deduplicated by Nats-Msg-Id inside
// DuplicateWindow.
func (s *StreamInitializer) definition() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        s.cfg.Name,
		Description: "wardrobe feedback events",
		Subjects:    s.cfg.Subjects,
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		MaxAge:      s.cfg.MaxAge,
		MaxBytes:    s.cfg.MaxBytes,
		MaxMsgs:     s.cfg.MaxMsgs,
		Duplicates:  s.cfg.DuplicateWindow,
		Replicas:    s.cfg.Replicas,
		AllowDirect: true,
	}
}

// EnsureStream makes the server's stream match the configured definition.
// It creates the stream on first run and updates it on every later run.
func (s *StreamInitializer) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	def := s.definition()

	_, err := s.js.Stream(ctx, def.Name)
	switch {
	case err == nil:
		stream, uerr := s.js.UpdateStream(ctx, def)
		if uerr != nil {
			return nil, fmt.Errorf("update stream %s: %w", def.Name, uerr)
		}
		return stream, nil
	case errors.Is(err, jetstream.ErrStreamNotFound):
		stream, cerr := s.js.CreateStream(ctx, def)
		if cerr != nil {
			return nil, fmt.Errorf("create stream %s: %w", def.Name, cerr)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("look up stream %s: %w", def.Name, err)
	}
}

// HealthCheck reports the stream's backlog, or an error when the stream
// is missing or the server is unreachable.
func (s *StreamInitializer) HealthCheck(ctx context.Context) ComponentHealth {
	stream, err := s.js.Stream(ctx, s.cfg.Name)
	if err != nil {
		return unhealthy(streamHealthName, err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return unhealthy(streamHealthName, err)
	}
	return ComponentHealth{
		Name:      streamHealthName,
		Healthy:   true,
		LastCheck: time.Now(),
		Details: map[string]interface{}{
			"messages":  info.State.Msgs,
			"bytes":     info.State.Bytes,
			"consumers": info.State.Consumers,
		},
	}
}

// ConnectJetStream opens the management connection used to provision the
// feedback stream. The caller closes the connection.
func ConnectJetStream(url string) (*natsgo.Conn, jetstream.JetStream, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name("thread-stream-admin"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}
