// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mdcscry/thread/internal/cache"
	"github.com/mdcscry/thread/internal/logging"
	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend"
)

// FeedbackEngine is the part of recommend.Engine the consumer drives.
type FeedbackEngine interface {
	RecordFeedback(ctx context.Context, userID, outfitID string, signal models.SignalType) (*recommend.FeedbackResult, error)
	RecordItemFeedback(ctx context.Context, userID, itemID string, signal models.SignalType, c *models.Context) (*recommend.FeedbackResult, error)
	MarkAsWorn(ctx context.Context, userID, outfitID string) (*recommend.FeedbackResult, error)
}

// HandlerStats is a snapshot of handler counters.
type HandlerStats struct {
	Received   int64 `json:"received"`
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Rejected   int64 `json:"rejected"`
	Failed     int64 `json:"failed"`
}

// FeedbackHandler applies feedback messages to the engine.
//
// JetStream redelivers on missed acks, and EMA updates are not idempotent,
// so processed event ids are remembered in a bounded LRU. An id is marked
// only after the engine accepted the event; failed attempts stay retryable.
type FeedbackHandler struct {
	engine FeedbackEngine
	seen   *cache.LRU[struct{}]

	received   atomic.Int64
	processed  atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64
	failed     atomic.Int64
}

// NewFeedbackHandler creates a handler remembering up to capacity event ids for ttl.
func NewFeedbackHandler(engine FeedbackEngine, capacity int, ttl time.Duration) (*FeedbackHandler, error) {
	if engine == nil {
		return nil, fmt.Errorf("feedback engine required")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: dedup capacity must be positive", ErrInvalidConfig)
	}
	return &FeedbackHandler{
		engine: engine,
		seen:   cache.New[struct{}](capacity, ttl),
	}, nil
}

// Handle processes one message. It satisfies message.NoPublishHandlerFunc.
// Permanent errors are returned as *PermanentError so the router can route
// them to the poison queue without retrying.
func (h *FeedbackHandler) Handle(msg *message.Message) error {
	start := time.Now()
	h.received.Add(1)
	metrics.RecordNATSConsume()

	fb, err := DecodeFeedbackMessage(msg.Payload)
	if err != nil {
		h.rejected.Add(1)
		metrics.RecordNATSParseFailed()
		return NewPermanentError("decode feedback message", err)
	}

	if h.seen.Contains(fb.EventID) {
		h.duplicates.Add(1)
		metrics.RecordNATSDeduplicated()
		logging.Debug().Str("event_id", fb.EventID).Msg("Skipping duplicate feedback event")
		return nil
	}

	ctx := logging.ContextWithCorrelationID(msg.Context(), fb.EventID)
	ctx = logging.ContextWithUserID(ctx, fb.UserID)

	res, err := h.apply(ctx, fb)
	if err != nil {
		err = classifyApplyError(fmt.Sprintf("apply %s event %s", fb.Kind, fb.EventID), err)
		if IsPermanentError(err) {
			h.rejected.Add(1)
		} else {
			h.failed.Add(1)
		}
		return err
	}

	h.seen.Add(fb.EventID, struct{}{})
	h.processed.Add(1)
	metrics.RecordNATSProcessed(time.Since(start))

	updated := 0
	if res != nil {
		updated = res.ItemsUpdated
	}
	logging.Ctx(ctx).Debug().
		Str("kind", fb.Kind).
		Int("items_updated", updated).
		Msg("Applied feedback event")

	return nil
}

func (h *FeedbackHandler) apply(ctx context.Context, fb *FeedbackMessage) (*recommend.FeedbackResult, error) {
	switch fb.Kind {
	case KindSignal:
		return h.engine.RecordFeedback(ctx, fb.UserID, fb.OutfitID, fb.Signal)
	case KindWorn:
		return h.engine.MarkAsWorn(ctx, fb.UserID, fb.OutfitID)
	case KindItemSignal:
		return h.engine.RecordItemFeedback(ctx, fb.UserID, fb.ItemID, fb.Signal, fb.Context)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, fb.Kind)
	}
}

// Stats returns the current counters.
func (h *FeedbackHandler) Stats() HandlerStats {
	return HandlerStats{
		Received:   h.received.Load(),
		Processed:  h.processed.Load(),
		Duplicates: h.duplicates.Load(),
		Rejected:   h.rejected.Load(),
		Failed:     h.failed.Load(),
	}
}
