// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/validation"
)

// Message kinds carried on the feedback topic.
const (
	// KindSignal is an explicit outfit-level signal.
	KindSignal = "signal"
	// KindWorn confirms an outfit was worn.
	KindWorn = "worn"
	// KindItemSignal is a signal about a single item.
	KindItemSignal = "item_signal"
)

// FeedbackMessage is the wire format of one feedback event.
type FeedbackMessage struct {
	// EventID is unique per event and doubles as the Nats-Msg-Id.
	EventID string `json:"event_id" validate:"required,max=128"`

	Kind     string            `json:"kind" validate:"required,oneof=signal worn item_signal"`
	UserID   string            `json:"user_id" validate:"required,max=128"`
	OutfitID string            `json:"outfit_id,omitempty" validate:"required_unless=Kind item_signal,max=128"`
	ItemID   string            `json:"item_id,omitempty" validate:"required_if=Kind item_signal,max=128"`
	Signal   models.SignalType `json:"signal,omitempty" validate:"required_unless=Kind worn,max=64"`

	// Context is the wearing context of an item signal.
	Context *models.Context `json:"context,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewSignalMessage builds an outfit-level signal message.
func NewSignalMessage(userID, outfitID string, signal models.SignalType) *FeedbackMessage {
	return newMessage(KindSignal, userID, outfitID, "", signal, nil)
}

// NewWornMessage builds a worn confirmation message.
func NewWornMessage(userID, outfitID string) *FeedbackMessage {
	return newMessage(KindWorn, userID, outfitID, "", "", nil)
}

// NewItemSignalMessage builds an item-level signal message.
func NewItemSignalMessage(userID, itemID string, signal models.SignalType, c *models.Context) *FeedbackMessage {
	return newMessage(KindItemSignal, userID, "", itemID, signal, c)
}

func newMessage(kind, userID, outfitID, itemID string, signal models.SignalType, c *models.Context) *FeedbackMessage {
	return &FeedbackMessage{
		EventID:    uuid.New().String(),
		Kind:       kind,
		UserID:     userID,
		OutfitID:   outfitID,
		ItemID:     itemID,
		Signal:     signal,
		Context:    c,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks required fields for the message kind.
func (m *FeedbackMessage) Validate() error {
	if verr := validation.ValidateStruct(m); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, verr)
	}
	return nil
}

// Marshal validates and serializes the message.
func (m *FeedbackMessage) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback message: %w", err)
	}
	return data, nil
}

// DecodeFeedbackMessage parses and validates a message payload.
func DecodeFeedbackMessage(data []byte) (*FeedbackMessage, error) {
	var m FeedbackMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	m.Kind = strings.ToLower(strings.TrimSpace(m.Kind))
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
