// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"errors"
	"testing"

	"github.com/mdcscry/thread/internal/models"
)

func TestFeedbackMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     *FeedbackMessage
		wantErr bool
	}{
		{"signal", NewSignalMessage("u1", "o1", models.SignalThumbsUp), false},
		{"worn without signal", NewWornMessage("u1", "o1"), false},
		{"item signal without outfit", NewItemSignalMessage("u1", "i1", models.SignalThumbsDown, nil), false},
		{"missing user", NewSignalMessage("", "o1", models.SignalThumbsUp), true},
		{"signal missing outfit", NewSignalMessage("u1", "", models.SignalThumbsUp), true},
		{"signal missing signal", NewSignalMessage("u1", "o1", ""), true},
		{"worn missing outfit", NewWornMessage("u1", ""), true},
		{"item signal missing item", NewItemSignalMessage("u1", "", models.SignalThumbsUp, nil), true},
		{"item signal missing signal", NewItemSignalMessage("u1", "i1", "", nil), true},
		{"bad context season", NewItemSignalMessage("u1", "i1", models.SignalThumbsUp, &models.Context{Season: "monsoon"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("error %v does not wrap ErrInvalidMessage", err)
			}
		})
	}
}

func TestNewMessagesHaveUniqueIDs(t *testing.T) {
	a := NewWornMessage("u1", "o1")
	b := NewWornMessage("u1", "o1")
	if a.EventID == "" || a.EventID == b.EventID {
		t.Errorf("event ids %q and %q", a.EventID, b.EventID)
	}
	if a.OccurredAt.IsZero() {
		t.Error("OccurredAt not set")
	}
}

func TestDecodeFeedbackMessage(t *testing.T) {
	data := []byte(`{"event_id":"e1","kind":" Item_Signal ","user_id":"u1","item_id":"i1",` +
		`"signal":"loved_item","context":{"occasion":"date","formality_target":7}}`)

	m, err := DecodeFeedbackMessage(data)
	if err != nil {
		t.Fatalf("DecodeFeedbackMessage() error = %v", err)
	}
	if m.Kind != KindItemSignal {
		t.Errorf("Kind = %q, want normalized %q", m.Kind, KindItemSignal)
	}
	if m.Context == nil || m.Context.Occasion != "date" || m.Context.FormalityTarget != 7 {
		t.Errorf("Context = %+v", m.Context)
	}

	if _, err := DecodeFeedbackMessage([]byte(`[1,2]`)); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("array payload error = %v, want ErrInvalidMessage", err)
	}
}
