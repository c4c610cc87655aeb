// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/mdcscry/thread/internal/recommend"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrInvalidMessage  = errors.New("invalid feedback message")

	errConsumerStopped = errors.New("consumer is not running")
)

// PermanentError marks a feedback failure that redelivery cannot fix:
// undecodable payloads, bad signals, unknown outfits or items. The router
// sends these to the poison topic on the first attempt.
type PermanentError struct {
	Op  string
	Err error
}

// NewPermanentError wraps err as permanent.
func NewPermanentError(op string, err error) *PermanentError {
	return &PermanentError{Op: op, Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanentError reports whether err, or anything it wraps, is permanent.
func IsPermanentError(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

// classifyApplyError turns an engine error into either a permanent error
// or a plain wrapped error that the router will retry.
func classifyApplyError(op string, err error) error {
	switch {
	case errors.Is(err, recommend.ErrInvalidSignal),
		errors.Is(err, recommend.ErrInvalidRequest),
		errors.Is(err, recommend.ErrItemNotFound),
		errors.Is(err, recommend.ErrOutfitNotFound),
		errors.Is(err, ErrInvalidMessage):
		return NewPermanentError(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
