// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/features"
	"github.com/mdcscry/thread/internal/recommend/preference"
)

// Sample gates. They are deliberately separate: a model may train at 50
// samples and still carry zero blend weight until 100.
const (
	MinTrainingSamples = 50
	MinBlendSamples    = 100
)

// Confidence weight constants.
const (
	dataConfidenceSpan = 1400.0
	confidenceShare    = 0.45
	lossCeiling        = 0.3
	lossSpan           = 0.2
	minBlendWeight     = 0.05
	maxBlendWeight     = 0.90
)

// ErrModelNotFound is returned when a user has no trained model.
var ErrModelNotFound = errors.New("model not found")

// fallbackLabels label events stored without a value.
var fallbackLabels = map[models.SignalType]float64{
	models.SignalThumbsUp:        1.0,
	models.SignalThumbsDown:      -1.0,
	models.SignalWornConfirmed:   1.0,
	models.SignalVoicePositive:   0.8,
	models.SignalVoiceNegative:   -0.7,
	models.SignalSavedOutfit:     0.6,
	models.SignalViewedLong:      0.2,
	models.SignalSkippedRepeated: -0.3,
}

// ConfidenceWeight is the share of the network score in the blend.
// It is zero below MinBlendSamples; otherwise data and loss confidence each
// contribute up to 0.45 and the sum is clamped to [0.05, 0.90].
func ConfidenceWeight(samples int, validationLoss float64) float64 {
	if samples < MinBlendSamples {
		return 0
	}
	data := clamp((float64(samples)-MinBlendSamples)/dataConfidenceSpan, 0, 1) * confidenceShare

	var loss float64
	if validationLoss < lossCeiling {
		loss = clamp((lossCeiling-validationLoss)/lossSpan, 0, 1) * confidenceShare
	}
	return clamp(data+loss, minBlendWeight, maxBlendWeight)
}

// Label returns the training target for an event.
func Label(e *models.FeedbackEvent) (float64, bool) {
	if e.Value != nil {
		return *e.Value, true
	}
	if v, ok := fallbackLabels[e.Signal]; ok {
		return v, true
	}
	if w, ok := preference.Weight(e.Signal); ok && w != 0 {
		return w, true
	}
	return 0, false
}

// TrainingRepository is the repository surface the trainer reads and writes.
type TrainingRepository interface {
	// ListFeedback returns a user's feedback events, optionally only the
	// ones not yet consumed by training.
	ListFeedback(ctx context.Context, userID string, untrainedOnly bool) ([]models.FeedbackEvent, error)

	// GetItems batch-fetches items by id. Missing ids are absent from the map.
	GetItems(ctx context.Context, userID string, ids []string) (map[string]models.Item, error)

	MarkFeedbackTrained(ctx context.Context, ids []string) error
	AppendTrainingSession(ctx context.Context, s *models.TrainingSession) error
}

// ModelStore persists trained models.
type ModelStore interface {
	// SaveModel writes the model and returns where it was stored.
	SaveModel(ctx context.Context, m *Model) (string, error)

	// LoadModel returns ErrModelNotFound when the user has none.
	LoadModel(ctx context.Context, userID string) (*Model, error)
}

// TrainerConfig tunes the trained scorer.
type TrainerConfig struct {
	// MinSamples gates training. Default: MinTrainingSamples.
	MinSamples int

	Network NetworkConfig
	Fit     FitConfig

	// Timeout bounds one training run. Default: 2m.
	Timeout time.Duration

	// Seed makes initialization and shuffling reproducible. Zero uses a
	// time-derived seed.
	Seed int64
}

// DefaultTrainerConfig returns the production trainer configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinSamples: MinTrainingSamples,
		Network:    DefaultNetworkConfig(features.Dim),
		Fit:        FitConfig{MaxEpochs: 100, Patience: 10, ValidationSplit: 0.2, MinBatch: 4, MaxBatch: 32},
		Timeout:    2 * time.Minute,
	}
}

// TrainResult reports a training attempt. Insufficient data is reported
// through Success=false and Error rather than a Go error.
type TrainResult struct {
	Success        bool          `json:"success"`
	Samples        int           `json:"samples"`
	Skipped        int           `json:"skipped"`
	Required       int           `json:"required,omitempty"`
	ValidationLoss float64       `json:"validation_loss"`
	ValidationMAE  float64       `json:"validation_mae"`
	NNWeight       float64       `json:"nn_weight"`
	ParamCount     int           `json:"param_count"`
	Epochs         int           `json:"epochs"`
	ModelPath      string        `json:"model_path,omitempty"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

// TrainedScorer trains, persists, caches and serves per-user networks.
// It is safe for concurrent use. Training is serialized per user by train.
// Store loads, saves and cache writes for one user are serialized by load,
// so a slow load can never overwrite the model a retrain just installed.
type TrainedScorer struct {
	repo   TrainingRepository
	store  ModelStore
	cache  *ModelCache
	train  keyedMutex
	load   keyedMutex
	cfg    TrainerConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewTrainedScorer wires a trained scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainedScorer(repo TrainingRepository, store ModelStore, cache *ModelCache, cfg TrainerConfig, logger zerolog.Logger) *TrainedScorer {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = MinTrainingSamples
	}
	if cfg.Network.InputDim == 0 {
		cfg.Network = DefaultNetworkConfig(features.Dim)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cache == nil {
		cache = NewModelCache(256, 0)
	}
	return &TrainedScorer{
		repo:   repo,
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger.With().Str("component", "trained_scorer").Logger(),
		now:    time.Now,
	}
}

// Cache exposes the model cache.
func (t *TrainedScorer) Cache() *ModelCache {
	return t.cache
}

// BuildSamples turns feedback into labeled vectors using current item state.
// Events for deleted items, neutral and exclude events, and events without a
// usable label are skipped.
func (t *TrainedScorer) BuildSamples(ctx context.Context, userID string, events []models.FeedbackEvent) ([]Sample, []string, int, error) {
	ids := make([]string, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	outfitItems := make(map[string][]string)
	for i := range events {
		e := &events[i]
		if _, ok := seen[e.ItemID]; !ok {
			seen[e.ItemID] = struct{}{}
			ids = append(ids, e.ItemID)
		}
		if e.OutfitID != "" && !containsString(outfitItems[e.OutfitID], e.ItemID) {
			outfitItems[e.OutfitID] = append(outfitItems[e.OutfitID], e.ItemID)
		}
	}

	items, err := t.repo.GetItems(ctx, userID, ids)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("fetch feedback items: %w", err)
	}

	samples := make([]Sample, 0, len(events))
	used := make([]string, 0, len(events))
	skipped := 0
	for i := range events {
		e := &events[i]
		if e.Signal == models.SignalNeutral || e.Signal == models.SignalExclude {
			continue
		}
		item, ok := items[e.ItemID]
		if !ok {
			skipped++
			t.logger.Debug().Str("item_id", e.ItemID).Str("feedback_id", e.ID).Msg("skipping feedback for missing item")
			continue
		}
		label, ok := Label(e)
		if !ok {
			skipped++
			continue
		}

		c := models.DefaultContext()
		if e.Context != nil {
			c = e.Context.Normalized()
		}

		var peers []models.Item
		for _, pid := range outfitItems[e.OutfitID] {
			if pid == e.ItemID {
				continue
			}
			if p, ok := items[pid]; ok {
				peers = append(peers, p)
			}
		}

		samples = append(samples, Sample{X: features.Encode(&item, c, peers), Y: label})
		used = append(used, e.ID)
	}
	return samples, used, skipped, nil
}

// Train fits a fresh network on all of a user's feedback. Fewer than
// MinSamples usable events yields an unsuccessful result and writes nothing.
func (t *TrainedScorer) Train(ctx context.Context, userID string) (*TrainResult, error) {
	release := t.train.Lock(userID)
	defer release()

	start := t.now()
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	logger := t.logger.With().Str("user_id", userID).Logger()

	events, err := t.repo.ListFeedback(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	samples, used, skipped, err := t.BuildSamples(ctx, userID, events)
	if err != nil {
		return nil, err
	}

	res := &TrainResult{Samples: len(samples), Skipped: skipped, Required: t.cfg.MinSamples}
	if len(samples) < t.cfg.MinSamples {
		res.Error = fmt.Sprintf("need at least %d feedback samples, have %d (%d more required)",
			t.cfg.MinSamples, len(samples), t.cfg.MinSamples-len(samples))
		res.Duration = t.now().Sub(start)
		logger.Info().Int("samples", len(samples)).Int("required", t.cfg.MinSamples).Msg("not enough feedback to train")
		return res, nil
	}

	seed := t.cfg.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for weight init and shuffling

	net, err := NewNetwork(t.cfg.Network, rng)
	if err != nil {
		return nil, err
	}
	fit, err := net.Fit(ctx, samples, t.cfg.Fit, rng)
	if err != nil {
		return nil, fmt.Errorf("fit network: %w", err)
	}

	model := &Model{
		UserID:         userID,
		Network:        net,
		SampleCount:    len(samples),
		ValidationLoss: fit.ValidationLoss,
		ValidationMAE:  fit.ValidationMAE,
		Epochs:         fit.Epochs,
		TrainedAt:      t.now(),
	}

	path, err := t.install(ctx, model)
	if err != nil {
		return nil, err
	}

	session := &models.TrainingSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		SampleCount:    len(samples),
		ValidationLoss: fit.ValidationLoss,
		ValidationMAE:  fit.ValidationMAE,
		ParamCount:     len(net.Params),
		Epochs:         fit.Epochs,
		ModelPath:      path,
		CreatedAt:      model.TrainedAt,
	}
	if err := t.repo.AppendTrainingSession(ctx, session); err != nil {
		return nil, fmt.Errorf("append training session: %w", err)
	}

	untrained := make([]string, 0, len(used))
	trained := make(map[string]bool, len(events))
	for i := range events {
		trained[events[i].ID] = events[i].Trained
	}
	for _, id := range used {
		if !trained[id] {
			untrained = append(untrained, id)
		}
	}
	if len(untrained) > 0 {
		if err := t.repo.MarkFeedbackTrained(ctx, untrained); err != nil {
			return nil, fmt.Errorf("mark feedback trained: %w", err)
		}
	}

	res.Success = true
	res.ValidationLoss = fit.ValidationLoss
	res.ValidationMAE = fit.ValidationMAE
	res.NNWeight = model.Weight()
	res.ParamCount = len(net.Params)
	res.Epochs = fit.Epochs
	res.ModelPath = path
	res.Duration = t.now().Sub(start)

	logger.Info().
		Int("samples", res.Samples).
		Int("epochs", res.Epochs).
		Float64("val_loss", res.ValidationLoss).
		Float64("val_mae", res.ValidationMAE).
		Float64("nn_weight", res.NNWeight).
		Int("version", model.Version).
		Dur("duration", res.Duration).
		Msg("trained preference model")

	return res, nil
}

// install numbers model one past the current version, persists it and
// swaps it into the cache.
func (t *TrainedScorer) install(ctx context.Context, model *Model) (string, error) {
	release := t.load.Lock(model.UserID)
	defer release()

	model.Version = 1
	if prev, err := t.loadLocked(ctx, model.UserID); err == nil {
		model.Version = prev.Version + 1
	}
	path, err := t.store.SaveModel(ctx, model)
	if err != nil {
		return "", fmt.Errorf("save model: %w", err)
	}
	t.cache.Swap(model)
	return path, nil
}

// Model returns the user's model from cache, loading it from the store on miss.
func (t *TrainedScorer) Model(ctx context.Context, userID string) (*Model, error) {
	if m, ok := t.cache.Get(userID); ok {
		return m, nil
	}
	release := t.load.Lock(userID)
	defer release()
	return t.loadLocked(ctx, userID)
}

// loadLocked must be called with the user's load lock held.
func (t *TrainedScorer) loadLocked(ctx context.Context, userID string) (*Model, error) {
	if m, ok := t.cache.peek(userID); ok {
		return m, nil
	}
	m, err := t.store.LoadModel(ctx, userID)
	if err != nil {
		return nil, err
	}
	t.cache.Put(m)
	return m, nil
}

// Invalidate drops the cached model so the next lookup reloads it.
func (t *TrainedScorer) Invalidate(userID string) {
	release := t.load.Lock(userID)
	defer release()
	t.cache.Invalidate(userID)
}

// ScoreItem runs the network on one item in context.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func ScoreItem(m *Model, item *models.Item, c models.Context, peers []models.Item) (float64, error) {
	if m == nil || m.Network == nil {
		return 0, ErrModelNotFound
	}
	p, err := m.Network.Predict(features.Encode(item, c, peers))
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("non-finite prediction for item %s", item.ID)
	}
	return p, nil
}

// ScoreOutfit is the mean of leave-one-out item scores.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func ScoreOutfit(m *Model, items []models.Item, c models.Context) (float64, error) {
	if len(items) == 0 {
		return 0, errors.New("empty outfit")
	}
	var sum float64
	for i := range items {
		p, err := ScoreItem(m, &items[i], c, features.Peers(items, i))
		if err != nil {
			return 0, err
		}
		sum += p
	}
	return sum / float64(len(items)), nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
