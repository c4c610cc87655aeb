// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/algorithms"
	"github.com/mdcscry/thread/internal/recommend/generator"
	"github.com/mdcscry/thread/internal/recommend/packing"
	"github.com/mdcscry/thread/internal/recommend/preference"
	"github.com/mdcscry/thread/internal/recommend/reranking"
	"github.com/mdcscry/thread/internal/validation"
)

// Training outcomes reported to metrics.
const (
	outcomeSuccess      = "success"
	outcomeInsufficient = "insufficient"
	outcomeError        = "error"
)

// Engine generates, scores and diversifies outfits, records feedback and
// plans trips. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	repo    Repository
	weather WeatherProvider

	trainer   *algorithms.TrainedScorer
	blender   *algorithms.BlendedScorer
	rerankers []reranking.Reranker
	optimizer *packing.Optimizer

	// Random source for per-request seeds (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	now func() time.Time
}

// NewEngine creates an engine over repo, persisting trained models in store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, repo Repository, store algorithms.ModelStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if store == nil {
		return nil, errors.New("model store is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cache := algorithms.NewModelCache(cfg.Training.ModelCacheSize, cfg.Training.ModelCacheTTL)
	trainer := algorithms.NewTrainedScorer(repo, store, cache, cfg.TrainerConfig(), logger)

	rerankers := make([]reranking.Reranker, 0, 2)
	if cfg.Diversity.MMRLambda < 1 {
		rerankers = append(rerankers, reranking.NewMMR(cfg.Diversity.MMRLambda))
	}
	rerankers = append(rerankers, reranking.NewDiversity())

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		repo:      repo,
		trainer:   trainer,
		blender:   algorithms.NewBlendedScorer(trainer, logger),
		rerankers: rerankers,
		optimizer: packing.New(cfg.PackingConfig(), logger),
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for outfit shuffling
		now:       time.Now,
	}, nil
}

// SetWeatherProvider enables weather resolution for requests that carry a
// location but no temperature.
func (e *Engine) SetWeatherProvider(w WeatherProvider) {
	e.weather = w
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Trainer exposes the trained scorer for cache administration.
func (e *Engine) Trainer() *algorithms.TrainedScorer {
	return e.trainer
}

func (e *Engine) nextRand() *rand.Rand {
	e.rngMu.Lock()
	seed := e.rng.Int63()
	e.rngMu.Unlock()
	return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for outfit shuffling
}

// scored is a candidate with the facts used to rank it.
type scored struct {
	outfit models.Outfit
	blend  algorithms.BlendResult
	rule   algorithms.RuleResult
	order  int
}

// GenerateOutfits builds, scores and diversifies outfits for a context.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func (e *Engine) GenerateOutfits(ctx context.Context, userID string, c models.Context) (*GenerateResult, error) {
	start := e.now()
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	c = c.Normalized()
	if verr := validation.ValidateStruct(&c); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, verr.Error())
	}

	logger := e.logger.With().Str("user_id", userID).Str("occasion", c.Occasion).Logger()
	e.resolveWeather(ctx, &c, logger)

	target := c.NumCandidates
	if target <= 0 {
		target = e.config.Generation.DefaultCandidates
	}
	target = min(target, e.config.Generation.MaxCandidates)
	limit := c.Limit
	if limit <= 0 {
		limit = e.config.Generation.DefaultLimit
	}
	limit = min(limit, e.config.Generation.MaxLimit)

	filter := models.ItemFilter{
		TemperatureF:    c.TemperatureF,
		FormalityTarget: c.Formality(),
		FormalityWindow: models.DefaultFormalityWindow,
	}
	items, err := e.repo.ListEligibleItems(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list eligible items: %w", err)
	}
	items = generator.Filter(items, c)

	result := &GenerateResult{Outfits: []models.Outfit{}, Context: c}
	if len(items) == 0 {
		metrics.EmptyPoolRequests.Inc()
		result.Error = "no eligible items for this context; add items or relax the occasion and weather"
		logger.Info().Msg("no eligible items")
		return result, nil
	}

	candidates := generator.New(e.nextRand(), e.config.GeneratorConfig()).Generate(items, c, target)
	result.TotalGenerated = len(candidates)
	if len(candidates) == 0 {
		metrics.EmptyPoolRequests.Inc()
		result.Error = "eligible items cannot form an outfit; a top with a bottom, or a dress, is required"
		logger.Info().Int("eligible", len(items)).Msg("no complete outfit possible")
		return result, nil
	}

	model := e.blender.Resolve(ctx, userID)
	if model != nil {
		result.ModelVersion = model.Version
	}
	profile := e.profileOrNil(ctx, userID, logger)

	ranked, err := e.scoreAll(ctx, candidates, model, &c, profile)
	if err != nil {
		return nil, err
	}

	outfits := make([]models.Outfit, len(ranked))
	methods := make(map[string]int, 2)
	for i := range ranked {
		outfits[i] = ranked[i].outfit
		methods[ranked[i].blend.Method]++
	}
	// The item cap runs last and alone decides the result size.
	for i, rr := range e.rerankers {
		k := len(outfits)
		if i == len(e.rerankers)-1 {
			k = limit
		}
		outfits = rr.Rerank(ctx, outfits, k)
	}
	if outfits == nil {
		outfits = []models.Outfit{}
	}

	now := e.now()
	records := make([]models.OutfitRecord, len(outfits))
	for i := range outfits {
		o := &outfits[i]
		o.ID = uuid.NewString()
		o.UserID = userID
		o.CreatedAt = now
		records[i] = models.OutfitRecord{
			ID:        o.ID,
			UserID:    userID,
			ItemIDs:   o.ItemIDs(),
			Occasion:  c.Occasion,
			Context:   &c,
			Score:     o.Score,
			CreatedAt: now,
		}
	}
	if len(records) > 0 {
		if err := e.repo.SaveOutfits(ctx, records); err != nil {
			return nil, fmt.Errorf("save outfits: %w", err)
		}
	}
	result.Outfits = outfits

	metrics.RecordGenerate(len(outfits), methods, e.now().Sub(start))
	logger.Debug().
		Int("eligible", len(items)).
		Int("candidates", len(candidates)).
		Int("returned", len(outfits)).
		Int("model_version", result.ModelVersion).
		Dur("latency", e.now().Sub(start)).
		Msg("outfits generated")

	return result, nil
}

// scoreAll scores candidates concurrently and returns them ranked by blended
// score, then rule score, then generation order.
func (e *Engine) scoreAll(ctx context.Context, candidates []models.Outfit, model *algorithms.Model, c *models.Context, profile *preference.ColorProfile) ([]scored, error) {
	out := make([]scored, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Generation.ScoreConcurrency)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := candidates[i]
			items := o.Items()
			s := scored{
				blend: e.blender.Score(model, items, *c),
				rule:  algorithms.RuleScore(items, c),
				order: i,
			}
			o.Score = s.blend.Score
			o.Method = s.blend.Method
			o.ScoreBreakdown = map[string]float64{
				"ema":     s.blend.EMA,
				"rule":    s.rule.Score,
				"harmony": s.rule.Harmony,
			}
			if s.blend.Method == algorithms.MethodBlend {
				o.ScoreBreakdown["nn"] = s.blend.NN
				o.ScoreBreakdown["nn_weight"] = s.blend.Weight
			}
			if profile != nil {
				o.ScoreBreakdown["palette"] = preference.PaletteConsistency(items, profile)
			}
			s.outfit = o
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].blend.Score != out[b].blend.Score {
			return out[a].blend.Score > out[b].blend.Score
		}
		if out[a].rule.Score != out[b].rule.Score {
			return out[a].rule.Score > out[b].rule.Score
		}
		return out[a].order < out[b].order
	})
	return out, nil
}

// resolveWeather fills the temperature from the weather provider when the
// request names a location but carries no reading. Failures leave the
// context without weather.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) resolveWeather(ctx context.Context, c *models.Context, logger zerolog.Logger) {
	if e.weather == nil || c.TemperatureF != nil || strings.TrimSpace(c.Location) == "" {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, e.config.WeatherTimeout)
	defer cancel()

	temp, err := e.weather.CurrentTemperatureF(wctx, c.Location)
	if err != nil {
		logger.Warn().Err(err).Str("location", c.Location).Msg("weather lookup failed, generating without temperature")
		return
	}
	c.TemperatureF = &temp
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) profileOrNil(ctx context.Context, userID string, logger zerolog.Logger) *preference.ColorProfile {
	p, err := e.ColorProfile(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("color profile unavailable")
		return nil
	}
	if p.Total == 0 {
		return nil
	}
	return &p
}

// ColorProfile builds the user's color histogram and family affinities
// from reviewed, active items.
func (e *Engine) ColorProfile(ctx context.Context, userID string) (preference.ColorProfile, error) {
	items, err := e.repo.ListEligibleItems(ctx, userID, models.ItemFilter{IncludeUnavailable: true})
	if err != nil {
		return preference.ColorProfile{}, fmt.Errorf("list items: %w", err)
	}
	return preference.BuildColorProfile(items), nil
}

// RecordFeedback applies one signal to every item of a stored outfit and
// appends a feedback event per item, in one repository write. Zero-weight
// signals are stored but leave scores untouched.
func (e *Engine) RecordFeedback(ctx context.Context, userID, outfitID string, signal models.SignalType) (*FeedbackResult, error) {
	weight, ok := preference.Weight(signal)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignal, signal)
	}

	rec, err := e.repo.GetOutfit(ctx, userID, outfitID)
	if err != nil {
		return nil, fmt.Errorf("get outfit: %w", err)
	}
	items, missing, err := e.outfitItems(ctx, userID, &rec)
	if err != nil {
		return nil, err
	}

	patches := preference.UpdateOutfit(items, weight)
	events := e.feedbackEvents(userID, outfitID, signal, rec.Context, items)
	if err := e.repo.ApplyFeedback(ctx, &FeedbackWrite{UserID: userID, Patches: patches, Events: events}); err != nil {
		return nil, fmt.Errorf("apply feedback: %w", err)
	}

	metrics.RecordFeedback(string(signal), len(patches))
	e.logger.Debug().
		Str("user_id", userID).
		Str("outfit_id", outfitID).
		Str("signal", string(signal)).
		Int("items_updated", len(patches)).
		Msg("feedback recorded")

	return &FeedbackResult{
		UserID:       userID,
		OutfitID:     outfitID,
		Signal:       signal,
		Weight:       weight,
		ItemsUpdated: len(patches),
		Missing:      missing,
		EventIDs:     eventIDs(events),
	}, nil
}

// RecordItemFeedback applies a signal to a single item, for channels that
// target one piece. A loved_item signal also sets the loved flag.
func (e *Engine) RecordItemFeedback(ctx context.Context, userID, itemID string, signal models.SignalType, c *models.Context) (*FeedbackResult, error) {
	weight, ok := preference.Weight(signal)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignal, signal)
	}

	item, err := e.repo.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	patch, changed := preference.Update(&item, weight)
	if signal == models.SignalLovedItem && !item.Loved {
		loved := true
		patch.Loved = &loved
		changed = true
	}
	w := &FeedbackWrite{UserID: userID}
	updated := 0
	if changed {
		w.Patches = map[string]models.ItemPatch{itemID: patch}
		if patch.EMAScore != nil {
			updated = 1
		}
	}

	var snapshot *models.Context
	if c != nil {
		n := c.Normalized()
		snapshot = &n
	}
	events := e.feedbackEvents(userID, "", signal, snapshot, []models.Item{item})
	w.Events = events
	if err := e.repo.ApplyFeedback(ctx, w); err != nil {
		return nil, fmt.Errorf("apply feedback: %w", err)
	}

	metrics.RecordFeedback(string(signal), updated)
	return &FeedbackResult{
		UserID:       userID,
		ItemID:       itemID,
		Signal:       signal,
		Weight:       weight,
		ItemsUpdated: updated,
		EventIDs:     eventIDs(events),
	}, nil
}

// MarkAsWorn confirms an outfit was worn: every item gets the full positive
// weight, its wear counter and last-worn time, and the outfit is flagged.
// Repeating the confirmation changes nothing.
func (e *Engine) MarkAsWorn(ctx context.Context, userID, outfitID string) (*FeedbackResult, error) {
	rec, err := e.repo.GetOutfit(ctx, userID, outfitID)
	if err != nil {
		return nil, fmt.Errorf("get outfit: %w", err)
	}
	res := &FeedbackResult{
		UserID:   userID,
		OutfitID: outfitID,
		Signal:   models.SignalWornConfirmed,
		Weight:   preference.WornWeight,
		EventIDs: []string{},
	}
	if rec.Worn {
		res.AlreadyWorn = true
		return res, nil
	}

	items, missing, err := e.outfitItems(ctx, userID, &rec)
	if err != nil {
		return nil, err
	}
	res.Missing = missing

	now := e.now()
	patches := preference.MarkWorn(items, now)
	events := e.feedbackEvents(userID, outfitID, models.SignalWornConfirmed, rec.Context, items)
	err = e.repo.ApplyFeedback(ctx, &FeedbackWrite{
		UserID:       userID,
		Patches:      patches,
		Events:       events,
		WornOutfitID: outfitID,
		WornAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("apply feedback: %w", err)
	}

	metrics.RecordFeedback(string(models.SignalWornConfirmed), len(patches))
	res.ItemsUpdated = len(patches)
	res.EventIDs = eventIDs(events)
	return res, nil
}

// outfitItems batch-loads an outfit's items in outfit order and reports ids
// that no longer exist.
func (e *Engine) outfitItems(ctx context.Context, userID string, rec *models.OutfitRecord) ([]models.Item, []string, error) {
	found, err := e.repo.GetItems(ctx, userID, rec.ItemIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get outfit items: %w", err)
	}
	items := make([]models.Item, 0, len(rec.ItemIDs))
	var missing []string
	for _, id := range rec.ItemIDs {
		it, ok := found[id]
		if !ok {
			missing = append(missing, id)
			e.logger.Debug().Str("outfit_id", rec.ID).Str("item_id", id).Msg("outfit references a missing item")
			continue
		}
		items = append(items, it)
	}
	return items, missing, nil
}

func (e *Engine) feedbackEvents(userID, outfitID string, signal models.SignalType, c *models.Context, items []models.Item) []models.FeedbackEvent {
	now := e.now()
	events := make([]models.FeedbackEvent, len(items))
	for i := range items {
		events[i] = models.FeedbackEvent{
			ID:        uuid.NewString(),
			UserID:    userID,
			ItemID:    items[i].ID,
			OutfitID:  outfitID,
			Signal:    signal,
			Context:   c,
			CreatedAt: now,
		}
	}
	return events
}

func eventIDs(events []models.FeedbackEvent) []string {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	return ids
}

// TrainModel trains the user's preference network. Insufficient feedback is
// an unsuccessful result, not an error.
func (e *Engine) TrainModel(ctx context.Context, userID string) (*algorithms.TrainResult, error) {
	start := e.now()
	res, err := e.trainer.Train(ctx, userID)
	switch {
	case err != nil:
		metrics.RecordTraining(outcomeError, e.now().Sub(start))
		return nil, fmt.Errorf("train model: %w", err)
	case !res.Success:
		metrics.RecordTraining(outcomeInsufficient, e.now().Sub(start))
	default:
		metrics.RecordTraining(outcomeSuccess, e.now().Sub(start))
	}
	return res, nil
}

// RetrainPending trains every user holding enough untrained feedback.
// One user's failure does not stop the pass.
func (e *Engine) RetrainPending(ctx context.Context) (*RetrainSummary, error) {
	start := e.now()
	users, err := e.repo.ListUsersWithUntrainedFeedback(ctx, e.config.Training.MinNewFeedback)
	if err != nil {
		return nil, fmt.Errorf("list users with new feedback: %w", err)
	}

	summary := &RetrainSummary{Users: len(users)}
	for _, userID := range users {
		if ctx.Err() != nil {
			break
		}
		res, err := e.TrainModel(ctx, userID)
		switch {
		case err != nil:
			summary.Failed++
			e.logger.Error().Err(err).Str("user_id", userID).Msg("retrain failed")
		case !res.Success:
			summary.Skipped++
		default:
			summary.Trained++
		}
	}
	summary.Duration = e.now().Sub(start)

	e.logger.Info().
		Int("users", summary.Users).
		Int("trained", summary.Trained).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("retrain pass complete")

	return summary, ctx.Err()
}

// PlanTrip selects a packing list for a trip from the user's eligible items.
// Input deficiencies come back as a plan with Error set.
func (e *Engine) PlanTrip(ctx context.Context, userID string, tc models.TripConstraints) (*models.TripPlan, error) {
	if verr := validation.ValidateStruct(&tc); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, verr.Error())
	}

	items, err := e.repo.ListEligibleItems(ctx, userID, models.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list eligible items: %w", err)
	}
	pool := packing.FilterClimate(items, tc.Climate)

	if tc.Seed == 0 {
		e.rngMu.Lock()
		tc.Seed = e.rng.Int63()
		e.rngMu.Unlock()
	}

	plan := e.optimizer.Plan(ctx, pool, tc)
	for i := range plan.Outfits {
		plan.Outfits[i].UserID = userID
	}
	for a := range plan.Activities {
		for i := range plan.Activities[a].Outfits {
			plan.Activities[a].Outfits[i].UserID = userID
		}
	}
	return plan, nil
}
