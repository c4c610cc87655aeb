// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package packing selects a bounded set of items for a trip.
//
// The optimizer maximizes the number of planned activities for which the
// packed set can assemble a complete outfit (an upper garment, a bottom and
// shoes, all suited to the activity). Each of N seeded restarts shuffles the
// pool, builds a selection greedily and then improves it by first-improvement
// swap search. The best selection across restarts wins, and up to five
// rule-scored outfits are assembled per coverable activity.
package packing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/algorithms"
	"github.com/mdcscry/thread/internal/recommend/generator"
)

// Config tunes the optimizer.
type Config struct {
	// Restarts is the number of independent randomized restarts. Default: 20.
	Restarts int

	// ScanWindow bounds how many shuffled candidates each greedy step
	// examines. Default: 50.
	ScanWindow int

	// OutfitsPerActivity caps the outfits assembled per activity. Default: 5.
	OutfitsPerActivity int

	// DefaultMaxItems applies when a request does not set MaxItems.
	// Default: 12.
	DefaultMaxItems int

	// Seed is used when a request carries no seed. Zero uses the clock.
	Seed int64
}

// DefaultConfig returns the standard optimizer configuration.
func DefaultConfig() Config {
	return Config{
		Restarts:           20,
		ScanWindow:         50,
		OutfitsPerActivity: 5,
		DefaultMaxItems:    12,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Restarts < 1 {
		return errors.New("packing restarts must be at least 1")
	}
	if c.ScanWindow < 1 {
		return errors.New("packing scan window must be at least 1")
	}
	if c.OutfitsPerActivity < 0 {
		return errors.New("packing outfits per activity must not be negative")
	}
	if c.DefaultMaxItems < 1 {
		return errors.New("packing default max items must be at least 1")
	}
	return nil
}

// Optimizer plans trips. It is safe for concurrent use; each Plan call owns
// its random source.
type Optimizer struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates an optimizer. Zero config fields take their defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Optimizer {
	def := DefaultConfig()
	if cfg.Restarts <= 0 {
		cfg.Restarts = def.Restarts
	}
	if cfg.ScanWindow <= 0 {
		cfg.ScanWindow = def.ScanWindow
	}
	if cfg.OutfitsPerActivity <= 0 {
		cfg.OutfitsPerActivity = def.OutfitsPerActivity
	}
	if cfg.DefaultMaxItems <= 0 {
		cfg.DefaultMaxItems = def.DefaultMaxItems
	}
	return &Optimizer{
		cfg:    cfg,
		logger: logger.With().Str("component", "packing_optimizer").Logger(),
	}
}

// FilterClimate keeps eligible items whose temperature range overlaps the
// trip climate. A nil climate keeps every eligible item.
func FilterClimate(items []models.Item, climate *models.Climate) []models.Item {
	out := make([]models.Item, 0, len(items))
	for i := range items {
		it := &items[i]
		if !it.Eligible() {
			continue
		}
		if climate != nil && !it.OverlapsRange(climate.MinTempF, climate.MaxTempF) {
			continue
		}
		out = append(out, *it)
	}
	return out
}

// gain orders selections: more coverable activities first, then more
// filled activity roles.
type gain struct {
	covered int
	roles   int
}

func (g gain) better(h gain) bool {
	if g.covered != h.covered {
		return g.covered > h.covered
	}
	return g.roles > h.roles
}

// evaluator scores selections of pool indexes.
type evaluator struct {
	masks [][]uint8 // [item][activity]
	acc   []uint8
}

func newEvaluator(pool []models.Item, activities []Activity) *evaluator {
	e := &evaluator{
		masks: make([][]uint8, len(pool)),
		acc:   make([]uint8, len(activities)),
	}
	for i := range pool {
		e.masks[i] = make([]uint8, len(activities))
		for a := range activities {
			e.masks[i][a] = activities[a].role(&pool[i])
		}
	}
	return e
}

func (e *evaluator) eval(sel []int) gain {
	for a := range e.acc {
		e.acc[a] = 0
	}
	for _, idx := range sel {
		for a, m := range e.masks[idx] {
			e.acc[a] |= m
		}
	}
	var g gain
	for _, m := range e.acc {
		if m == allRoles {
			g.covered++
		}
		for b := m; b != 0; b &= b - 1 {
			g.roles++
		}
	}
	return g
}

// selection is one restart's outcome.
type selection struct {
	items []int
	gain  gain
}

// Plan selects items for the trip and assembles outfits per activity.
// Input deficiencies produce an empty plan with Error set.
func (o *Optimizer) Plan(ctx context.Context, pool []models.Item, tc models.TripConstraints) *models.TripPlan {
	start := time.Now()
	plan := &models.TripPlan{Items: []models.Item{}, Outfits: []models.Outfit{}, Activities: []models.ActivityPlan{}}

	activities := make([]Activity, 0, len(tc.Activities))
	for _, name := range tc.Activities {
		if strings.TrimSpace(name) == "" {
			continue
		}
		activities = append(activities, LookupActivity(name))
	}
	if len(activities) == 0 {
		plan.Error = "at least one activity is required"
		return plan
	}
	for i := range activities {
		plan.Activities = append(plan.Activities, models.ActivityPlan{Activity: activities[i].Name, Outfits: []models.Outfit{}})
	}
	if len(pool) == 0 {
		plan.Error = "no eligible items for this trip"
		return plan
	}

	maxItems := tc.MaxItems
	if maxItems <= 0 {
		maxItems = o.cfg.DefaultMaxItems
	}

	seed := tc.Seed
	if seed == 0 {
		seed = o.cfg.Seed
	}
	if seed == 0 {
		seed = start.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for search randomization

	logger := o.logger.With().Int("pool", len(pool)).Int("max_items", maxItems).Int("activities", len(activities)).Logger()

	ev := newEvaluator(pool, activities)
	seedIdx := seedShoe(pool, activities)

	var best selection
	haveBest := false
	for r := 0; r < o.cfg.Restarts; r++ {
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Int("restart", r).Msg("packing interrupted, keeping best so far")
			break
		}

		var sel selection
		if !o.guard(logger, "greedy", func() { sel = o.greedy(ev, len(pool), seedIdx, maxItems, rng) }) {
			continue
		}
		o.guard(logger, "local_search", func() { sel = o.localSearch(ev, len(pool), sel) })

		if !haveBest || sel.gain.covered > best.gain.covered ||
			(sel.gain.covered == best.gain.covered && len(sel.items) < len(best.items)) {
			best = sel
			haveBest = true
		}
	}

	for _, idx := range best.items {
		plan.Items = append(plan.Items, pool[idx])
	}
	plan.CoveredCount = best.gain.covered
	if len(plan.Items) > 0 {
		plan.VersatilityScore = float64(plan.CoveredCount) / float64(len(plan.Items))
	}

	if !o.guard(logger, "outfits", func() { o.assemble(plan, activities, &tc, rng) }) {
		plan.Outfits = []models.Outfit{}
		for i := range plan.Activities {
			plan.Activities[i].Outfits = []models.Outfit{}
		}
	}

	plan.TotalOutfits = len(plan.Outfits)

	elapsed := time.Since(start)
	metrics.PackingDuration.Observe(elapsed.Seconds())
	metrics.PackingVersatility.Observe(plan.VersatilityScore)

	logger.Info().
		Int("selected", len(plan.Items)).
		Int("covered", plan.CoveredCount).
		Int("outfits", plan.TotalOutfits).
		Float64("versatility", plan.VersatilityScore).
		Dur("duration", elapsed).
		Msg("trip packing planned")

	return plan
}

// seedShoe picks the shoe relevant to the most activities, or -1.
func seedShoe(pool []models.Item, activities []Activity) int {
	best, bestHits := -1, -1
	for i := range pool {
		if pool[i].Category != models.CategoryShoes {
			continue
		}
		hits := 0
		for a := range activities {
			if activities[a].Relevant(&pool[i]) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

// greedy builds a selection by repeatedly adding the best of the first
// ScanWindow shuffled candidates until the budget is hit or nothing improves.
func (o *Optimizer) greedy(ev *evaluator, poolSize, seedIdx, maxItems int, rng *rand.Rand) selection {
	inSel := make([]bool, poolSize)
	sel := make([]int, 0, maxItems+1)
	if seedIdx >= 0 && maxItems > 0 {
		sel = append(sel, seedIdx)
		inSel[seedIdx] = true
	}

	order := rng.Perm(poolSize)
	cur := ev.eval(sel)

	for len(sel) < maxItems {
		bestIdx := -1
		bestGain := cur
		scanned := 0
		for _, idx := range order {
			if inSel[idx] {
				continue
			}
			if scanned >= o.cfg.ScanWindow {
				break
			}
			scanned++
			if g := ev.eval(append(sel, idx)); g.better(bestGain) {
				bestIdx, bestGain = idx, g
			}
		}
		if bestIdx < 0 {
			break
		}
		sel = append(sel, bestIdx)
		inSel[bestIdx] = true
		cur = bestGain
	}

	return selection{items: sel, gain: cur}
}

// localSearch applies first-improvement swaps that strictly increase the
// covered activity count, until a full pass finds none.
func (o *Optimizer) localSearch(ev *evaluator, poolSize int, s selection) selection {
	sel := append([]int(nil), s.items...)
	inSel := make([]bool, poolSize)
	for _, idx := range sel {
		inSel[idx] = true
	}
	cur := ev.eval(sel)

	for improved := true; improved; {
		improved = false
	pass:
		for pos := range sel {
			old := sel[pos]
			for cand := 0; cand < poolSize; cand++ {
				if inSel[cand] {
					continue
				}
				sel[pos] = cand
				if g := ev.eval(sel); g.covered > cur.covered {
					inSel[old] = false
					inSel[cand] = true
					cur = g
					improved = true
					break pass
				}
			}
			sel[pos] = old
		}
	}

	return selection{items: sel, gain: cur}
}

// assemble builds up to OutfitsPerActivity rule-scored outfits for every
// coverable activity from the packed items.
func (o *Optimizer) assemble(plan *models.TripPlan, activities []Activity, tc *models.TripConstraints, rng *rand.Rand) {
	gen := generator.New(rng, generator.DefaultConfig())

	for a := range activities {
		act := &activities[a]
		ap := &plan.Activities[a]

		var relevant []models.Item
		var roles uint8
		for i := range plan.Items {
			it := &plan.Items[i]
			if act.Relevant(it) {
				relevant = append(relevant, *it)
				roles |= act.role(it)
			}
		}
		if roles != allRoles {
			continue
		}
		ap.Coverable = true

		c := models.Context{
			Occasion:        act.Name,
			Season:          tc.Season,
			FormalityTarget: act.TargetFormality(),
		}
		if tc.Climate != nil {
			mid := (tc.Climate.MinTempF + tc.Climate.MaxTempF) / 2
			c.TemperatureF = &mid
		}

		candidates := gen.Generate(relevant, c, generator.DefaultTarget)
		for i := range candidates {
			rule := algorithms.RuleScore(candidates[i].Items(), &c)
			candidates[i].Activity = act.Name
			candidates[i].Score = rule.Score
			candidates[i].Method = "rule"
			candidates[i].ScoreBreakdown = map[string]float64{
				"rule":    rule.Score,
				"harmony": rule.Harmony,
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		if len(candidates) > o.cfg.OutfitsPerActivity {
			candidates = candidates[:o.cfg.OutfitsPerActivity]
		}

		ap.Outfits = candidates
		plan.Outfits = append(plan.Outfits, candidates...)
	}
}

// guard runs one optimization phase, converting a panic into a logged
// failure so the plan degrades instead of aborting.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (o *Optimizer) guard(logger zerolog.Logger, phase string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("phase", phase).Err(fmt.Errorf("panic: %v", r)).Msg("packing phase failed")
			ok = false
		}
	}()
	fn()
	return true
}
