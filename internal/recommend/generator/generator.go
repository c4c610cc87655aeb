// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package generator builds candidate outfits from an eligible item pool.
//
// Candidates are (top, bottom) pairs and single dresses, each completed with
// a random shoe and, depending on the context and a coin flip, outerwear, a
// bag and one or two accessories. The candidate list is shuffled and cut to
// the requested size. All randomness comes from the injected *rand.Rand, so
// a fixed seed yields a fixed candidate list.
package generator

import (
	"math/rand"
	"strings"

	"github.com/mdcscry/thread/internal/models"
)

// DefaultTarget is the candidate count used when a request does not set one.
const DefaultTarget = 50

// Config tunes candidate construction.
type Config struct {
	// Target is the default number of candidates. Default: 50.
	Target int

	// OuterwearBelowF is the temperature under which outerwear may be added.
	// Default: 60.
	OuterwearBelowF float64

	// AccessoryProbability is the chance a candidate gets accessories.
	// Default: 0.4.
	AccessoryProbability float64

	// MaxAccessories bounds accessories per candidate. Default: 2.
	MaxAccessories int

	// BagOccasions lists occasions where a bag may be added.
	BagOccasions []string
}

// DefaultConfig returns the standard generator configuration.
func DefaultConfig() Config {
	return Config{
		Target:               DefaultTarget,
		OuterwearBelowF:      60,
		AccessoryProbability: 0.4,
		MaxAccessories:       2,
		BagOccasions:         []string{models.OccasionDinner, models.OccasionWork, models.OccasionDate},
	}
}

// Generator assembles candidate outfits. A Generator is not safe for
// concurrent use because it owns its random source; create one per request.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator drawing from rng.
func New(rng *rand.Rand, cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Target <= 0 {
		cfg.Target = def.Target
	}
	if cfg.OuterwearBelowF == 0 {
		cfg.OuterwearBelowF = def.OuterwearBelowF
	}
	if cfg.AccessoryProbability <= 0 {
		cfg.AccessoryProbability = def.AccessoryProbability
	}
	if cfg.MaxAccessories <= 0 {
		cfg.MaxAccessories = def.MaxAccessories
	}
	if cfg.BagOccasions == nil {
		cfg.BagOccasions = def.BagOccasions
	}
	return &Generator{cfg: cfg, rng: rng}
}

// Pool groups eligible items by slot.
type Pool struct {
	Tops        []models.Item
	Bottoms     []models.Item
	Dresses     []models.Item
	Shoes       []models.Item
	Outerwear   []models.Item
	Bags        []models.Item
	Accessories []models.Item
}

// Group sorts items into a Pool. Items with an unknown category are ignored.
func Group(items []models.Item) Pool {
	var p Pool
	for i := range items {
		it := items[i]
		switch it.Category {
		case models.CategoryTop:
			p.Tops = append(p.Tops, it)
		case models.CategoryBottom:
			p.Bottoms = append(p.Bottoms, it)
		case models.CategoryDress:
			p.Dresses = append(p.Dresses, it)
		case models.CategoryShoes:
			p.Shoes = append(p.Shoes, it)
		case models.CategoryOuterwear:
			p.Outerwear = append(p.Outerwear, it)
		case models.CategoryBag:
			p.Bags = append(p.Bags, it)
		case models.CategoryAccessory:
			p.Accessories = append(p.Accessories, it)
		}
	}
	return p
}

// Bases is the number of base candidates the pool supports before
// truncation: every (top, bottom) pair plus every dress.
func (p *Pool) Bases() int {
	return len(p.Tops)*len(p.Bottoms) + len(p.Dresses)
}

// Generate builds up to target candidates for the context. A non-positive
// target uses the configured default. Every returned outfit holds at least
// one item.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func (g *Generator) Generate(items []models.Item, c models.Context, target int) []models.Outfit {
	if target <= 0 {
		target = g.cfg.Target
	}
	pool := Group(items)
	occasion := strings.ToLower(c.Occasion)

	candidates := make([]models.Outfit, 0, pool.Bases())
	for ti := range pool.Tops {
		for bi := range pool.Bottoms {
			o := models.Outfit{Occasion: occasion}
			o.Set(models.SlotTop, pool.Tops[ti])
			o.Set(models.SlotBottom, pool.Bottoms[bi])
			g.complete(&o, &pool, &c, true)
			candidates = append(candidates, o)
		}
	}
	for di := range pool.Dresses {
		o := models.Outfit{Occasion: occasion}
		o.Set(models.SlotDress, pool.Dresses[di])
		g.complete(&o, &pool, &c, false)
		candidates = append(candidates, o)
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > target {
		candidates = candidates[:target]
	}
	return candidates
}

// complete adds shoes, outerwear and, for separates, bag and accessories.
func (g *Generator) complete(o *models.Outfit, pool *Pool, c *models.Context, separates bool) {
	if len(pool.Shoes) > 0 {
		o.Set(models.SlotShoes, pool.Shoes[g.rng.Intn(len(pool.Shoes))])
	}

	if len(pool.Outerwear) > 0 && c.TemperatureF != nil && *c.TemperatureF < g.cfg.OuterwearBelowF && g.coin() {
		o.Set(models.SlotOuterwear, pool.Outerwear[g.rng.Intn(len(pool.Outerwear))])
	}

	if !separates {
		return
	}

	if len(pool.Bags) > 0 && g.bagOccasion(c.Occasion) && g.coin() {
		o.Set(models.SlotBag, pool.Bags[g.rng.Intn(len(pool.Bags))])
	}

	if len(pool.Accessories) > 0 && g.rng.Float64() < g.cfg.AccessoryProbability {
		n := 1 + g.rng.Intn(g.cfg.MaxAccessories)
		if n > len(pool.Accessories) {
			n = len(pool.Accessories)
		}
		for _, idx := range g.rng.Perm(len(pool.Accessories))[:n] {
			o.Accessories = append(o.Accessories, pool.Accessories[idx])
		}
	}
}

func (g *Generator) coin() bool {
	return g.rng.Intn(2) == 0
}

func (g *Generator) bagOccasion(occasion string) bool {
	occasion = strings.ToLower(occasion)
	for _, o := range g.cfg.BagOccasions {
		if o == occasion {
			return true
		}
	}
	return false
}

// Filter applies the eligibility filter for a context: temperature range
// containment and a formality window around the context target.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func Filter(items []models.Item, c models.Context) []models.Item {
	f := models.ItemFilter{
		TemperatureF:    c.TemperatureF,
		FormalityTarget: c.Formality(),
		FormalityWindow: models.DefaultFormalityWindow,
	}
	out := make([]models.Item, 0, len(items))
	for i := range items {
		if f.Matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
