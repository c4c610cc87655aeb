// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

import (
	"strings"
	"time"
)

// Category is the outfit slot an item fills.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategoryShoes     Category = "shoes"
	CategoryOuterwear Category = "outerwear"
	CategoryBag       Category = "bag"
	CategoryAccessory Category = "accessory"
)

// Categories lists every slot category in outfit order.
var Categories = []Category{
	CategoryTop, CategoryBottom, CategoryDress, CategoryShoes,
	CategoryOuterwear, CategoryBag, CategoryAccessory,
}

// ParseCategory normalizes a free-form category label. Unknown labels return
// the empty category.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "tops", "shirt", "t-shirt", "blouse", "sweater", "hoodie":
		return CategoryTop
	case "bottom", "bottoms", "pants", "jeans", "shorts", "skirt", "trousers":
		return CategoryBottom
	case "dress", "dresses", "jumpsuit":
		return CategoryDress
	case "shoes", "shoe", "sneakers", "boots", "heels", "sandals", "footwear":
		return CategoryShoes
	case "outerwear", "jacket", "coat", "blazer":
		return CategoryOuterwear
	case "bag", "bags", "purse", "handbag", "backpack":
		return CategoryBag
	case "accessory", "accessories", "jewelry", "belt", "scarf", "hat":
		return CategoryAccessory
	default:
		return ""
	}
}

// Item is a single clothing piece in a user's wardrobe.
//
// Items are created by ingestion (outside this engine) and mutated by
// feedback updates. The engine never deletes items; soft deletion is expressed
// through the Archived flag.
type Item struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`

	// Category is the outfit slot; Subcategory is the finer garment label
	// ("Jeans", "Sneakers") used for feature encoding.
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`

	// PrimaryColor and SecondaryColor are hex strings such as "#1f2a44".
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`

	// Colors holds the human color names produced by tagging ("navy", "camel").
	Colors []string `json:"colors,omitempty"`

	Pattern  string `json:"pattern,omitempty"`
	Material string `json:"material,omitempty"`

	// Formality is 1-10; zero means unknown.
	Formality int `json:"formality,omitempty"`

	// TempMinF and TempMaxF bound the comfortable temperature range in °F.
	TempMinF    *float64 `json:"temp_min_f,omitempty"`
	TempMaxF    *float64 `json:"temp_max_f,omitempty"`
	WeightClass string   `json:"weight_class,omitempty"`

	// EMAScore is the online preference score in [0,1]; nil until the first
	// feedback update.
	EMAScore *float64 `json:"ema_score,omitempty"`
	EMACount int      `json:"ema_count"`

	Loved     bool `json:"loved"`
	InLaundry bool `json:"in_laundry"`
	InStorage bool `json:"in_storage"`
	Reviewed  bool `json:"reviewed"`
	Archived  bool `json:"archived"`

	WearCount  int        `json:"wear_count"`
	LastWornAt *time.Time `json:"last_worn_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Eligible reports whether the item can be offered in an outfit at all.
func (i *Item) Eligible() bool {
	return !i.InLaundry && !i.InStorage && !i.Archived
}

// Score returns the EMA preference score, or def when the item has none.
func (i *Item) Score(def float64) float64 {
	if i.EMAScore == nil {
		return def
	}
	return *i.EMAScore
}

// ItemPatch is a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	EMAScore   *float64   `json:"ema_score,omitempty"`
	EMACount   *int       `json:"ema_count,omitempty"`
	WearCount  *int       `json:"wear_count,omitempty"`
	LastWornAt *time.Time `json:"last_worn_at,omitempty"`
	Loved      *bool      `json:"loved,omitempty"`
}

// Apply writes the patch onto an item in place.
func (p *ItemPatch) Apply(item *Item) {
	if p.EMAScore != nil {
		v := *p.EMAScore
		item.EMAScore = &v
	}
	if p.EMACount != nil {
		item.EMACount = *p.EMACount
	}
	if p.WearCount != nil {
		item.WearCount = *p.WearCount
	}
	if p.LastWornAt != nil {
		t := *p.LastWornAt
		item.LastWornAt = &t
	}
	if p.Loved != nil {
		item.Loved = *p.Loved
	}
}

// DefaultFormalityWindow is how far an item's formality may sit from the
// request target before the item is filtered out.
const DefaultFormalityWindow = 3

// ItemFilter describes which items are eligible for a request.
type ItemFilter struct {
	// TemperatureF excludes items whose temperature range does not contain it.
	TemperatureF *float64

	// FormalityTarget with FormalityWindow excludes items whose known
	// formality differs from the target by more than the window.
	// Zero disables the formality check.
	FormalityTarget int
	FormalityWindow int

	// Categories restricts the result to the given slots when non-empty.
	Categories []Category

	// IncludeUnavailable keeps laundry and storage items.
	IncludeUnavailable bool
}

// Matches reports whether an item passes the filter.
func (f *ItemFilter) Matches(item *Item) bool {
	if item.Archived {
		return false
	}
	if !f.IncludeUnavailable && !item.Eligible() {
		return false
	}

	if f.TemperatureF != nil {
		t := *f.TemperatureF
		if item.TempMinF != nil && t < *item.TempMinF {
			return false
		}
		if item.TempMaxF != nil && t > *item.TempMaxF {
			return false
		}
	}

	if f.FormalityTarget > 0 && item.Formality > 0 {
		window := f.FormalityWindow
		if window <= 0 {
			window = DefaultFormalityWindow
		}
		diff := item.Formality - f.FormalityTarget
		if diff < 0 {
			diff = -diff
		}
		if diff > window {
			return false
		}
	}

	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if item.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// OverlapsRange reports whether the item's temperature range intersects
// [minF, maxF]. Items without a range overlap everything.
func (i *Item) OverlapsRange(minF, maxF float64) bool {
	if i.TempMinF != nil && *i.TempMinF > maxF {
		return false
	}
	if i.TempMaxF != nil && *i.TempMaxF < minF {
		return false
	}
	return true
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
