// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package packing

import (
	"strings"

	"github.com/mdcscry/thread/internal/models"
)

// Activity describes what a planned trip activity needs.
type Activity struct {
	Name         string
	MinFormality int
	MaxFormality int
	Categories   []models.Category
}

var (
	casualCategories = []models.Category{
		models.CategoryTop, models.CategoryBottom, models.CategoryDress,
		models.CategoryShoes, models.CategoryOuterwear, models.CategoryAccessory,
	}
	dressyCategories = []models.Category{
		models.CategoryTop, models.CategoryBottom, models.CategoryDress,
		models.CategoryShoes, models.CategoryOuterwear, models.CategoryBag,
		models.CategoryAccessory,
	}
	activeCategories = []models.Category{
		models.CategoryTop, models.CategoryBottom, models.CategoryShoes,
		models.CategoryOuterwear,
	}
)

var activityTable = map[string]Activity{
	"casual":      {MinFormality: 1, MaxFormality: 5, Categories: casualCategories},
	"sightseeing": {MinFormality: 1, MaxFormality: 5, Categories: casualCategories},
	"travel":      {MinFormality: 1, MaxFormality: 5, Categories: casualCategories},
	"beach":       {MinFormality: 1, MaxFormality: 3, Categories: casualCategories},
	"hiking":      {MinFormality: 1, MaxFormality: 3, Categories: activeCategories},
	"athletic":    {MinFormality: 1, MaxFormality: 3, Categories: activeCategories},
	"work":        {MinFormality: 5, MaxFormality: 8, Categories: dressyCategories},
	"business":    {MinFormality: 5, MaxFormality: 8, Categories: dressyCategories},
	"dinner":      {MinFormality: 4, MaxFormality: 8, Categories: dressyCategories},
	"date":        {MinFormality: 4, MaxFormality: 8, Categories: dressyCategories},
	"party":       {MinFormality: 4, MaxFormality: 9, Categories: dressyCategories},
	"formal":      {MinFormality: 7, MaxFormality: 10, Categories: dressyCategories},
}

// LookupActivity returns the requirements for an activity. Unknown
// activities accept any formality and every category.
func LookupActivity(name string) Activity {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := activityTable[key]; ok {
		a.Name = key
		return a
	}
	return Activity{Name: key, MinFormality: 1, MaxFormality: 10, Categories: dressyCategories}
}

// Relevant reports whether an item can be worn for the activity. Items with
// unknown formality are accepted.
func (a *Activity) Relevant(item *models.Item) bool {
	if item.Formality > 0 && (item.Formality < a.MinFormality || item.Formality > a.MaxFormality) {
		return false
	}
	for _, c := range a.Categories {
		if c == item.Category {
			return true
		}
	}
	return false
}

// TargetFormality is the midpoint of the activity's formality range.
func (a *Activity) TargetFormality() int {
	return (a.MinFormality + a.MaxFormality + 1) / 2
}

// Outfit roles an activity needs filled to be coverable.
const (
	roleUpper  uint8 = 1 << iota // top or dress
	roleBottom                   // bottom
	roleShoes                    // shoes

	allRoles = roleUpper | roleBottom | roleShoes
)

// role returns the role an item fills for the activity, or 0.
func (a *Activity) role(item *models.Item) uint8 {
	if !a.Relevant(item) {
		return 0
	}
	switch item.Category {
	case models.CategoryTop, models.CategoryDress:
		return roleUpper
	case models.CategoryBottom:
		return roleBottom
	case models.CategoryShoes:
		return roleShoes
	default:
		return 0
	}
}
