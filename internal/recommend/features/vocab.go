// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package features

import (
	"strings"

	"github.com/mdcscry/thread/internal/models"
)

// Subcategories is the garment vocabulary for the first one-hot block.
var Subcategories = []string{
	"T-Shirt", "Button-Up", "Blouse", "Sweater", "Hoodie", "Jacket", "Coat",
	"Jeans", "Pants", "Shorts", "Skirt", "Dress", "Sneakers", "Boots", "Heels",
	"Accessory",
}

// Patterns is the pattern vocabulary.
var Patterns = []string{
	"solid", "striped", "plaid", "floral", "polka_dot", "graphic", "geometric", "animal_print",
}

// Materials is the material vocabulary.
var Materials = []string{
	"cotton", "denim", "wool", "silk", "linen", "polyester", "leather", "knit", "synthetic", "cashmere",
}

// Occasions, Seasons and TimesOfDay are the context vocabularies.
var (
	Occasions  = []string{models.OccasionCasual, models.OccasionWork, models.OccasionDate, models.OccasionFormal, models.OccasionAthletic}
	Seasons    = []string{models.SeasonSpring, models.SeasonSummer, models.SeasonFall, models.SeasonWinter}
	TimesOfDay = []string{models.TimeMorning, models.TimeAfternoon, models.TimeEvening}
)

// subcategoryAliases maps lower-cased labels onto the vocabulary.
var subcategoryAliases = map[string]string{
	"t-shirt": "T-Shirt", "tshirt": "T-Shirt", "tee": "T-Shirt", "tank": "T-Shirt", "top": "T-Shirt",
	"button-up": "Button-Up", "button up": "Button-Up", "shirt": "Button-Up", "oxford": "Button-Up", "polo": "Button-Up",
	"blouse":  "Blouse",
	"sweater": "Sweater", "cardigan": "Sweater", "pullover": "Sweater", "jumper": "Sweater",
	"hoodie": "Hoodie", "sweatshirt": "Hoodie",
	"jacket": "Jacket", "blazer": "Jacket", "outerwear": "Jacket", "vest": "Jacket",
	"coat": "Coat", "parka": "Coat", "trench": "Coat", "overcoat": "Coat",
	"jeans": "Jeans", "denim": "Jeans",
	"pants": "Pants", "trousers": "Pants", "chinos": "Pants", "slacks": "Pants", "leggings": "Pants", "bottom": "Pants",
	"shorts": "Shorts",
	"skirt":  "Skirt",
	"dress":  "Dress", "jumpsuit": "Dress", "romper": "Dress",
	"sneakers": "Sneakers", "sneaker": "Sneakers", "shoes": "Sneakers", "shoe": "Sneakers",
	"loafers": "Sneakers", "flats": "Sneakers", "sandals": "Sneakers",
	"boots": "Boots", "boot": "Boots",
	"heels": "Heels", "pumps": "Heels", "stilettos": "Heels",
	"accessory": "Accessory", "accessories": "Accessory", "bag": "Accessory", "belt": "Accessory",
	"scarf": "Accessory", "hat": "Accessory", "jewelry": "Accessory", "watch": "Accessory",
}

// categoryDefaults picks a garment label when only the slot category is known.
var categoryDefaults = map[models.Category]string{
	models.CategoryTop:       "T-Shirt",
	models.CategoryBottom:    "Pants",
	models.CategoryDress:     "Dress",
	models.CategoryShoes:     "Sneakers",
	models.CategoryOuterwear: "Jacket",
	models.CategoryBag:       "Accessory",
	models.CategoryAccessory: "Accessory",
}

// subcategoryFormality is the fallback formality when an item has none.
var subcategoryFormality = map[string]int{
	"T-Shirt":   3,
	"Button-Up": 6,
	"Blouse":    6,
	"Sweater":   4,
	"Hoodie":    2,
	"Jacket":    6,
	"Coat":      6,
	"Jeans":     3,
	"Pants":     6,
	"Shorts":    2,
	"Skirt":     5,
	"Dress":     6,
	"Sneakers":  3,
	"Boots":     5,
	"Heels":     8,
	"Accessory": 5,
}

// CanonicalSubcategory resolves an item to one of the 16 garment labels.
// Unmapped labels fall back to the category default and then to "T-Shirt".
func CanonicalSubcategory(item *models.Item) string {
	if label, ok := subcategoryAliases[strings.ToLower(strings.TrimSpace(item.Subcategory))]; ok {
		return label
	}
	if label, ok := categoryDefaults[item.Category]; ok {
		return label
	}
	if label, ok := subcategoryAliases[strings.ToLower(string(item.Category))]; ok {
		return label
	}
	return "T-Shirt"
}

// ItemFormality returns the item's explicit formality or the fallback for
// its garment label.
func ItemFormality(item *models.Item) int {
	if item.Formality > 0 {
		return item.Formality
	}
	if f, ok := subcategoryFormality[CanonicalSubcategory(item)]; ok {
		return f
	}
	return models.DefaultFormality
}

var vocabReplacer = strings.NewReplacer(" ", "_", "-", "_")

func vocabKey(s string) string {
	return vocabReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// oneHot writes a one-hot encoding of value over vocab into dst.
func oneHot(dst []float64, vocab []string, value string) {
	value = vocabKey(value)
	for i, v := range vocab {
		if vocabKey(v) == value {
			dst[i] = 1
			return
		}
	}
}
