// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

import "time"

// Slot names a position in an outfit. Accessories are not a Slot; they live
// in Outfit.Accessories so their order is kept.
type Slot string

const (
	SlotTop       Slot = "top"
	SlotBottom    Slot = "bottom"
	SlotDress     Slot = "dress"
	SlotShoes     Slot = "shoes"
	SlotOuterwear Slot = "outerwear"
	SlotBag       Slot = "bag"
)

// SlotFor maps an item category to its outfit slot. Accessories return false.
func SlotFor(c Category) (Slot, bool) {
	switch c {
	case CategoryTop:
		return SlotTop, true
	case CategoryBottom:
		return SlotBottom, true
	case CategoryDress:
		return SlotDress, true
	case CategoryShoes:
		return SlotShoes, true
	case CategoryOuterwear:
		return SlotOuterwear, true
	case CategoryBag:
		return SlotBag, true
	default:
		return "", false
	}
}

// Piece assigns one item to one slot.
type Piece struct {
	Slot Slot `json:"slot"`
	Item Item `json:"item"`
}

// Outfit is a candidate or persisted outfit.
type Outfit struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Pieces      []Piece `json:"pieces"`
	Accessories []Item  `json:"accessories,omitempty"`

	// Occasion is the request occasion; Activity is set by trip planning.
	Occasion string `json:"occasion,omitempty"`
	Activity string `json:"activity,omitempty"`

	Score          float64            `json:"score"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown,omitempty"`
	Method         string             `json:"method,omitempty"`

	Worn      bool      `json:"worn"`
	CreatedAt time.Time `json:"created_at"`
}

// Set places an item into a slot, replacing any previous occupant.
func (o *Outfit) Set(slot Slot, item Item) {
	for i := range o.Pieces {
		if o.Pieces[i].Slot == slot {
			o.Pieces[i].Item = item
			return
		}
	}
	o.Pieces = append(o.Pieces, Piece{Slot: slot, Item: item})
}

// Get returns the item in a slot.
func (o *Outfit) Get(slot Slot) (Item, bool) {
	for _, p := range o.Pieces {
		if p.Slot == slot {
			return p.Item, true
		}
	}
	return Item{}, false
}

// Items returns all items: slot pieces in order, then accessories.
func (o *Outfit) Items() []Item {
	items := make([]Item, 0, len(o.Pieces)+len(o.Accessories))
	for _, p := range o.Pieces {
		items = append(items, p.Item)
	}
	return append(items, o.Accessories...)
}

// ItemIDs returns the ids of Items in the same order.
func (o *Outfit) ItemIDs() []string {
	items := o.Items()
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

// Len is the number of items in the outfit.
func (o *Outfit) Len() int {
	return len(o.Pieces) + len(o.Accessories)
}

// Clone returns a copy that shares no slices with o.
func (o *Outfit) Clone() Outfit {
	c := *o
	c.Pieces = append([]Piece(nil), o.Pieces...)
	c.Accessories = append([]Item(nil), o.Accessories...)
	if o.ScoreBreakdown != nil {
		c.ScoreBreakdown = make(map[string]float64, len(o.ScoreBreakdown))
		for k, v := range o.ScoreBreakdown {
			c.ScoreBreakdown[k] = v
		}
	}
	return c
}

// OutfitRecord is the persisted shape of an outfit: item references only.
type OutfitRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ItemIDs   []string  `json:"item_ids"`
	Occasion  string    `json:"occasion,omitempty"`
	Context   *Context  `json:"context,omitempty"`
	Score     float64   `json:"score"`
	Worn      bool      `json:"worn"`
	WornAt    time.Time `json:"worn_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
