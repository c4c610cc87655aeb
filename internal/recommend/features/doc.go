// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package features turns an item in the context of a request and its outfit
// peers into a fixed-width numeric vector for the trained scorer.
//
// # Layout
//
// Every vector has exactly Dim (57) entries in this order:
//
//	[0:16)   subcategory one-hot (16 garment labels, aliased)
//	[16:19)  primary color RGB, normalized to [0,1]
//	[19:22)  primary color HSL, hue divided by 360
//	[22:30)  pattern one-hot (8)
//	[30:40)  material one-hot (10)
//	[40]     item EMA score (0.5 when unset)
//	[41:46)  occasion one-hot (5)
//	[46:50)  season one-hot (4)
//	[50:53)  time-of-day one-hot (3)
//	[53]     color harmony with peers
//	[54]     formality match against the context
//	[55]     peer category diversity
//	[56]     mean peer EMA score
//
// Unrecognized vocabulary values encode as all-zero one-hot blocks. Missing
// colors default to gray (#808080). The encoder never returns NaN.
//
// The package also exports the color helpers (hex parsing, HSL conversion,
// circular hue distance) shared with the rule scorer and preference model.
package features
