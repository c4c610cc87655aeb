// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package storage persists trained per-user preference models in BadgerDB.
//
// # Storage Format
//
// Each saved model is a versioned record:
//
//	key:   model:{user_id}:v{version, zero padded}
//	value: gob(storedFile{Metadata, CompressedData})
//
//	CompressedData = gzip(gob(NetworkState))
//
// The latest metadata per user is mirrored as JSON under
// latest:{user_id} so listing and version lookups never decode artifacts.
//
// # Data Integrity
//
// Models are validated on load using SHA-256 checksums:
//
//  1. Decompress gzip data
//  2. Compute SHA-256 of decompressed data
//  3. Compare with stored checksum
//  4. Return error if mismatch
//
// # Version Management
//
// Versions increase monotonically per user. LoadModel returns the latest;
// LoadVersion returns a specific one. Prune keeps the newest N versions and
// SaveModel prunes automatically when KeepVersions is set.
//
// # Thread Safety
//
// All operations run inside Badger transactions. Concurrent saves for one
// user are serialized by a store mutex so version numbers never collide.
package storage
