// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package storage

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mdcscry/thread/internal/recommend/algorithms"
	"github.com/mdcscry/thread/internal/recommend/features"
)

func newTestStore(t *testing.T, keep int) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, KeepVersions: keep})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testModel(t *testing.T, userID string, seed int64) *algorithms.Model {
	t.Helper()
	net, err := algorithms.NewNetwork(algorithms.DefaultNetworkConfig(features.Dim), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewNetwork() error = %v", err)
	}
	return &algorithms.Model{
		UserID:         userID,
		Network:        net,
		SampleCount:    320,
		ValidationLoss: 0.12,
		ValidationMAE:  0.2,
		Epochs:         37,
		TrainedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	m := testModel(t, "u1", 1)

	key, err := s.SaveModel(ctx, m)
	if err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	if !strings.HasPrefix(key, "model:u1:v") {
		t.Errorf("key = %q, want model:u1:v prefix", key)
	}
	if m.Version != 1 {
		t.Errorf("Version = %d, want 1", m.Version)
	}

	got, err := s.LoadModel(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if got.Version != 1 || got.SampleCount != 320 || got.Epochs != 37 {
		t.Errorf("loaded metadata = %+v", got)
	}
	if !got.TrainedAt.Equal(m.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", got.TrainedAt, m.TrainedAt)
	}
	if len(got.Network.Params) != len(m.Network.Params) {
		t.Fatalf("param count = %d, want %d", len(got.Network.Params), len(m.Network.Params))
	}
	for i := range m.Network.Params {
		if got.Network.Params[i] != m.Network.Params[i] {
			t.Fatalf("param %d differs", i)
		}
	}

	x := make([]float64, features.Dim)
	want, _ := m.Network.Predict(x)
	have, err := got.Network.Predict(x)
	if err != nil || have != want {
		t.Errorf("Predict() = (%v, %v), want %v", have, err, want)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t, 0)
	if _, err := s.LoadModel(context.Background(), "nobody"); !errors.Is(err, algorithms.ErrModelNotFound) {
		t.Errorf("LoadModel() error = %v, want ErrModelNotFound", err)
	}
	if _, ok := s.LatestVersion("nobody"); ok {
		t.Error("LatestVersion() reported a version for an unknown user")
	}
}

func TestStore_VersionsIncrease(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.SaveModel(ctx, testModel(t, "u1", int64(i))); err != nil {
			t.Fatalf("SaveModel() error = %v", err)
		}
	}
	// A stale explicit version is bumped past the latest.
	stale := testModel(t, "u1", 9)
	stale.Version = 2
	if _, err := s.SaveModel(ctx, stale); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	if stale.Version != 4 {
		t.Errorf("stale Version = %d, want 4", stale.Version)
	}

	versions, err := s.Versions("u1")
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) != 4 || versions[0] != 4 || versions[3] != 1 {
		t.Errorf("Versions() = %v, want [4 3 2 1]", versions)
	}

	old, err := s.LoadVersion(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("LoadVersion(2) error = %v", err)
	}
	if old.Version != 2 {
		t.Errorf("LoadVersion(2).Version = %d", old.Version)
	}
}

func TestStore_PruneKeepsNewest(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.SaveModel(ctx, testModel(t, "u1", int64(i))); err != nil {
			t.Fatalf("SaveModel() error = %v", err)
		}
	}
	versions, _ := s.Versions("u1")
	if len(versions) != 2 || versions[0] != 5 || versions[1] != 4 {
		t.Errorf("Versions() = %v, want [5 4]", versions)
	}
	if _, err := s.LoadVersion(ctx, "u1", 1); !errors.Is(err, algorithms.ErrModelNotFound) {
		t.Errorf("pruned version error = %v, want ErrModelNotFound", err)
	}
	if m, err := s.LoadModel(ctx, "u1"); err != nil || m.Version != 5 {
		t.Errorf("LoadModel() = (%v, %v), want version 5", m, err)
	}
}

func TestStore_UserPrefixesDoNotOverlap(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	for _, u := range []string{"u1", "u10", "u1", "u100"} {
		if _, err := s.SaveModel(ctx, testModel(t, u, 3)); err != nil {
			t.Fatalf("SaveModel(%s) error = %v", u, err)
		}
	}
	versions, _ := s.Versions("u1")
	if len(versions) != 2 {
		t.Errorf("Versions(u1) = %v, want two", versions)
	}

	all, err := s.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListModels() returned %d entries, want 3", len(all))
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	if _, err := s.SaveModel(ctx, testModel(t, "u1", 1)); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.LoadModel(ctx, "u1"); !errors.Is(err, algorithms.ErrModelNotFound) {
		t.Errorf("LoadModel() after Delete error = %v", err)
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s := NewStore(db, 0)
	ctx := context.Background()

	m := testModel(t, "u1", 1)
	if _, err := s.SaveModel(ctx, m); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	// Rewrite the record with a different checksum.
	var sf storedFile
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(modelKey("u1", 1)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decodeFile(val, &sf)
		})
	})
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	sf.Metadata.Checksum = "deadbeef"
	raw, err := encodeFile(&sf)
	if err != nil {
		t.Fatalf("encode record: %v", err)
	}
	if err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(modelKey("u1", 1)), raw)
	}); err != nil {
		t.Fatalf("write record: %v", err)
	}

	if _, err := s.LoadModel(ctx, "u1"); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("LoadModel() error = %v, want checksum mismatch", err)
	}
}

func TestStore_SaveRejectsNilNetwork(t *testing.T) {
	s := newTestStore(t, 0)
	if _, err := s.SaveModel(context.Background(), &algorithms.Model{UserID: "u1"}); err == nil {
		t.Error("SaveModel() accepted a model without a network")
	}
}
