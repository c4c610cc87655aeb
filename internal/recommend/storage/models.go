// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/mdcscry/thread/internal/recommend/algorithms"
)

// Key prefixes for BadgerDB storage.
const (
	modelKeyPrefix  = "model:"
	latestKeyPrefix = "latest:"
)

// ModelMetadata describes one stored model version.
type ModelMetadata struct {
	UserID  string `json:"user_id"`
	Version int    `json:"version"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	SampleCount    int     `json:"sample_count"`
	ValidationLoss float64 `json:"validation_loss"`
	ValidationMAE  float64 `json:"validation_mae"`
	Epochs         int     `json:"epochs"`
	ParamCount     int     `json:"param_count"`

	// Checksum is the SHA-256 of the uncompressed gob state.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// NetworkState is the serializable state of a trained network.
type NetworkState struct {
	Config algorithms.NetworkConfig
	Params []float64
}

// storedFile is the value format for model records.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Config configures Open.
type Config struct {
	// Dir is the Badger directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory (tests, ephemeral runs).
	InMemory bool

	// KeepVersions prunes older versions after each save. Zero keeps all.
	KeepVersions int
}

// Store persists models in BadgerDB. It implements algorithms.ModelStore.
type Store struct {
	db    *badger.DB
	owned bool
	keep  int
	mu    sync.Mutex
	now   func() time.Time
}

// Open opens a Badger database per cfg and wraps it in a Store. The Store
// owns the database and closes it on Close.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for models: %w", err)
	}
	s := NewStore(db, cfg.KeepVersions)
	s.owned = true
	return s, nil
}

// NewStore wraps an existing Badger database. The caller keeps ownership.
func NewStore(db *badger.DB, keepVersions int) *Store {
	return &Store{db: db, keep: keepVersions, now: time.Now}
}

// Close closes the database if the Store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// SaveModel writes a new version of the user's model and returns its key.
// When m.Version does not exceed the stored latest version, the next free
// version is assigned and written back to m.
func (s *Store) SaveModel(ctx context.Context, m *algorithms.Model) (string, error) {
	if m == nil || m.Network == nil {
		return "", errors.New("save model: nil network")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, _, err := s.latest(m.UserID)
	if err != nil && !errors.Is(err, algorithms.ErrModelNotFound) {
		return "", err
	}
	if m.Version <= latest {
		m.Version = latest + 1
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(NetworkState{Config: m.Network.Config, Params: m.Network.Params}); err != nil {
		return "", fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return "", fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	meta := ModelMetadata{
		UserID:         m.UserID,
		Version:        m.Version,
		TrainedAt:      m.TrainedAt,
		SavedAt:        s.now(),
		SampleCount:    m.SampleCount,
		ValidationLoss: m.ValidationLoss,
		ValidationMAE:  m.ValidationMAE,
		Epochs:         m.Epochs,
		ParamCount:     len(m.Network.Params),
		Checksum:       hex.EncodeToString(hash[:]),
		SizeBytes:      int64(compressed.Len()),
	}

	record, err := encodeFile(&storedFile{Metadata: meta, CompressedData: compressed.Bytes()})
	if err != nil {
		return "", err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal model metadata: %w", err)
	}

	key := modelKey(m.UserID, m.Version)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), record); err != nil {
			return fmt.Errorf("set model: %w", err)
		}
		if err := txn.Set([]byte(latestKeyPrefix+m.UserID), metaJSON); err != nil {
			return fmt.Errorf("set latest pointer: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.keep > 0 {
		if err := s.prune(m.UserID, s.keep); err != nil {
			return "", err
		}
	}
	return key, nil
}

// LoadModel loads the user's latest model.
func (s *Store) LoadModel(ctx context.Context, userID string) (*algorithms.Model, error) {
	version, _, err := s.latest(userID)
	if err != nil {
		return nil, err
	}
	return s.LoadVersion(ctx, userID, version)
}

// LoadVersion loads a specific model version.
func (s *Store) LoadVersion(ctx context.Context, userID string, version int) (*algorithms.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sf storedFile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(modelKey(userID, version)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return algorithms.ErrModelNotFound
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		return item.Value(func(val []byte) error {
			return decodeFile(val, &sf)
		})
	})
	if err != nil {
		if errors.Is(err, algorithms.ErrModelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("read model record: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var state NetworkState
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(state.Params) != state.Config.ParamCount() {
		return nil, fmt.Errorf("decode model: %d params, want %d", len(state.Params), state.Config.ParamCount())
	}

	meta := sf.Metadata
	return &algorithms.Model{
		UserID:         meta.UserID,
		Version:        meta.Version,
		Network:        &algorithms.Network{Config: state.Config, Params: state.Params},
		SampleCount:    meta.SampleCount,
		ValidationLoss: meta.ValidationLoss,
		ValidationMAE:  meta.ValidationMAE,
		Epochs:         meta.Epochs,
		TrainedAt:      meta.TrainedAt,
	}, nil
}

// LatestVersion returns the newest stored version for a user.
func (s *Store) LatestVersion(userID string) (int, bool) {
	v, _, err := s.latest(userID)
	return v, err == nil
}

// Metadata returns the latest model metadata for a user.
func (s *Store) Metadata(userID string) (*ModelMetadata, error) {
	_, meta, err := s.latest(userID)
	return meta, err
}

// ListModels returns metadata for every user's latest model.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	var out []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(latestKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var meta ModelMetadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				continue
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return out, nil
}

// Versions lists stored versions for a user, newest first.
func (s *Store) Versions(userID string) ([]int, error) {
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(modelKeyPrefix + userID + ":v")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			var v int
			if _, err := fmt.Sscanf(strings.TrimPrefix(key, string(prefix)), "%d", &v); err != nil {
				continue
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list model versions: %w", err)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// Delete removes every stored version of a user's model.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.Versions(userID)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range versions {
			if err := txn.Delete([]byte(modelKey(userID, v))); err != nil {
				return fmt.Errorf("delete model: %w", err)
			}
		}
		if err := txn.Delete([]byte(latestKeyPrefix + userID)); err != nil {
			return fmt.Errorf("delete latest pointer: %w", err)
		}
		return nil
	})
}

// Prune removes old versions, keeping only the newest keep versions.
func (s *Store) Prune(ctx context.Context, userID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prune(userID, keep)
}

func (s *Store) prune(userID string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	versions, err := s.Versions(userID)
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range versions[keep:] {
			if err := txn.Delete([]byte(modelKey(userID, v))); err != nil {
				return fmt.Errorf("prune model v%d: %w", v, err)
			}
		}
		return nil
	})
}

func (s *Store) latest(userID string) (int, *ModelMetadata, error) {
	var meta ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(latestKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return algorithms.ErrModelNotFound
		}
		if err != nil {
			return fmt.Errorf("get latest pointer: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return 0, nil, err
	}
	return meta.Version, &meta, nil
}

func encodeFile(sf *storedFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sf); err != nil {
		return nil, fmt.Errorf("encode model record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeFile(val []byte, sf *storedFile) error {
	return gob.NewDecoder(bytes.NewReader(val)).Decode(sf)
}

// modelKey zero-pads the version so keys sort by version.
func modelKey(userID string, version int) string {
	return fmt.Sprintf("%s%s:v%010d", modelKeyPrefix, userID, version)
}

var _ algorithms.ModelStore = (*Store)(nil)
