// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdcscry/thread/internal/config"
	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent CGO
// calls from many in-memory databases can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database. The semaphore is held
// for the entire test and released via t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func testItem(id, userID string, category models.Category) models.Item {
	return models.Item{
		ID:           id,
		UserID:       userID,
		Name:         id,
		Category:     category,
		Subcategory:  "Tee",
		PrimaryColor: "#1f2a44",
		Colors:       []string{"navy"},
		Formality:    4,
		Reviewed:     true,
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Error("New(nil) = nil error, want error")
		}
	})

	t.Run("file database creates parent directory", func(t *testing.T) {
		testDBSemaphore <- struct{}{}
		defer func() { <-testDBSemaphore }()

		path := filepath.Join(t.TempDir(), "nested", "thread.duckdb")
		db, err := New(&config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1, SkipIndexes: true})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer db.Close()

		if db.GetDatabasePath() != path {
			t.Errorf("GetDatabasePath() = %q, want %q", db.GetDatabasePath(), path)
		}
		if err := db.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func TestMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if want := len(db.getMigrations()); version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	// Re-running is a no-op.
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("second runVersionedMigrations() error = %v", err)
	}
	if err := db.CreateIndexes(); err != nil {
		t.Fatalf("CreateIndexes() error = %v", err)
	}
}

func TestItems_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	worn := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	item := testItem("t1", "u1", models.CategoryTop)
	item.TempMinF = models.Float64(40)
	item.TempMaxF = models.Float64(85)
	item.EMAScore = models.Float64(0.7)
	item.EMACount = 3
	item.WearCount = 2
	item.LastWornAt = &worn
	item.Colors = []string{"navy", "white"}

	if err := db.UpsertItems(ctx, []models.Item{item}); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	got, err := db.GetItem(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}

	if got.Category != models.CategoryTop || got.Subcategory != "Tee" {
		t.Errorf("category = %q/%q", got.Category, got.Subcategory)
	}
	if len(got.Colors) != 2 || got.Colors[1] != "white" {
		t.Errorf("Colors = %v, want [navy white]", got.Colors)
	}
	if got.TempMinF == nil || *got.TempMinF != 40 || got.TempMaxF == nil || *got.TempMaxF != 85 {
		t.Errorf("temperature range = %v..%v", got.TempMinF, got.TempMaxF)
	}
	if got.EMAScore == nil || *got.EMAScore != 0.7 || got.EMACount != 3 {
		t.Errorf("EMA = %v/%d, want 0.7/3", got.EMAScore, got.EMACount)
	}
	if got.LastWornAt == nil || !got.LastWornAt.Equal(worn) {
		t.Errorf("LastWornAt = %v, want %v", got.LastWornAt, worn)
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, item.CreatedAt)
	}

	t.Run("nil optional fields stay nil", func(t *testing.T) {
		bare := testItem("b1", "u1", models.CategoryBottom)
		bare.Colors = nil
		if err := db.UpsertItems(ctx, []models.Item{bare}); err != nil {
			t.Fatalf("UpsertItems() error = %v", err)
		}
		got, err := db.GetItem(ctx, "u1", "b1")
		if err != nil {
			t.Fatalf("GetItem() error = %v", err)
		}
		if got.EMAScore != nil || got.TempMinF != nil || got.LastWornAt != nil || got.Colors != nil {
			t.Errorf("optional fields = %+v, want nil", got)
		}
	})

	t.Run("other user cannot read", func(t *testing.T) {
		_, err := db.GetItem(ctx, "u2", "t1")
		if !errors.Is(err, recommend.ErrItemNotFound) {
			t.Errorf("GetItem() error = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("missing id rejected", func(t *testing.T) {
		if err := db.UpsertItems(ctx, []models.Item{{UserID: "u1"}}); err == nil {
			t.Error("UpsertItems() without id = nil error")
		}
	})
}

func TestListEligibleItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	warm := testItem("a-warm", "u1", models.CategoryTop)
	warm.TempMinF = models.Float64(70)

	cold := testItem("b-cold", "u1", models.CategoryOuterwear)
	cold.TempMaxF = models.Float64(50)

	formal := testItem("c-formal", "u1", models.CategoryBottom)
	formal.Formality = 9

	unknown := testItem("d-unknown", "u1", models.CategoryShoes)
	unknown.Formality = 0

	laundry := testItem("e-laundry", "u1", models.CategoryTop)
	laundry.InLaundry = true

	archived := testItem("f-archived", "u1", models.CategoryTop)
	archived.Archived = true

	other := testItem("g-other", "u2", models.CategoryTop)

	if err := db.UpsertItems(ctx, []models.Item{warm, cold, formal, unknown, laundry, archived, other}); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	tests := []struct {
		name   string
		filter models.ItemFilter
		want   []string
	}{
		{
			name: "no filter excludes unavailable and archived",
			want: []string{"a-warm", "b-cold", "c-formal", "d-unknown"},
		},
		{
			name:   "include unavailable keeps laundry",
			filter: models.ItemFilter{IncludeUnavailable: true},
			want:   []string{"a-warm", "b-cold", "c-formal", "d-unknown", "e-laundry"},
		},
		{
			name:   "hot day drops cold-only items",
			filter: models.ItemFilter{TemperatureF: models.Float64(80)},
			want:   []string{"a-warm", "c-formal", "d-unknown"},
		},
		{
			name:   "cold day drops warm-only items",
			filter: models.ItemFilter{TemperatureF: models.Float64(40)},
			want:   []string{"b-cold", "c-formal", "d-unknown"},
		},
		{
			name:   "formality window keeps unknown formality",
			filter: models.ItemFilter{FormalityTarget: 3},
			want:   []string{"a-warm", "b-cold", "d-unknown"},
		},
		{
			name:   "category restriction",
			filter: models.ItemFilter{Categories: []models.Category{models.CategoryShoes, models.CategoryBottom}},
			want:   []string{"c-formal", "d-unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := db.ListEligibleItems(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("ListEligibleItems() error = %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("got %d items, want %v", len(items), tt.want)
			}
			for i, item := range items {
				if item.ID != tt.want[i] {
					t.Errorf("items[%d] = %s, want %s", i, item.ID, tt.want[i])
				}
				f := tt.filter
				if !f.Matches(&item) {
					t.Errorf("item %s returned by SQL but rejected by Matches", item.ID)
				}
			}
		})
	}
}

func TestGetItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertItems(ctx, []models.Item{
		testItem("t1", "u1", models.CategoryTop),
		testItem("b1", "u1", models.CategoryBottom),
	}); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	got, err := db.GetItems(ctx, "u1", []string{"t1", "b1", "gone"})
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("GetItems() returned %d items, want 2", len(got))
	}
	if _, ok := got["gone"]; ok {
		t.Error("missing id present in result")
	}

	empty, err := db.GetItems(ctx, "u1", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetItems(nil) = %v, %v", empty, err)
	}
}

func TestApplyFeedback_Patches(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	loved := testItem("t1", "u1", models.CategoryTop)
	loved.Loved = true
	loved.WearCount = 4
	if err := db.UpsertItems(ctx, []models.Item{loved, testItem("b1", "u1", models.CategoryBottom)}); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	score := 0.65
	count := 1
	err := db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
		UserID:  "u1",
		Patches: map[string]models.ItemPatch{"t1": {EMAScore: &score, EMACount: &count}},
	})
	if err != nil {
		t.Fatalf("ApplyFeedback() error = %v", err)
	}

	got, err := db.GetItem(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.EMAScore == nil || *got.EMAScore != 0.65 || got.EMACount != 1 {
		t.Errorf("EMA = %v/%d, want 0.65/1", got.EMAScore, got.EMACount)
	}
	if !got.Loved || got.WearCount != 4 || got.LastWornAt != nil {
		t.Errorf("untouched fields changed: loved=%v wear=%d last=%v", got.Loved, got.WearCount, got.LastWornAt)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt = %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}

	t.Run("wear patch", func(t *testing.T) {
		at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		wear := 5
		w := &recommend.FeedbackWrite{
			UserID:  "u1",
			Patches: map[string]models.ItemPatch{"t1": {WearCount: &wear, LastWornAt: &at}},
		}
		if err := db.ApplyFeedback(ctx, w); err != nil {
			t.Fatalf("ApplyFeedback() error = %v", err)
		}
		got, _ := db.GetItem(ctx, "u1", "t1")
		if got.WearCount != 5 || got.LastWornAt == nil || !got.LastWornAt.Equal(at) {
			t.Errorf("wear = %d at %v", got.WearCount, got.LastWornAt)
		}
		if got.EMAScore == nil || *got.EMAScore != 0.65 {
			t.Errorf("EMAScore changed to %v", got.EMAScore)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		err := db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
			UserID:  "u1",
			Patches: map[string]models.ItemPatch{"nope": {EMAScore: &score}},
		})
		if !errors.Is(err, recommend.ErrItemNotFound) {
			t.Errorf("ApplyFeedback() error = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("other user's item", func(t *testing.T) {
		err := db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
			UserID:  "u2",
			Patches: map[string]models.ItemPatch{"b1": {EMAScore: &score}},
		})
		if !errors.Is(err, recommend.ErrItemNotFound) {
			t.Errorf("ApplyFeedback() error = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("missing item rolls back the whole write", func(t *testing.T) {
		before, _ := db.GetItem(ctx, "u1", "b1")
		other := 0.1
		err := db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
			UserID: "u1",
			Patches: map[string]models.ItemPatch{
				"b1":   {EMAScore: &other, EMACount: &count},
				"nope": {EMAScore: &other},
			},
			Events: []models.FeedbackEvent{
				{UserID: "u1", ItemID: "b1", Signal: models.SignalThumbsDown},
			},
		})
		if !errors.Is(err, recommend.ErrItemNotFound) {
			t.Fatalf("ApplyFeedback() error = %v, want ErrItemNotFound", err)
		}
		after, err := db.GetItem(ctx, "u1", "b1")
		if err != nil {
			t.Fatalf("GetItem() error = %v", err)
		}
		if after.EMAScore != nil || after.EMACount != before.EMACount {
			t.Errorf("b1 EMA = %v/%d after failed write, want unchanged", after.EMAScore, after.EMACount)
		}
		events, _ := db.ListFeedback(ctx, "u1", false)
		if len(events) != 0 {
			t.Errorf("feedback events = %d after failed write, want 0", len(events))
		}
	})
}

func TestApplyFeedback_WornOutfit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertItems(ctx, []models.Item{testItem("t1", "u1", models.CategoryTop)}); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}
	rec := models.OutfitRecord{ID: "o1", UserID: "u1", ItemIDs: []string{"t1"}, CreatedAt: time.Now().UTC()}
	if err := db.SaveOutfits(ctx, []models.OutfitRecord{rec}); err != nil {
		t.Fatalf("SaveOutfits() error = %v", err)
	}

	at := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	wear := 1
	write := func(outfitID string) error {
		return db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
			UserID:       "u1",
			Patches:      map[string]models.ItemPatch{"t1": {WearCount: &wear, LastWornAt: &at}},
			Events:       []models.FeedbackEvent{{UserID: "u1", ItemID: "t1", OutfitID: outfitID, Signal: models.SignalWornConfirmed}},
			WornOutfitID: outfitID,
			WornAt:       at,
		})
	}

	if err := write("missing"); !errors.Is(err, recommend.ErrOutfitNotFound) {
		t.Fatalf("ApplyFeedback(missing outfit) error = %v, want ErrOutfitNotFound", err)
	}
	item, _ := db.GetItem(ctx, "u1", "t1")
	if item.WearCount != 0 {
		t.Errorf("wear count = %d after failed write, want 0", item.WearCount)
	}

	if err := write("o1"); err != nil {
		t.Fatalf("ApplyFeedback() error = %v", err)
	}
	got, _ := db.GetOutfit(ctx, "u1", "o1")
	if !got.Worn || !got.WornAt.Equal(at) {
		t.Errorf("worn = %v at %v", got.Worn, got.WornAt)
	}
	item, _ = db.GetItem(ctx, "u1", "t1")
	if item.WearCount != 1 {
		t.Errorf("wear count = %d, want 1", item.WearCount)
	}
	events, _ := db.ListFeedback(ctx, "u1", false)
	if len(events) != 1 || events[0].OutfitID != "o1" {
		t.Errorf("events = %+v, want one for o1", events)
	}
}

func TestOutfits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	records := []models.OutfitRecord{
		{
			ID:        "o1",
			UserID:    "u1",
			ItemIDs:   []string{"t1", "b1", "s1"},
			Occasion:  "work",
			Context:   &models.Context{Occasion: "work", FormalityTarget: 6},
			Score:     0.82,
			CreatedAt: created,
		},
		{
			ID:        "o2",
			UserID:    "u1",
			ItemIDs:   []string{"d1", "s1"},
			Score:     0.5,
			CreatedAt: created.Add(time.Hour),
		},
	}
	if err := db.SaveOutfits(ctx, records); err != nil {
		t.Fatalf("SaveOutfits() error = %v", err)
	}

	got, err := db.GetOutfit(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("GetOutfit() error = %v", err)
	}
	if len(got.ItemIDs) != 3 || got.ItemIDs[0] != "t1" || got.ItemIDs[2] != "s1" {
		t.Errorf("ItemIDs = %v", got.ItemIDs)
	}
	if got.Context == nil || got.Context.FormalityTarget != 6 || got.Occasion != "work" {
		t.Errorf("context = %+v occasion %q", got.Context, got.Occasion)
	}
	if got.Worn || !got.WornAt.IsZero() {
		t.Errorf("fresh outfit worn = %v at %v", got.Worn, got.WornAt)
	}

	t.Run("duplicate id rejected", func(t *testing.T) {
		if err := db.SaveOutfits(ctx, records[:1]); err == nil {
			t.Error("SaveOutfits() duplicate = nil error")
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := db.GetOutfit(ctx, "u2", "o1"); !errors.Is(err, recommend.ErrOutfitNotFound) {
			t.Errorf("GetOutfit() error = %v, want ErrOutfitNotFound", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		list, err := db.ListOutfits(ctx, "u1", 10)
		if err != nil {
			t.Fatalf("ListOutfits() error = %v", err)
		}
		if len(list) != 2 || list[0].ID != "o2" {
			t.Errorf("ListOutfits() = %+v", list)
		}
	})
}

func TestFeedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	var events []models.FeedbackEvent
	for i := 0; i < 12; i++ {
		events = append(events, models.FeedbackEvent{
			UserID:    "u1",
			ItemID:    "t1",
			OutfitID:  "o1",
			Signal:    models.SignalThumbsUp,
			Context:   &models.Context{Occasion: "casual"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	events = append(events,
		models.FeedbackEvent{UserID: "u2", ItemID: "x", Signal: models.SignalThumbsDown, Value: models.Float64(0.1)},
		models.FeedbackEvent{UserID: "u2", ItemID: "y", Signal: models.SignalSkippedRepeated},
	)

	for _, w := range []*recommend.FeedbackWrite{
		{UserID: "u1", Events: events[:12]},
		{UserID: "u2", Events: events[12:]},
	} {
		if err := db.ApplyFeedback(ctx, w); err != nil {
			t.Fatalf("ApplyFeedback(%s) error = %v", w.UserID, err)
		}
	}
	for _, e := range events {
		if e.ID == "" {
			t.Fatal("ApplyFeedback() did not assign ids")
		}
	}

	list, err := db.ListFeedback(ctx, "u1", false)
	if err != nil {
		t.Fatalf("ListFeedback() error = %v", err)
	}
	if len(list) != 12 {
		t.Fatalf("ListFeedback() = %d events, want 12", len(list))
	}
	if !list[0].CreatedAt.Equal(base) || list[0].Context == nil || list[0].Context.Occasion != "casual" {
		t.Errorf("first event = %+v", list[0])
	}

	u2, err := db.ListFeedback(ctx, "u2", false)
	if err != nil {
		t.Fatalf("ListFeedback(u2) error = %v", err)
	}
	for _, e := range u2 {
		if e.ItemID == "x" && (e.Value == nil || *e.Value != 0.1) {
			t.Errorf("stored value = %v, want 0.1", e.Value)
		}
	}

	t.Run("users with untrained feedback", func(t *testing.T) {
		users, err := db.ListUsersWithUntrainedFeedback(ctx, 10)
		if err != nil {
			t.Fatalf("ListUsersWithUntrainedFeedback() error = %v", err)
		}
		if len(users) != 1 || users[0] != "u1" {
			t.Errorf("users = %v, want [u1]", users)
		}

		all, _ := db.ListUsersWithUntrainedFeedback(ctx, 0)
		if len(all) != 2 {
			t.Errorf("users(min 0) = %v, want both", all)
		}
	})

	t.Run("mark trained", func(t *testing.T) {
		ids := make([]string, 0, 10)
		for _, e := range list[:10] {
			ids = append(ids, e.ID)
		}
		if err := db.MarkFeedbackTrained(ctx, ids); err != nil {
			t.Fatalf("MarkFeedbackTrained() error = %v", err)
		}

		untrained, err := db.ListFeedback(ctx, "u1", true)
		if err != nil {
			t.Fatalf("ListFeedback(untrained) error = %v", err)
		}
		if len(untrained) != 2 {
			t.Errorf("untrained = %d, want 2", len(untrained))
		}

		users, _ := db.ListUsersWithUntrainedFeedback(ctx, 10)
		if len(users) != 0 {
			t.Errorf("users after training = %v, want none", users)
		}
	})
}

func TestLegacySignalMigration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.ApplyFeedback(ctx, &recommend.FeedbackWrite{
		UserID: "u1",
		Events: []models.FeedbackEvent{{ID: "e1", UserID: "u1", ItemID: "t1", Signal: models.SignalSkippedRepeated}},
	})
	if err != nil {
		t.Fatalf("ApplyFeedback() error = %v", err)
	}

	// Force the rename migration to run again against the new row.
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = 1`); err != nil {
		t.Fatalf("reset migration: %v", err)
	}
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("runVersionedMigrations() error = %v", err)
	}

	list, _ := db.ListFeedback(ctx, "u1", false)
	if len(list) != 1 || list[0].Signal != models.SignalSkippedRepeatedly {
		t.Errorf("signal = %v, want %s", list, models.SignalSkippedRepeatedly)
	}
}

func TestTrainingSessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &models.TrainingSession{UserID: "u1", SampleCount: 60, ValidationLoss: 0.04, ValidationMAE: 0.15,
		ParamCount: 2401, Epochs: 23, ModelPath: "models/u1/v1", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	second := &models.TrainingSession{UserID: "u1", SampleCount: 80, ParamCount: 2401, Epochs: 30,
		CreatedAt: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)}

	for _, s := range []*models.TrainingSession{first, second} {
		if err := db.AppendTrainingSession(ctx, s); err != nil {
			t.Fatalf("AppendTrainingSession() error = %v", err)
		}
		if s.ID == "" {
			t.Error("AppendTrainingSession() did not assign id")
		}
	}
	if err := db.AppendTrainingSession(ctx, nil); err == nil {
		t.Error("AppendTrainingSession(nil) = nil error")
	}

	sessions, err := db.ListTrainingSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTrainingSessions() error = %v", err)
	}
	if len(sessions) != 2 || sessions[0].SampleCount != 80 || sessions[1].ModelPath != "models/u1/v1" {
		t.Errorf("sessions = %+v", sessions)
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if counts.TrainingSessions != 2 || counts.Items != 0 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestIsTransactionConflict(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true},
		{errors.New("Conflict on update"), true},
		{errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.want {
			t.Errorf("isTransactionConflict(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithConflictRetry(t *testing.T) {
	db := &DB{maxConflictRetries: 2, conflictDelay: time.Millisecond}
	ctx := context.Background()

	t.Run("retries conflicts then succeeds", func(t *testing.T) {
		calls := 0
		err := db.withConflictRetry(ctx, "op", func() error {
			calls++
			if calls < 2 {
				return errors.New("Transaction conflict")
			}
			return nil
		})
		if err != nil || calls != 2 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("boom")
		err := db.withConflictRetry(ctx, "op", func() error {
			calls++
			return sentinel
		})
		if !errors.Is(err, sentinel) || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := db.withConflictRetry(ctx, "op", func() error {
			calls++
			return errors.New("Transaction conflict")
		})
		if err == nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})
}
