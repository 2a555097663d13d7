package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordRunAndLatestRuns(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id1, err := db.RecordRun(ctx, "gaben", []RunResult{
		{Badge: "A (Normal)", AppID: 1, Rarity: "normal", Progress: "0 / 3", SetPrice: "1.00", Availability: 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.RecordRun(ctx, "gaben", nil)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := db.LatestRuns(ctx, "gaben", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("want 2 runs, got %#v", runs)
	}
	if runs[0].ID != id2 || runs[1].ID != id1 {
		t.Fatalf("runs not newest first: %#v", runs)
	}
	if runs[0].Profile != "gaben" || runs[0].CreatedAt.IsZero() {
		t.Fatalf("run metadata not recorded: %#v", runs[0])
	}

	stored, err := db.runResults(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]RunResult{
		"1/normal": {Badge: "A (Normal)", AppID: 1, Rarity: "normal", Progress: "0 / 3", SetPrice: "1.00", Availability: 5},
	}
	if !reflect.DeepEqual(stored, want) {
		t.Fatalf("unexpected stored results.\nwant: %#v\ngot:  %#v", want, stored)
	}

	other, err := db.LatestRuns(ctx, "someone-else", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("runs leaked across profiles: %#v", other)
	}
}

func TestRunStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id1, err := db.RecordRun(ctx, "gaben", []RunResult{
		{Badge: "Cheap (Normal)", AppID: 1, Rarity: "normal", Progress: "0 / 3", SetPrice: "0.40", Availability: 8},
		{Badge: "Dear (Foil)", AppID: 2, Rarity: "foil", Progress: "0 / 2", SetPrice: "6.00", Availability: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.RecordRun(ctx, "gaben", nil)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := db.RunStats(ctx, "gaben", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("want 2 runs, got %#v", stats)
	}
	if stats[0].ID != id2 || stats[0].Badges != 0 || stats[0].TopBadge != "" {
		t.Fatalf("unexpected empty run summary: %#v", stats[0])
	}
	if stats[1].ID != id1 || stats[1].Badges != 2 || stats[1].TopBadge != "Cheap (Normal)" || stats[1].TopPrice != "0.40" {
		t.Fatalf("unexpected run summary: %#v", stats[1])
	}
	if stats[1].CreatedAt.IsZero() {
		t.Fatalf("timestamp not parsed: %#v", stats[1])
	}
}

func TestPriceChanges(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	older := []RunResult{
		{Badge: "Kept (Normal)", AppID: 1, Rarity: "normal", Progress: "1 / 3", SetPrice: "1.00", Availability: 5},
		{Badge: "Gone (Foil)", AppID: 2, Rarity: "foil", Progress: "0 / 2", SetPrice: "3.10", Availability: 1},
		{Badge: "Same (Normal)", AppID: 3, Rarity: "normal", Progress: "2 / 4", SetPrice: "0.55", Availability: 9},
	}
	newer := []RunResult{
		{Badge: "Kept (Normal)", AppID: 1, Rarity: "normal", Progress: "1 / 3", SetPrice: "1.25", Availability: 4},
		{Badge: "Same (Normal)", AppID: 3, Rarity: "normal", Progress: "2 / 4", SetPrice: "0.55", Availability: 9},
		{Badge: "New (Normal)", AppID: 4, Rarity: "normal", Progress: "0 / 5", SetPrice: "2.00", Availability: 2},
	}
	if _, err := db.RecordRun(ctx, "gaben", older); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RecordRun(ctx, "gaben", newer); err != nil {
		t.Fatal(err)
	}

	changes, err := db.PriceChanges(ctx, "gaben")
	if err != nil {
		t.Fatal(err)
	}

	want := []PriceChange{
		{Badge: "Gone (Foil)", AppID: 2, Rarity: "foil", ChangeType: ChangeRemoved, OldPrice: "3.10", OldAvailability: 1},
		{Badge: "Kept (Normal)", AppID: 1, Rarity: "normal", ChangeType: ChangeUpdated, OldPrice: "1.00", NewPrice: "1.25", OldAvailability: 5, NewAvailability: 4},
		{Badge: "New (Normal)", AppID: 4, Rarity: "normal", ChangeType: ChangeAdded, NewPrice: "2.00", NewAvailability: 2},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("unexpected changes.\nwant: %#v\ngot:  %#v", want, changes)
	}
}

func TestPriceChangesNeedsTwoRuns(t *testing.T) {
	db := testDB(t)
	if _, err := db.RecordRun(context.Background(), "solo", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := db.PriceChanges(context.Background(), "solo"); err == nil {
		t.Fatal("want error with a single recorded run")
	}
}
