package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/zestyzy/CampusStudyHub/domain"
)

func newTestCollection(t *testing.T) *Collection[domain.Task] {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewCollection[domain.Task](store, "tasks")
}

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "a", Title: "First", Course: "Math", DueDate: "2024-02-01", Priority: domain.PriorityLow, Status: domain.StatusTodo},
		{ID: "b", Title: "Second", Course: "Physics", DueDate: "2024-02-02", Priority: domain.PriorityHigh, Status: domain.StatusInProgress},
		{ID: "c", Title: "Third", Course: "Math", DueDate: "2024-02-03", Priority: domain.PriorityMedium, Status: domain.StatusDone},
	}
}

func TestLoadFirstRunReturnsEmpty(t *testing.T) {
	col := newTestCollection(t)

	records, err := col.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection on first run, got %d records", len(records))
	}
	if col.Exists() {
		t.Fatal("load must not create the collection file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	col := newTestCollection(t)
	ctx := context.Background()
	tasks := sampleTasks()

	if err := col.Save(ctx, tasks); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := col.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded, tasks) {
		t.Fatalf("round trip changed records:\n got %#v\nwant %#v", loaded, tasks)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	col := NewCollection[domain.Task](store, "tasks")
	path := filepath.Join(store.Dir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err = col.Load(context.Background())
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
	if corrupt.Path != path {
		t.Fatalf("unexpected path in error: %s", corrupt.Path)
	}
	// The corrupt file must survive for the user to inspect or reset.
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("corrupt file was removed: %v", statErr)
	}
}

func TestLoadDuplicateIdentifiers(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	col := NewCollection[domain.Task](store, "tasks")
	payload := `[{"id":"x","title":"one"},{"id":"x","title":"two"}]`
	if err := os.WriteFile(filepath.Join(store.Dir(), "tasks.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err = col.Load(context.Background())
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for duplicate ids, got %v", err)
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	tasks := sampleTasks()
	updated := tasks[1]
	updated.Title = "Second, revised"

	out := Upsert(tasks, updated)
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	if out[1].Title != "Second, revised" {
		t.Fatalf("record not replaced in place: %#v", out[1])
	}
	if out[0].ID != "a" || out[2].ID != "c" {
		t.Fatalf("order of other records changed: %#v", out)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	tasks := sampleTasks()
	once := Upsert(tasks, tasks[0])
	twice := Upsert(once, tasks[0])

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("upsert with an identical record changed the collection")
	}
	if !reflect.DeepEqual(twice, tasks) {
		t.Fatalf("upsert with an existing record changed the collection")
	}
}

func TestUpsertAppendsUnknownID(t *testing.T) {
	tasks := sampleTasks()
	extra := domain.Task{ID: "d", Title: "Fourth", Course: "Math", DueDate: "2024-02-04", Priority: domain.PriorityLow, Status: domain.StatusTodo}

	out := Upsert(tasks, extra)
	if len(out) != 4 || out[3].ID != "d" {
		t.Fatalf("expected append at tail, got %#v", out)
	}
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	tasks := sampleTasks()
	out := Remove(tasks, "missing")
	if !reflect.DeepEqual(out, tasks) {
		t.Fatalf("remove of unknown id changed the collection")
	}
}

func TestRemoveThenReloadDropsIdentifier(t *testing.T) {
	col := newTestCollection(t)
	ctx := context.Background()
	tasks := sampleTasks()

	if err := col.Save(ctx, Remove(tasks, "b")); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := col.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, rec := range loaded {
		if rec.ID == "b" {
			t.Fatal("removed identifier reappeared after reload")
		}
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
}

func TestSaveRejectsDuplicateIdentifiers(t *testing.T) {
	col := newTestCollection(t)
	tasks := sampleTasks()
	tasks[2].ID = tasks[0].ID

	if err := col.Save(context.Background(), tasks); err == nil {
		t.Fatal("expected duplicate identifiers to be rejected")
	}
	if col.Exists() {
		t.Fatal("rejected save must not touch the file")
	}
}

func TestSaveReplacesContentAtomically(t *testing.T) {
	col := newTestCollection(t)
	ctx := context.Background()

	if err := col.Save(ctx, sampleTasks()); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A second, smaller save must fully replace the prior contents; a naive
	// in-place overwrite would leave trailing bytes of the longer old file.
	if err := col.Save(ctx, sampleTasks()[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err := col.Load(ctx)
	if err != nil {
		t.Fatalf("load after shrink: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "a" {
		t.Fatalf("unexpected records after shrink: %#v", loaded)
	}
}

func TestFailedSaveLeavesPriorFileReadable(t *testing.T) {
	col := newTestCollection(t)
	ctx := context.Background()
	tasks := sampleTasks()

	if err := col.Save(ctx, tasks); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := col.Save(ctx, []domain.Task{tasks[0], tasks[0]}); err == nil {
		t.Fatal("expected save to fail")
	}
	loaded, err := col.Load(ctx)
	if err != nil {
		t.Fatalf("prior file unreadable after failed save: %v", err)
	}
	if !reflect.DeepEqual(loaded, tasks) {
		t.Fatalf("prior contents changed after failed save: %#v", loaded)
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	if err := WriteFileAtomic(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSeedConferences(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	col := NewCollection[domain.Conference](store, "conferences")
	ctx := context.Background()

	seeded, err := SeedConferences(ctx, col)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(seeded) == 0 {
		t.Fatal("expected seed conferences on first run")
	}
	for _, c := range seeded {
		if c.ID == "" {
			t.Fatalf("seed conference missing identifier: %#v", c)
		}
	}

	// Emptying the collection must stick across restarts.
	if err := col.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	again, err := SeedConferences(ctx, col)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(again) != 0 {
		t.Fatal("existing empty collection was reseeded")
	}
}
