package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/motioneffector/wiki/internal/models"
)

func testFS(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func samplePage(id string) *models.Page {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Page{
		ID:        id,
		Title:     "Sample " + id,
		Content:   "Links to [[Somewhere]].",
		Tags:      []string{"test"},
		Type:      "article",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFS_SaveLoadRoundTrip(t *testing.T) {
	_, store := testFS(t)

	p := samplePage("round-trip")
	if err := store.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load("round-trip")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != p.Title || got.Content != p.Content || got.Type != p.Type {
		t.Errorf("loaded page differs: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "test" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestFS_LoadMissing(t *testing.T) {
	_, store := testFS(t)
	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error loading missing page")
	}
}

func TestFS_Delete(t *testing.T) {
	dir, store := testFS(t)

	if err := store.Save(samplePage("doomed")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("doomed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doomed.json")); !os.IsNotExist(err) {
		t.Error("document still on disk after delete")
	}
	if err := store.Delete("doomed"); err == nil {
		t.Error("expected error deleting absent page")
	}
}

func TestFS_List(t *testing.T) {
	dir, store := testFS(t)

	for _, id := range []string{"one", "two", "three"} {
		if err := store.Save(samplePage(id)); err != nil {
			t.Fatal(err)
		}
	}
	// Non-page files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pages) != 3 {
		t.Errorf("len(pages) = %d, want 3", len(pages))
	}
}

func TestFS_TraversalRejected(t *testing.T) {
	_, store := testFS(t)

	for _, id := range []string{"../escape", "a/../../b", "/etc/passwd", ""} {
		if _, err := store.Load(id); err == nil {
			t.Errorf("Load(%q) succeeded, want error", id)
		}
		if err := store.Save(&models.Page{ID: id}); err == nil {
			t.Errorf("Save(%q) succeeded, want error", id)
		}
	}
}

func TestFS_SaveOverwrites(t *testing.T) {
	_, store := testFS(t)

	p := samplePage("page")
	if err := store.Save(p); err != nil {
		t.Fatal(err)
	}
	p.Content = "updated"
	if err := store.Save(p); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load("page")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "updated" {
		t.Errorf("content = %q, want %q", got.Content, "updated")
	}
}

func TestFS_SaveLeavesNoTempFiles(t *testing.T) {
	dir, store := testFS(t)

	if err := store.Save(samplePage("clean")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "clean.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}
