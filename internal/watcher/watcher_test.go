package watcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/motioneffector/wiki/internal/models"
	"github.com/motioneffector/wiki/internal/storage"
	"github.com/motioneffector/wiki/internal/testutil"
	"github.com/motioneffector/wiki/internal/wikilink"
	"github.com/motioneffector/wiki/internal/wikiservice"
)

func testWatcherSetup(t *testing.T) (string, *storage.FS, *wikiservice.Service) {
	t.Helper()
	dir, store := testutil.TestStore(t)
	svc, err := wikiservice.New(store, wikilink.Default())
	if err != nil {
		t.Fatal(err)
	}
	return dir, store, svc
}

func TestPageIDFromPath(t *testing.T) {
	cases := []struct {
		path  string
		id    string
		valid bool
	}{
		{"/pages/my-page.json", "my-page", true},
		{"my-page.json", "my-page", true},
		{"/pages/.hidden.json", "", false},
		{"/pages/.wiki-tmp-123", "", false},
		{"/pages/readme.txt", "", false},
	}
	for _, c := range cases {
		id, valid := pageIDFromPath(c.path)
		if id != c.id || valid != c.valid {
			t.Errorf("pageIDFromPath(%q) = %q, %v; want %q, %v", c.path, id, valid, c.id, c.valid)
		}
	}
}

func TestReconcile_SyncsTableWithDisk(t *testing.T) {
	_, store, svc := testWatcherSetup(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// One page the service knows about, one that appeared behind its back.
	if err := store.Save(&models.Page{ID: "known", Title: "Known"}); err != nil {
		t.Fatal(err)
	}
	svc.ReloadExternal(&models.Page{ID: "known", Title: "Known"})
	svc.ReloadExternal(&models.Page{ID: "stale", Title: "Gone From Disk"})
	if err := store.Save(&models.Page{ID: "surprise", Title: "Surprise"}); err != nil {
		t.Fatal(err)
	}

	reconcile(svc, store, logger)

	ids := svc.PageIDs()
	if len(ids) != 2 || ids[0] != "known" || ids[1] != "surprise" {
		t.Errorf("PageIDs = %v, want [known surprise]", ids)
	}
}

func TestWatch_PicksUpExternalCreate(t *testing.T) {
	dir, store, svc := testWatcherSetup(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, svc, store, dir, logger) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)

	data, _ := json.Marshal(&models.Page{ID: "external", Title: "External", Content: "hello"})
	if err := os.WriteFile(filepath.Join(dir, "external.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := svc.GetPage(ctx, "external"); err == nil {
			cancel()
			if werr := <-done; werr != nil {
				t.Errorf("Watch returned %v", werr)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher never absorbed the external page")
}
