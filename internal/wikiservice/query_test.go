package wikiservice

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestListPages_FiltersAndSorts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, in := range []CreatePageInput{
		{Title: "Beta", Tags: []string{"alpha-tag"}, Type: "article"},
		{Title: "Alpha", Tags: []string{"alpha-tag"}, Type: "note"},
		{Title: "Gamma", Type: "article"},
	} {
		if _, err := svc.CreatePage(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.ListPages(ctx, 0, 0, "", "", "title")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	if !reflect.DeepEqual(titles, []string{"Alpha", "Beta", "Gamma"}) {
		t.Errorf("titles = %v", titles)
	}

	items, total, err = svc.ListPages(ctx, 0, 0, "alpha-tag", "", "id")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || items[0].ID != "alpha" || items[1].ID != "beta" {
		t.Errorf("tag filter: total=%d items=%v", total, items)
	}

	items, total, err = svc.ListPages(ctx, 0, 0, "", "article", "id")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || items[0].ID != "beta" || items[1].ID != "gamma" {
		t.Errorf("type filter: total=%d items=%v", total, items)
	}
}

func TestListPages_Pagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D", "E"} {
		mustCreate(t, svc, title, "x")
	}

	items, total, err := svc.ListPages(ctx, 2, 2, "", "", "id")
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(items) != 2 || items[0].ID != "c" || items[1].ID != "d" {
		t.Errorf("total=%d items=%v", total, items)
	}

	// Offset past the end yields an empty page, not an error.
	items, total, err = svc.ListPages(ctx, 10, 100, "", "", "id")
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(items) != 0 {
		t.Errorf("total=%d len=%d", total, len(items))
	}
}

func TestSearch_TitleRanksBeforeContent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "Plain Page", "mentions dragons in passing")
	mustCreate(t, svc, "Dragon Lore", "all about them")

	results, err := svc.Search(ctx, "dragon", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "dragon-lore" {
		t.Errorf("first result = %q, want dragon-lore", results[0].ID)
	}
	if !strings.Contains(results[1].Snippet, "dragons") {
		t.Errorf("snippet = %q", results[1].Snippet)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, "Mixed Case", "SHOUTING content")

	results, err := svc.Search(context.Background(), "shouting", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestSearch_TagFilterAndLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i, title := range []string{"One", "Two", "Three"} {
		tags := []string{"common"}
		if i == 0 {
			tags = []string{"rare"}
		}
		if _, err := svc.CreatePage(ctx, CreatePageInput{Title: title, Content: "needle", Tags: tags}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := svc.Search(ctx, "needle", 10, "rare")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "one" {
		t.Errorf("results = %v", results)
	}

	results, err = svc.Search(ctx, "needle", 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("limit ignored: %v", results)
	}
}

func TestGraph_Adjacency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "Hub", "[[Spoke]] and dead [[Ghost]]")
	mustCreate(t, svc, "Spoke", "back to [[Hub]]")

	got := svc.Graph(ctx)
	want := map[string][]string{
		"hub":   {"spoke", "ghost"},
		"spoke": {"hub"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Graph = %v, want %v", got, want)
	}
}

func TestConnected_TraversesBothDirections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "A", "[[B]]")
	mustCreate(t, svc, "B", "[[C]]")
	mustCreate(t, svc, "C", "done")
	mustCreate(t, svc, "D", "[[A]]")

	got := svc.Connected(ctx, "a", 1)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b", "d"}) {
		t.Errorf("Connected(a, 1) = %v, want [a b d]", got)
	}

	got = svc.Connected(ctx, "a", 2)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("Connected(a, 2) = %v, want [a b c d]", got)
	}
}

func TestSnippet_RuneSafe(t *testing.T) {
	// A match deep inside multi-byte content must not split runes.
	content := strings.Repeat("héllo wörld ", 30) + "NEEDLE" + strings.Repeat(" ëxtra", 30)
	at := strings.Index(content, "NEEDLE")
	snip := snippet(content, at)
	if !strings.Contains(snip, "NEEDLE") {
		t.Errorf("snippet lost the match: %q", snip)
	}
	for _, r := range snip {
		if r == '�' {
			t.Fatalf("snippet split a rune: %q", snip)
		}
	}
}
