package graph

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/motioneffector/wiki/internal/linkindex"
	"github.com/motioneffector/wiki/internal/wikilink"
)

// pageSet is a fixed set of existing page ids.
type pageSet map[string]struct{}

func (p pageSet) Exists(id string) bool {
	_, ok := p[id]
	return ok
}

func (p pageSet) IDs() []string {
	out := make([]string, 0, len(p))
	for id := range p {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// build indexes the given id→content pages and returns an engine over them.
func build(t *testing.T, pages map[string]string) *Engine {
	t.Helper()
	idx := linkindex.New()
	set := pageSet{}
	for id, content := range pages {
		idx.IndexPage(id, content, wikilink.Default())
		set[id] = struct{}{}
	}
	return New(idx, set)
}

func TestDeadLinks(t *testing.T) {
	e := build(t, map[string]string{
		"story":  "A [[Dragon]] guards the [[Castle]].",
		"castle": "Home of the [[King]].",
	})

	got := e.DeadLinks()
	want := []DeadLink{
		{Source: "castle", Target: "King"},
		{Source: "story", Target: "Dragon"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeadLinks = %v, want %v", got, want)
	}
}

func TestDeadLinks_SameTextTwoSources(t *testing.T) {
	e := build(t, map[string]string{
		"a": "[[Ghost]]",
		"b": "[[Ghost]]",
	})

	got := e.DeadLinks()
	want := []DeadLink{
		{Source: "a", Target: "Ghost"},
		{Source: "b", Target: "Ghost"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeadLinks = %v, want %v", got, want)
	}
}

func TestDeadLinks_HealedByCreation(t *testing.T) {
	pages := map[string]string{"story": "A [[Dragon]] appears."}
	e := build(t, pages)
	if dead := e.DeadLinks(); len(dead) != 1 {
		t.Fatalf("DeadLinks = %v, want one entry", dead)
	}

	pages["dragon"] = "Large, scaly."
	e = build(t, pages)
	if dead := e.DeadLinks(); len(dead) != 0 {
		t.Errorf("DeadLinks = %v, want empty after target created", dead)
	}
}

func TestDeadLinks_NoneIsEmptyNotNil(t *testing.T) {
	e := build(t, map[string]string{"a": "no links here"})
	if dead := e.DeadLinks(); dead == nil || len(dead) != 0 {
		t.Errorf("DeadLinks = %v, want empty non-nil", dead)
	}
}

func TestOrphans(t *testing.T) {
	e := build(t, map[string]string{
		"index":  "Points at [[Page A]].",
		"page-a": "linked from index",
		"lonely": "nothing links here",
	})

	got := e.Orphans()
	want := []string{"index", "lonely"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Orphans = %v, want %v", got, want)
	}
}

func TestOrphans_SelfLinkExcludes(t *testing.T) {
	e := build(t, map[string]string{
		"loop": "links to [[Loop]] itself",
	})
	if got := e.Orphans(); len(got) != 0 {
		t.Errorf("Orphans = %v, want empty", got)
	}
}

func TestAdjacency(t *testing.T) {
	e := build(t, map[string]string{
		"a": "[[Page B]] and dead [[Ghost]]",
		"b": "no links",
	})

	got := e.Adjacency()
	want := map[string][]string{
		"a": {"page-b", "ghost"},
		"b": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Adjacency = %v, want %v", got, want)
	}
}

func TestConnected_Chain(t *testing.T) {
	// a -> b -> c -> d
	pages := map[string]string{
		"a": "[[B]]",
		"b": "[[C]]",
		"c": "[[D]]",
		"d": "the end",
	}
	e := build(t, pages)

	cases := []struct {
		depth int
		want  []string
	}{
		{0, []string{"a"}},
		{1, []string{"a", "b"}},
		{2, []string{"a", "b", "c"}},
		{3, []string{"a", "b", "c", "d"}},
		{10, []string{"a", "b", "c", "d"}},
	}
	for _, c := range cases {
		got := e.Connected("a", c.depth)
		sort.Strings(got)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Connected(a, %d) = %v, want %v", c.depth, got, c.want)
		}
	}
}

func TestConnected_FollowsBacklinks(t *testing.T) {
	// b -> a: from a at depth 1, b is reachable via its backlink.
	e := build(t, map[string]string{
		"a": "no outgoing links",
		"b": "[[A]]",
	})

	got := e.Connected("a", 1)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Connected(a, 1) = %v, want [a b]", got)
	}
}

func TestConnected_CycleTerminates(t *testing.T) {
	e := build(t, map[string]string{
		"a": "[[B]]",
		"b": "[[A]]",
	})

	for depth := 1; depth <= 1000; depth *= 10 {
		got := e.Connected("a", depth)
		sort.Strings(got)
		if !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("Connected(a, %d) = %v, want [a b]", depth, got)
		}
	}
}

func TestConnected_SelfLink(t *testing.T) {
	e := build(t, map[string]string{"loop": "[[Loop]]"})
	got := e.Connected("loop", 5)
	if !reflect.DeepEqual(got, []string{"loop"}) {
		t.Errorf("Connected(loop, 5) = %v, want [loop]", got)
	}
}

func TestConnected_UnknownID(t *testing.T) {
	e := build(t, map[string]string{"a": "x"})
	if got := e.Connected("ghost", 3); got == nil || len(got) != 0 {
		t.Errorf("Connected(ghost, 3) = %v, want empty non-nil", got)
	}
}

func TestConnected_DeadTargetsNotVisited(t *testing.T) {
	e := build(t, map[string]string{"a": "[[Ghost]] and [[B]]", "b": "fine"})
	got := e.Connected("a", 2)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Connected(a, 2) = %v, want [a b]", got)
	}
}

func TestConnected_WideGraph(t *testing.T) {
	// hub links to 20 spokes; all reachable at depth 1.
	pages := map[string]string{}
	content := ""
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("spoke-%02d", i)
		pages[id] = "spoke"
		content += fmt.Sprintf("[[%s]] ", id)
	}
	pages["hub"] = content
	e := build(t, pages)

	if got := e.Connected("hub", 1); len(got) != 21 {
		t.Errorf("len(Connected(hub, 1)) = %d, want 21", len(got))
	}
}
