// Package graph answers link-structure queries over the page table and the
// bidirectional link index: dead links, orphans, adjacency export, and
// bounded-depth neighborhood traversal.
//
// Every query is read-only and returns freshly allocated collections.
// Results are deterministic for a given index state: map iteration is
// always routed through sorted key lists.
package graph

import (
	"sort"

	"github.com/motioneffector/wiki/internal/slug"
)

// LinkIndex is the read surface of the bidirectional link index.
type LinkIndex interface {
	Forward() map[string][]string
	Links(id string) []string
	Backlinks(id string) []string
}

// PageSet is the read surface of the page table.
type PageSet interface {
	Exists(id string) bool
	IDs() []string
}

// DeadLink is a link text whose normalized form matches no existing page.
type DeadLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Engine runs graph queries against an index and a page set.
type Engine struct {
	idx   LinkIndex
	pages PageSet
}

// New creates an engine. Both arguments are read live on each query; the
// engine holds no state of its own.
func New(idx LinkIndex, pages PageSet) *Engine {
	return &Engine{idx: idx, pages: pages}
}

// DeadLinks enumerates every (source, link text) pair whose target does not
// exist. The same text from two sources yields two entries. Sources are
// visited in sorted order and texts in first-occurrence order.
func (e *Engine) DeadLinks() []DeadLink {
	forward := e.idx.Forward()
	sources := make([]string, 0, len(forward))
	for id := range forward {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	out := []DeadLink{}
	for _, src := range sources {
		for _, text := range forward[src] {
			if !e.pages.Exists(slug.Normalize(text)) {
				out = append(out, DeadLink{Source: src, Target: text})
			}
		}
	}
	return out
}

// Orphans returns the sorted ids of pages nothing links to. A self-link
// populates the page's own reverse entry and so excludes it.
func (e *Engine) Orphans() []string {
	ids := e.pages.IDs()
	sort.Strings(ids)

	out := []string{}
	for _, id := range ids {
		if len(e.idx.Backlinks(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Adjacency maps every existing page id to the normalized form of each of
// its link texts. Dead targets appear in the lists without being keys.
func (e *Engine) Adjacency() map[string][]string {
	out := make(map[string][]string)
	for _, id := range e.pages.IDs() {
		links := e.idx.Links(id)
		targets := make([]string, 0, len(links))
		for _, text := range links {
			targets = append(targets, slug.Normalize(text))
		}
		out[id] = targets
	}
	return out
}

// Connected returns every page within depth hops of id, following links in
// both directions, each page exactly once. Depth 0 returns just id itself;
// an unknown id returns an empty slice. A visited set guarantees
// termination on cycles of any length, including self-links.
func (e *Engine) Connected(id string, depth int) []string {
	if !e.pages.Exists(id) {
		return []string{}
	}

	visited := map[string]struct{}{id: {}}
	result := []string{id}
	frontier := []string{id}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, cur := range frontier {
			for _, n := range e.neighbors(cur) {
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = struct{}{}
				result = append(result, n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return result
}

// neighbors returns the sorted, deduplicated union of outgoing targets that
// exist as pages and incoming backlink sources.
func (e *Engine) neighbors(id string) []string {
	set := make(map[string]struct{})
	for _, text := range e.idx.Links(id) {
		target := slug.Normalize(text)
		if e.pages.Exists(target) {
			set[target] = struct{}{}
		}
	}
	for _, src := range e.idx.Backlinks(id) {
		set[src] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
