// Package linkindex maintains the bidirectional link index: which link
// texts each page contains, and which pages reference each identifier.
//
// The index is owned and mutated by a single caller (the wiki service) and
// performs no locking of its own. All query methods return fresh copies so
// callers can never alias internal state.
package linkindex

import (
	"sort"

	"github.com/motioneffector/wiki/internal/slug"
	"github.com/motioneffector/wiki/internal/wikilink"
)

// Index holds the forward index (page id → link texts in first-occurrence
// order) and the reverse index (normalized target id → set of source ids).
type Index struct {
	forward map[string][]string
	reverse map[string]map[string]struct{}
}

// New returns an empty index.
func New() *Index {
	return &Index{
		forward: make(map[string][]string),
		reverse: make(map[string]map[string]struct{}),
	}
}

// IndexPage scans content and replaces the forward entry for id wholesale,
// registering id as a source in the reverse entry of every normalized
// target. Any contribution from the page's previous content is retracted
// first, so re-indexing changed content is a single call and never disturbs
// the reverse entry keyed by id itself (the backlinks pointing at the page).
func (x *Index) IndexPage(id, content string, p *wikilink.Pattern) {
	x.retract(id)
	links := wikilink.ExtractLinks(content, p)
	x.forward[id] = links
	for _, text := range links {
		target := slug.Normalize(text)
		set, ok := x.reverse[target]
		if !ok {
			set = make(map[string]struct{})
			x.reverse[target] = set
		}
		set[id] = struct{}{}
	}
}

// DeindexPage removes id from the index entirely: its forward entry, its
// membership in every reverse entry, and the reverse entry keyed by id
// itself (the page ceases to exist as a link target). Called on page
// deletion.
func (x *Index) DeindexPage(id string) {
	x.retract(id)
	delete(x.forward, id)
	delete(x.reverse, id)
}

// retract removes id as a source from the reverse entries of its current
// forward links, dropping reverse entries that become empty.
func (x *Index) retract(id string) {
	for _, text := range x.forward[id] {
		target := slug.Normalize(text)
		if set, ok := x.reverse[target]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(x.reverse, target)
			}
		}
	}
}

// Rename relocates every index entry from oldID to newID and rewrites link
// texts that resolve to oldID so they read as newTitle. The caller is
// responsible for rewriting page content to match and for checking that
// newID is free before calling.
func (x *Index) Rename(oldID, newID, newTitle string) {
	if links, ok := x.forward[oldID]; ok {
		x.forward[newID] = links
		delete(x.forward, oldID)
	}
	if set, ok := x.reverse[oldID]; ok {
		// Merge into any reverse entry already keyed newID: pages may have
		// dead-linked the new title before it existed, and those
		// registrations must survive the relocation.
		if dst, exists := x.reverse[newID]; exists {
			for src := range set {
				dst[src] = struct{}{}
			}
		} else {
			x.reverse[newID] = set
		}
		delete(x.reverse, oldID)
	}

	for id, links := range x.forward {
		var changed bool
		seen := make(map[string]struct{}, len(links))
		out := links[:0]
		for _, text := range links {
			if slug.Normalize(text) == oldID {
				text = newTitle
				changed = true
			}
			if _, dup := seen[text]; dup {
				changed = true
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
		}
		if changed {
			x.forward[id] = out
		}
	}

	for _, set := range x.reverse {
		if _, ok := set[oldID]; ok {
			delete(set, oldID)
			set[newID] = struct{}{}
		}
	}
}

// Links returns a copy of the forward entry for id, in first-occurrence
// order. Unknown ids yield an empty slice.
func (x *Index) Links(id string) []string {
	links := x.forward[id]
	out := make([]string, len(links))
	copy(out, links)
	return out
}

// Backlinks returns the sorted source ids referencing the given normalized
// identifier. Unknown ids yield an empty slice.
func (x *Index) Backlinks(id string) []string {
	set := x.reverse[id]
	out := make([]string, 0, len(set))
	for src := range set {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Forward returns a snapshot copy of the whole forward index.
func (x *Index) Forward() map[string][]string {
	out := make(map[string][]string, len(x.forward))
	for id, links := range x.forward {
		cp := make([]string, len(links))
		copy(cp, links)
		out[id] = cp
	}
	return out
}
