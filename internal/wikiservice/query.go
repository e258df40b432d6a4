package wikiservice

import (
	"context"
	"sort"
	"strings"

	"github.com/motioneffector/wiki/internal/graph"
	"github.com/motioneffector/wiki/internal/models"
)

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Type      string   `json:"type,omitempty"`
	UpdatedAt string   `json:"updated_at"`
}

// ListPages returns paginated pages filtered by tag and type. sortKey is
// one of "updated_at" (default, newest first), "title", or "id".
func (s *Service) ListPages(_ context.Context, limit, offset int, tag, pageType, sortKey string) ([]PageListItem, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []*models.Page
	for _, p := range s.pages {
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		if pageType != "" && p.Type != pageType {
			continue
		}
		filtered = append(filtered, p)
	}

	switch sortKey {
	case "title":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Title < filtered[j].Title })
	case "id":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	default:
		sort.Slice(filtered, func(i, j int) bool {
			if filtered[i].UpdatedAt.Equal(filtered[j].UpdatedAt) {
				return filtered[i].ID < filtered[j].ID
			}
			return filtered[i].UpdatedAt.After(filtered[j].UpdatedAt)
		})
	}

	total := len(filtered)
	if offset >= total {
		return []PageListItem{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]PageListItem, 0, end-offset)
	for _, p := range filtered[offset:end] {
		items = append(items, PageListItem{
			ID:        p.ID,
			Title:     p.Title,
			Tags:      nonNilSlice(p.Tags),
			Type:      p.Type,
			UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return items, total, nil
}

// SearchResult is one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search performs case-insensitive substring search over titles and
// content, optionally filtered by tag. Title matches rank before content
// matches; ties break on id.
func (s *Service) Search(_ context.Context, query string, limit int, tag string) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		rank int
		res  SearchResult
	}
	var hits []hit
	for _, p := range s.pages {
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		titleIdx := strings.Index(strings.ToLower(p.Title), q)
		contentIdx := strings.Index(strings.ToLower(p.Content), q)
		if titleIdx < 0 && contentIdx < 0 {
			continue
		}
		rank := 0
		if titleIdx < 0 {
			rank = 1
		}
		hits = append(hits, hit{rank: rank, res: SearchResult{
			ID:      p.ID,
			Title:   p.Title,
			Snippet: snippet(p.Content, contentIdx),
		}})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].res.ID < hits[j].res.ID
	})

	out := make([]SearchResult, 0, limit)
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.res)
	}
	return out, nil
}

// Links returns the raw forward set of a page, in first-occurrence order.
func (s *Service) Links(_ context.Context, id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Links(id)
}

// Backlinks returns the source ids of pages referencing the given id.
func (s *Service) Backlinks(_ context.Context, id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Backlinks(id)
}

// DeadLinks enumerates links whose targets do not exist.
func (s *Service) DeadLinks(_ context.Context) []graph.DeadLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.DeadLinks()
}

// Orphans returns pages nothing links to.
func (s *Service) Orphans(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Orphans()
}

// Graph returns the full adjacency map of normalized link targets.
func (s *Service) Graph(_ context.Context) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Adjacency()
}

// Connected returns every page within depth hops of id, in both link
// directions.
func (s *Service) Connected(_ context.Context, id string, depth int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng.Connected(id, depth)
}

func hasTag(p *models.Page, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// snippet extracts up to 160 bytes of context around the match position,
// snapped to rune boundaries.
func snippet(content string, at int) string {
	if content == "" {
		return ""
	}
	if at < 0 {
		at = 0
	}
	start := at - 40
	if start < 0 {
		start = 0
	}
	end := start + 160
	if end > len(content) {
		end = len(content)
	}
	for start > 0 && !isRuneStart(content[start]) {
		start--
	}
	for end < len(content) && !isRuneStart(content[end]) {
		end++
	}
	snip := strings.ReplaceAll(content[start:end], "\n", " ")
	return strings.TrimSpace(snip)
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
