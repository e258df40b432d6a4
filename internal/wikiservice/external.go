package wikiservice

import (
	"sort"

	"github.com/motioneffector/wiki/internal/models"
)

// ReloadExternal absorbs a page that changed outside the service (the file
// watcher's path). The page is taken as-is, not persisted again, and
// re-indexed. Returns the event kind that was published, or "" when the
// stored page is identical and nothing happened.
func (s *Service) ReloadExternal(p *models.Page) string {
	if p == nil || p.ID == "" {
		return ""
	}

	s.mu.Lock()
	existing, existed := s.pages[p.ID]
	if existed && existing.Content == p.Content && existing.Title == p.Title {
		s.mu.Unlock()
		return ""
	}
	s.pages[p.ID] = p.Clone()
	s.idx.IndexPage(p.ID, p.Content, s.pattern)
	s.mu.Unlock()

	kind := "created"
	if existed {
		kind = "updated"
	}
	s.publish(kind, p.ID)
	return kind
}

// RemoveExternal drops a page that disappeared from storage outside the
// service. No store delete is issued.
func (s *Service) RemoveExternal(id string) bool {
	s.mu.Lock()
	_, existed := s.pages[id]
	if existed {
		delete(s.pages, id)
		s.idx.DeindexPage(id)
	}
	s.mu.Unlock()

	if existed {
		s.publish("deleted", id)
	}
	return existed
}

// PageIDs returns the sorted ids currently in the page table.
func (s *Service) PageIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.pages))
	for id := range s.pages {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
