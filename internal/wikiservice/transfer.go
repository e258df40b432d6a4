package wikiservice

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/motioneffector/wiki/internal/apperr"
	"github.com/motioneffector/wiki/internal/linkindex"
	"github.com/motioneffector/wiki/internal/models"
)

// ImportMode controls how incoming pages interact with existing ones.
type ImportMode string

const (
	// ImportReplace wipes the store before importing.
	ImportReplace ImportMode = "replace"
	// ImportMerge overwrites pages with matching ids and adds the rest.
	ImportMerge ImportMode = "merge"
	// ImportSkip only adds pages whose ids are not yet taken.
	ImportSkip ImportMode = "skip"
)

// ParseImportMode validates a mode string; empty defaults to merge.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case "":
		return ImportMerge, nil
	case ImportReplace, ImportMerge, ImportSkip:
		return ImportMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown import mode %q", apperr.ErrInvalidInput, s)
	}
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Export returns a copy of every page, sorted by id. The result is the
// JSON-serializable interchange form also accepted by Import.
func (s *Service) Export(_ context.Context) []*models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Import loads a batch of pages. In replace mode the existing store is
// cleared first through the bulk fast path: pages are dropped without
// per-page index maintenance and the index is rebuilt from scratch.
func (s *Service) Import(_ context.Context, incoming []*models.Page, mode ImportMode) (ImportStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats ImportStats

	if mode == ImportReplace {
		for id := range s.pages {
			if err := s.store.Delete(id); err != nil {
				return stats, fmt.Errorf("clear %s: %w", id, err)
			}
		}
		s.pages = make(map[string]*models.Page)
		s.idx = linkindex.New()
	}

	now := time.Now().UTC()
	for _, in := range incoming {
		if in == nil {
			continue
		}
		p := in.Clone()
		if p.Title == "" {
			stats.Skipped++
			continue
		}
		if p.ID == "" {
			p.ID = s.mintID(p.Title)
		}
		if _, exists := s.pages[p.ID]; exists && mode == ImportSkip {
			stats.Skipped++
			continue
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		if err := s.store.Save(p); err != nil {
			return stats, fmt.Errorf("import %s: %w", p.ID, err)
		}
		s.pages[p.ID] = p
		s.idx.IndexPage(p.ID, p.Content, s.pattern)
		stats.Imported++
	}

	s.publish("imported", "")
	return stats, nil
}
