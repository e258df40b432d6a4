package wikiservice

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/motioneffector/wiki/internal/apperr"
	"github.com/motioneffector/wiki/internal/models"
	"github.com/motioneffector/wiki/internal/slug"
	"github.com/motioneffector/wiki/internal/wikilink"
)

// RenamePage changes a page's title. With updateID the identifier is
// re-derived from the new title and every page whose content references the
// old identifier is rewritten and re-persisted, so existing [[links]] keep
// resolving. A collision with an existing identifier is rejected before any
// mutation happens.
func (s *Service) RenamePage(_ context.Context, id, newTitle string, updateID bool) (*PageDetail, error) {
	if err := validation.Validate(newTitle, validation.Required, validation.Length(1, 200)); err != nil {
		return nil, fmt.Errorf("%w: title: %v", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	if !updateID {
		p.Title = newTitle
		p.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(p); err != nil {
			return nil, err
		}
		s.publish("renamed", id)
		return s.detail(p), nil
	}

	newID := slug.Normalize(newTitle)
	if newID == "" {
		newID = s.mintID(newTitle)
	}
	if newID != id {
		if _, taken := s.pages[newID]; taken {
			return nil, apperr.ErrAlreadyExists
		}
	}

	// Rewrite every referring page, the renamed page's own self-links
	// included, replacing each link text that resolves to the old id.
	now := time.Now().UTC()
	sources := s.idx.Backlinks(id)
	for _, src := range sources {
		ref, ok := s.pages[src]
		if !ok {
			continue
		}
		rewritten := s.rewriteLinksTo(ref, id, newTitle)
		if rewritten == ref.Content {
			continue
		}
		ref.Content = rewritten
		ref.UpdatedAt = now
		if src != id {
			if err := s.store.Save(ref); err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", src, err)
			}
		}
	}

	if newID != id {
		delete(s.pages, id)
		p.ID = newID
		s.pages[newID] = p
	}
	p.Title = newTitle
	p.UpdatedAt = now
	if err := s.store.Save(p); err != nil {
		return nil, err
	}
	if newID != id {
		if err := s.store.Delete(id); err != nil {
			return nil, fmt.Errorf("remove old id %s: %w", id, err)
		}
		s.idx.Rename(id, newID, newTitle)
	}

	// Re-scan every rewritten page so the forward index exactly reflects
	// the rewritten content.
	for _, src := range sources {
		if src == id {
			src = newID
		}
		if ref, ok := s.pages[src]; ok {
			s.idx.IndexPage(src, ref.Content, s.pattern)
		}
	}

	s.publish("renamed", newID)
	return s.detail(p), nil
}

// rewriteLinksTo returns ref's content with every link text resolving to
// targetID replaced by newTitle, in both [[text]] and [[text|display]]
// forms.
func (s *Service) rewriteLinksTo(ref *models.Page, targetID, newTitle string) string {
	content := ref.Content
	for _, text := range s.idx.Links(ref.ID) {
		if slug.Normalize(text) == targetID && text != newTitle {
			content = wikilink.RewriteTargets(content, text, newTitle)
		}
	}
	return content
}
