// Package wikiservice implements the page store: it owns the in-memory
// page table and the link index, persists through a storage.Provider, and
// answers graph queries. It is the sole mutator of the index; HTTP and MCP
// layers call into it and nothing else.
package wikiservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/motioneffector/wiki/internal/apperr"
	"github.com/motioneffector/wiki/internal/checksum"
	"github.com/motioneffector/wiki/internal/graph"
	"github.com/motioneffector/wiki/internal/linkindex"
	"github.com/motioneffector/wiki/internal/models"
	"github.com/motioneffector/wiki/internal/slug"
	"github.com/motioneffector/wiki/internal/storage"
	"github.com/motioneffector/wiki/internal/wikilink"
)

// Notifier receives post-commit change events. kind is one of "created",
// "updated", "deleted", "renamed", "imported".
type Notifier func(kind, id string)

// Service coordinates the page table, the link index, and persistence.
//
// The index and graph engine are lock-free by design; Service guards every
// entry point with its own mutex so concurrent HTTP handlers are safe.
type Service struct {
	mu      sync.RWMutex
	store   storage.Provider
	pattern *wikilink.Pattern
	pages   map[string]*models.Page
	idx     *linkindex.Index
	eng     *graph.Engine
	notify  atomic.Pointer[Notifier]
}

// New loads all pages from store and builds the link index.
func New(store storage.Provider, pattern *wikilink.Pattern) (*Service, error) {
	if pattern == nil {
		pattern = wikilink.Default()
	}
	s := &Service{
		store:   store,
		pattern: pattern,
		pages:   make(map[string]*models.Page),
		idx:     linkindex.New(),
	}
	s.eng = graph.New(indexView{s}, pageView{s})

	stored, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("wikiservice: load pages: %w", err)
	}
	for _, p := range stored {
		s.pages[p.ID] = p
		s.idx.IndexPage(p.ID, p.Content, s.pattern)
	}
	return s, nil
}

// SetNotifier installs the post-commit event sink. Safe to call
// concurrently with mutations; events already in flight keep the previous
// sink.
func (s *Service) SetNotifier(fn Notifier) {
	s.notify.Store(&fn)
}

// indexView and pageView adapt live service state to the graph engine's
// read interfaces. They are only invoked while the service lock is held.
type indexView struct{ s *Service }

func (v indexView) Forward() map[string][]string { return v.s.idx.Forward() }
func (v indexView) Links(id string) []string     { return v.s.idx.Links(id) }
func (v indexView) Backlinks(id string) []string { return v.s.idx.Backlinks(id) }

type pageView struct{ s *Service }

func (v pageView) Exists(id string) bool {
	_, ok := v.s.pages[id]
	return ok
}

func (v pageView) IDs() []string {
	out := make([]string, 0, len(v.s.pages))
	for id := range v.s.pages {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PageDetail is the full representation of a page, enriched with its
// checksum and backlinks.
type PageDetail struct {
	models.Page
	Checksum  string   `json:"checksum"`
	Backlinks []string `json:"backlinks"`
}

// CreatePageInput is the validated input for CreatePage.
type CreatePageInput struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// Validate checks field presence and shape.
func (in CreatePageInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Type, validation.Length(0, 64)),
		validation.Field(&in.Tags, validation.Each(validation.Required, validation.Length(1, 64))),
	)
}

// UpdatePageInput carries the fields to change; nil pointers keep the
// current value.
type UpdatePageInput struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
	Type    *string   `json:"type"`
}

// Validate checks the fields that are present.
func (in UpdatePageInput) Validate() error {
	if in.Title != nil {
		if err := validation.Validate(*in.Title, validation.Required, validation.Length(1, 200)); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	if in.Type != nil {
		if err := validation.Validate(*in.Type, validation.Length(0, 64)); err != nil {
			return fmt.Errorf("type: %w", err)
		}
	}
	if in.Tags != nil {
		if err := validation.Validate(*in.Tags, validation.Each(validation.Required, validation.Length(1, 64))); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
	}
	return nil
}

// CreatePage validates input, mints an identifier when the caller did not
// supply one, persists, and indexes the new page.
func (s *Service) CreatePage(_ context.Context, in CreatePageInput) (*PageDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if id != "" {
		if _, exists := s.pages[id]; exists {
			return nil, apperr.ErrAlreadyExists
		}
	} else {
		id = s.mintID(in.Title)
	}

	now := time.Now().UTC()
	p := &models.Page{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(p); err != nil {
		return nil, err
	}
	s.pages[id] = p
	s.idx.IndexPage(id, p.Content, s.pattern)

	s.publish("created", id)
	return s.detail(p), nil
}

// GetPage returns a page with checksum and backlinks.
func (s *Service) GetPage(_ context.Context, id string) (*PageDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.detail(p), nil
}

// UpdatePage applies the given changes with optimistic concurrency: a
// non-empty ifMatch must equal the current content checksum. The page is
// re-indexed only when its content actually changed.
func (s *Service) UpdatePage(_ context.Context, id string, in UpdatePageInput, ifMatch string) (*PageDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != checksum.Sum([]byte(p.Content)) {
		return nil, apperr.ErrConflict
	}

	contentChanged := in.Content != nil && *in.Content != p.Content

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(p); err != nil {
		return nil, err
	}
	if contentChanged {
		s.idx.IndexPage(id, p.Content, s.pattern)
	}

	s.publish("updated", id)
	return s.detail(p), nil
}

// DeletePage removes a page from the table, the store, and the index.
func (s *Service) DeletePage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[id]; !ok {
		return apperr.ErrNotFound
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	delete(s.pages, id)
	s.idx.DeindexPage(id)

	s.publish("deleted", id)
	return nil
}

// mintID derives a free identifier from title: the normalized slug, a
// numeric suffix on collision, or the page-N fallback sequence when the
// slug comes out empty. Caller holds the lock.
func (s *Service) mintID(title string) string {
	base := slug.Normalize(title)
	if base == "" {
		for n := 1; ; n++ {
			id := fmt.Sprintf("page-%d", n)
			if _, taken := s.pages[id]; !taken {
				return id
			}
		}
	}
	if _, taken := s.pages[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if _, taken := s.pages[id]; !taken {
			return id
		}
	}
}

// detail builds a PageDetail copy. Caller holds at least a read lock.
func (s *Service) detail(p *models.Page) *PageDetail {
	return &PageDetail{
		Page:      *p.Clone(),
		Checksum:  checksum.Sum([]byte(p.Content)),
		Backlinks: s.idx.Backlinks(p.ID),
	}
}

// publish invokes the notifier after a committed mutation. A panicking
// subscriber is logged and isolated; the mutation has already happened.
func (s *Service) publish(kind, id string) {
	fnp := s.notify.Load()
	if fnp == nil || *fnp == nil {
		return
	}
	fn := *fnp
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event subscriber panic",
				slog.String("kind", kind),
				slog.String("id", id),
				slog.Any("panic", r))
		}
	}()
	fn(kind, id)
}
