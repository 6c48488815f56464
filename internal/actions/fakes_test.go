package actions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pesantren/internal/models"
	"pesantren/internal/revalidate"
	"pesantren/internal/store"
)

var errUnique = &pgconn.PgError{Code: "23505", ConstraintName: "slug_key"}

// memPosts is an in-memory PostRepo enforcing slug uniqueness.
type memPosts struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]models.BlogPost
	fail  error
	calls int
}

func newMemPosts() *memPosts { return &memPosts{rows: map[uuid.UUID]models.BlogPost{}} }

func (m *memPosts) slugTaken(slug string, except uuid.UUID) bool {
	for id, p := range m.rows {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *memPosts) FindByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPosts) Create(_ context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail != nil {
		return nil, m.fail
	}
	if m.slugTaken(p.Slug, uuid.Nil) {
		return nil, errUnique
	}
	out := *p
	out.ID = uuid.New()
	m.rows[out.ID] = out
	return &out, nil
}

func (m *memPosts) Update(_ context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.rows[p.ID]; !ok {
		return nil, store.ErrNotFound
	}
	if m.slugTaken(p.Slug, p.ID) {
		return nil, errUnique
	}
	m.rows[p.ID] = *p
	out := *p
	return &out, nil
}

func (m *memPosts) SetPublished(_ context.Context, id uuid.UUID, published bool, at *time.Time, by *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsPublished, p.PublishedAt, p.UpdatedBy = published, at, by
	m.rows[id] = p
	return nil
}

func (m *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memPosts) CountByCategory(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.rows {
		if p.CategoryID != nil && *p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type memCategories struct {
	rows      map[uuid.UUID]models.BlogCategory
	deleteErr error
}

func newMemCategories() *memCategories {
	return &memCategories{rows: map[uuid.UUID]models.BlogCategory{}}
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.BlogCategory, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCategories) Create(_ context.Context, c *models.BlogCategory) (*models.BlogCategory, error) {
	for _, existing := range m.rows {
		if existing.Slug == c.Slug {
			return nil, errUnique
		}
	}
	out := *c
	out.ID = uuid.New()
	m.rows[out.ID] = out
	return &out, nil
}

func (m *memCategories) Update(_ context.Context, c *models.BlogCategory) (*models.BlogCategory, error) {
	if _, ok := m.rows[c.ID]; !ok {
		return nil, store.ErrNotFound
	}
	m.rows[c.ID] = *c
	out := *c
	return &out, nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPages struct {
	rows map[uuid.UUID]models.StaticPage
}

func newMemPages() *memPages { return &memPages{rows: map[uuid.UUID]models.StaticPage{}} }

func (m *memPages) FindByID(_ context.Context, id uuid.UUID) (*models.StaticPage, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPages) Create(_ context.Context, p *models.StaticPage) (*models.StaticPage, error) {
	out := *p
	out.ID = uuid.New()
	m.rows[out.ID] = out
	return &out, nil
}

func (m *memPages) Update(_ context.Context, p *models.StaticPage) (*models.StaticPage, error) {
	if _, ok := m.rows[p.ID]; !ok {
		return nil, store.ErrNotFound
	}
	m.rows[p.ID] = *p
	out := *p
	return &out, nil
}

func (m *memPages) SetPublished(_ context.Context, id uuid.UUID, published bool, at *time.Time, by *uuid.UUID) error {
	p, ok := m.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsPublished, p.PublishedAt, p.UpdatedBy = published, at, by
	m.rows[id] = p
	return nil
}

func (m *memPages) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memSections struct {
	rows       map[uuid.UUID]models.WebsiteSection
	reorderErr error
	reordered  []store.ReorderItem
}

func newMemSections() *memSections {
	return &memSections{rows: map[uuid.UUID]models.WebsiteSection{}}
}

func (m *memSections) FindByID(_ context.Context, id uuid.UUID) (*models.WebsiteSection, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSections) Create(_ context.Context, s *models.WebsiteSection) (*models.WebsiteSection, error) {
	for _, existing := range m.rows {
		if existing.Page == s.Page && existing.Key == s.Key {
			return nil, errUnique
		}
	}
	out := *s
	out.ID = uuid.New()
	m.rows[out.ID] = out
	return &out, nil
}

func (m *memSections) Update(_ context.Context, s *models.WebsiteSection) (*models.WebsiteSection, error) {
	prior, ok := m.rows[s.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	prior.Title, prior.Subtitle, prior.Content, prior.IsVisible = s.Title, s.Subtitle, s.Content, s.IsVisible
	prior.UpdatedBy = s.UpdatedBy
	m.rows[s.ID] = prior
	return &prior, nil
}

func (m *memSections) Reorder(_ context.Context, items []store.ReorderItem, _ *uuid.UUID) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.reordered = items
	return nil
}

func (m *memSections) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memSettings struct {
	values models.SiteSettings
	fail   error
}

func (m *memSettings) All(context.Context) (models.SiteSettings, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	return m.values.Clone(), nil
}

func (m *memSettings) SetMany(_ context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// recordingSignal captures every declaration.
type recordingSignal struct {
	mu    sync.Mutex
	decls []revalidate.Declaration
}

func (r *recordingSignal) Revalidate(_ context.Context, d revalidate.Declaration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decls = append(r.decls, d)
}

func (r *recordingSignal) last() revalidate.Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.decls) == 0 {
		return revalidate.Declaration{}
	}
	return r.decls[len(r.decls)-1]
}

func (r *recordingSignal) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decls)
}

var errBackend = errors.New("connection refused")
