// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes for handler tests. Every store and
// the action service are replaced by in-memory doubles; the stores and
// actions have their own tests.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pesantren/internal/actions"
	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/reader"
	"pesantren/internal/sections"
	"pesantren/internal/settings"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

// serve routes one request to h through a chi router so URL params work.
func serve(h http.HandlerFunc, method, pattern, target, body string, actor *auth.Actor) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), actor))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func testActor() *auth.Actor {
	return &auth.Actor{ID: uuid.New(), Email: "editor@pesantren.local", Role: models.RoleEditor}
}

// memCache is an in-memory PageCacher.
type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemCache() *memCache { return &memCache{m: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = append([]byte(nil), body...)
}

func (c *memCache) has(key string) bool {
	_, ok := c.Get(context.Background(), key)
	return ok
}

// memPosts serves posts for both the reader and the dashboard.
type memPosts struct {
	mu    sync.Mutex
	items []models.BlogPost
	err   error
	lists int
	last  store.PostFilter
}

func (m *memPosts) List(_ context.Context, f store.PostFilter) ([]models.BlogPost, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	m.last = f
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []models.BlogPost
	for _, p := range m.items {
		if f.PublishedOnly && !p.IsPublished {
			continue
		}
		if f.Search != "" && !matchesSearch(p, f.Search) {
			continue
		}
		if f.CategorySlug != "" && (p.Category == nil || p.Category.Slug != f.CategorySlug) {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

// matchesSearch mirrors the store: a case-insensitive substring of the
// title or the excerpt.
func matchesSearch(p models.BlogPost, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	return p.Excerpt != nil && strings.Contains(strings.ToLower(*p.Excerpt), q)
}

func (m *memPosts) FindBySlug(_ context.Context, s string, publishedOnly bool) (*models.BlogPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].Slug == s && (!publishedOnly || m.items[i].IsPublished) {
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPosts) FindByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].ID == id {
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memPosts) Counts(context.Context) (store.PostCounts, error) {
	var c store.PostCounts
	for _, p := range m.items {
		if p.IsPublished {
			c.Published++
		} else {
			c.Drafts++
		}
	}
	return c, m.err
}

type memCategories struct {
	items []models.BlogCategory
	err   error
}

func (m *memCategories) List(context.Context, bool) ([]models.BlogCategory, error) {
	return m.items, m.err
}

func (m *memCategories) FindBySlug(_ context.Context, s string) (*models.BlogCategory, error) {
	for i := range m.items {
		if m.items[i].Slug == s {
			return &m.items[i], nil
		}
	}
	return nil, m.err
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.BlogCategory, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, m.err
}

type memPages struct {
	items []models.StaticPage
	err   error
}

func (m *memPages) List(context.Context, bool) ([]models.StaticPage, error) {
	return m.items, m.err
}

func (m *memPages) FindBySlug(_ context.Context, s string, publishedOnly bool) (*models.StaticPage, error) {
	for i := range m.items {
		if m.items[i].Slug == s && (!publishedOnly || m.items[i].IsPublished) {
			return &m.items[i], nil
		}
	}
	return nil, m.err
}

func (m *memPages) FindByID(_ context.Context, id uuid.UUID) (*models.StaticPage, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, m.err
}

type memSections struct {
	items []models.WebsiteSection
	err   error
}

func (m *memSections) ListByPage(_ context.Context, page string, visibleOnly bool) ([]models.WebsiteSection, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.WebsiteSection
	for _, s := range m.items {
		if s.Page == page && (!visibleOnly || s.IsVisible) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSections) FindByID(_ context.Context, id uuid.UUID) (*models.WebsiteSection, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, m.err
}

func (m *memSections) FetchSection(_ context.Context, key string) (*models.WebsiteSection, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.items {
		if m.items[i].Page == models.PageHome && m.items[i].Key == key {
			s := m.items[i]
			return &s, nil
		}
	}
	return nil, nil
}

type memUsers struct {
	items []models.User
	err   error
}

func (m *memUsers) List(context.Context) ([]models.User, error) { return m.items, m.err }

type memCacheLog struct {
	items []store.CacheLogEntry
	err   error
}

func (m *memCacheLog) RecentEntries(context.Context, int) ([]store.CacheLogEntry, error) {
	return m.items, m.err
}

// content bundles the in-memory stores.
type content struct {
	posts      *memPosts
	categories *memCategories
	pages      *memPages
	sections   *memSections
	users      *memUsers
	cacheLog   *memCacheLog
	site       *settings.Site
}

func newContent() *content {
	return &content{
		posts:      &memPosts{},
		categories: &memCategories{},
		pages:      &memPages{},
		sections:   &memSections{},
		users:      &memUsers{},
		cacheLog:   &memCacheLog{},
		site:       settings.New(nil),
	}
}

func (c *content) reader() *reader.Reader {
	return reader.New(c.posts, c.categories, c.pages, c.sections, sections.NewResolver(c.sections, nil), c.site)
}

func (c *content) admin(w ContentWriter, slugs SlugChecker) *Admin {
	return NewAdmin(AdminDeps{
		Writer:     w,
		Posts:      c.posts,
		Categories: c.categories,
		Pages:      c.pages,
		Sections:   c.sections,
		Users:      c.users,
		CacheLog:   c.cacheLog,
		Slugs:      slugs,
		Settings:   c.site,
	})
}

// stubWriter records the calls the handlers make. Methods not overridden
// panic through the nil embedded interface.
type stubWriter struct {
	ContentWriter
	err      error
	calls    []string
	post     actions.PostInput
	category actions.CategoryInput
	section  actions.SectionInput
	reorder  []store.ReorderItem
	page     string
	id       uuid.UUID
	settings map[string]string
}

func (s *stubWriter) CreatePost(_ context.Context, in actions.PostInput) (*models.BlogPost, error) {
	s.calls = append(s.calls, "CreatePost")
	s.post = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.BlogPost{ID: uuid.New(), Title: in.Title, Slug: slug.Generate(in.Title)}, nil
}

func (s *stubWriter) UpdatePost(_ context.Context, id uuid.UUID, in actions.PostInput) (*models.BlogPost, error) {
	s.calls = append(s.calls, "UpdatePost")
	s.id, s.post = id, in
	if s.err != nil {
		return nil, s.err
	}
	return &models.BlogPost{ID: id, Title: in.Title}, nil
}

func (s *stubWriter) TogglePostPublish(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	s.calls = append(s.calls, "TogglePostPublish")
	s.id = id
	if s.err != nil {
		return nil, s.err
	}
	return &models.BlogPost{ID: id, IsPublished: true}, nil
}

func (s *stubWriter) DeletePost(_ context.Context, id uuid.UUID) error {
	s.calls = append(s.calls, "DeletePost")
	s.id = id
	return s.err
}

func (s *stubWriter) CreateCategory(_ context.Context, in actions.CategoryInput) (*models.BlogCategory, error) {
	s.calls = append(s.calls, "CreateCategory")
	s.category = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.BlogCategory{ID: uuid.New(), Name: in.Name}, nil
}

func (s *stubWriter) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.calls = append(s.calls, "DeleteCategory")
	s.id = id
	return s.err
}

func (s *stubWriter) CreateSection(_ context.Context, in actions.SectionInput) (*models.WebsiteSection, error) {
	s.calls = append(s.calls, "CreateSection")
	s.section = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.WebsiteSection{ID: uuid.New(), Page: in.Page, Key: in.Key, Content: in.Content}, nil
}

func (s *stubWriter) ReorderSections(_ context.Context, page string, items []store.ReorderItem) error {
	s.calls = append(s.calls, "ReorderSections")
	s.page, s.reorder = page, items
	return s.err
}

func (s *stubWriter) UpdateSettings(_ context.Context, values map[string]string) (models.SiteSettings, error) {
	s.calls = append(s.calls, "UpdateSettings")
	s.settings = values
	if s.err != nil {
		return nil, s.err
	}
	return models.SiteSettings(values), nil
}

// stubSlugs answers slug checks with a fixed outcome.
type stubSlugs struct {
	res   slug.Result
	err   error
	owner string
	table slug.Table
	excl  *uuid.UUID
}

func (s *stubSlugs) Check(_ context.Context, owner string, table slug.Table, input string, excludeID *uuid.UUID) (slug.Result, error) {
	s.owner, s.table, s.excl = owner, table, excludeID
	if s.err != nil {
		return slug.Result{}, s.err
	}
	r := s.res
	r.Slug = slug.Generate(input)
	return r, nil
}
