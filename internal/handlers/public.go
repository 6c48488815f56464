// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"pesantren/internal/cache"
	"pesantren/internal/models"
	"pesantren/internal/reader"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

// PageCacher stores rendered public responses by site path.
type PageCacher interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Public groups the read-only handlers behind the public site. Responses
// are cached under the site path they feed, so the revalidation signal for
// that path drops them. Reads never fail: missing data renders empty.
type Public struct {
	reader    *reader.Reader
	pageCache PageCacher
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(rd *reader.Reader, pageCache PageCacher) *Public {
	return &Public{reader: rd, pageCache: pageCache}
}

// cached serves key from the page cache or builds, caches and serves the
// response. Only 200 responses are cached.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, build func() (int, any)) {
	ctx := r.Context()
	if p.pageCache != nil {
		if body, ok := p.pageCache.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("X-Cache", "HIT")
			w.Write(body)
			return
		}
	}

	status, v := build()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encode public response failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if status == http.StatusOK && p.pageCache != nil {
		p.pageCache.Set(ctx, key, buf.Bytes())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// view tags a cache key with the endpoint that produced it, so several
// endpoints can share a site path.
func view(name string, q url.Values) string {
	v := url.Values{}
	for k, vals := range q {
		v[k] = vals
	}
	v.Set("view", name)
	return v.Encode()
}

// pagePath is the public path a section page renders at.
func pagePath(page string) string {
	if page == "" || page == models.PageHome {
		return "/"
	}
	return "/" + page
}

// Home returns the homepage view model.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.Key("/", ""), func() (int, any) {
		return http.StatusOK, p.reader.Home(r.Context())
	})
}

// Sections lists the visible sections of ?page= (default home).
func (p *Public) Sections(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	if page == "" {
		page = models.PageHome
	}
	if !slug.Valid(page) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	key := cache.Key(pagePath(page), view("sections", nil))
	p.cached(w, r, key, func() (int, any) {
		return http.StatusOK, map[string]any{"page": page, "sections": p.reader.ListSections(r.Context(), page)}
	})
}

// Section returns one keyed section, or 404 when it is missing or broken.
func (p *Public) Section(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data := p.reader.SectionByKey(r.Context(), key)
	if data == nil {
		writeError(w, http.StatusNotFound, "Section not found")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// BlogList lists published posts. Query: search, category, page, per_page.
func (p *Public) BlogList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PostFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Page:         intQuery(r, "page", 1),
		PerPage:      intQuery(r, "per_page", reader.DefaultPerPage),
	}
	p.cached(w, r, cache.Key("/blog", view("posts", q)), func() (int, any) {
		return http.StatusOK, p.reader.ListPosts(r.Context(), f)
	})
}

// BlogPost returns one published post.
func (p *Public) BlogPost(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	p.cached(w, r, cache.Key("/blog/"+s, ""), func() (int, any) {
		post := p.reader.PostBySlug(r.Context(), s)
		if post == nil {
			return http.StatusNotFound, errorBody{Error: "Post not found"}
		}
		return http.StatusOK, post
	})
}

// Categories lists categories with their published post counts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.Key("/blog", view("categories", nil)), func() (int, any) {
		return http.StatusOK, p.reader.ListCategories(r.Context())
	})
}

// Category returns one category and a page of its posts. It is cached
// under /blog so that post and category changes both drop it.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	p.cached(w, r, cache.Key("/blog", view("category:"+s, r.URL.Query())), func() (int, any) {
		c := p.reader.CategoryBySlug(r.Context(), s)
		if c == nil {
			return http.StatusNotFound, errorBody{Error: "Category not found"}
		}
		posts := p.reader.ListPosts(r.Context(), store.PostFilter{
			CategorySlug: s,
			Page:         intQuery(r, "page", 1),
			PerPage:      intQuery(r, "per_page", reader.DefaultPerPage),
		})
		return http.StatusOK, map[string]any{"category": c, "posts": posts}
	})
}

// Pages lists published static pages.
func (p *Public) Pages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.reader.ListPages(r.Context()))
}

// Page returns one published static page.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	p.cached(w, r, cache.Key("/"+s, view("page", nil)), func() (int, any) {
		page := p.reader.PageBySlug(r.Context(), s)
		if page == nil {
			return http.StatusNotFound, errorBody{Error: "Page not found"}
		}
		return http.StatusOK, page
	})
}

// Settings returns the public site settings.
func (p *Public) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.reader.Settings())
}
