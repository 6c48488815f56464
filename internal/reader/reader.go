// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reader serves the public site's reads. Reads never fail: a
// backend error is logged and the caller gets an empty list or nil, which
// renders the same as "nothing published yet".
package reader

import (
	"context"
	"errors"
	"log/slog"

	"pesantren/internal/models"
	"pesantren/internal/sections"
	"pesantren/internal/settings"
	"pesantren/internal/store"
)

// PostSource lists and finds posts.
type PostSource interface {
	List(ctx context.Context, f store.PostFilter) ([]models.BlogPost, int, error)
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error)
}

// CategorySource lists and finds categories.
type CategorySource interface {
	List(ctx context.Context, publishedOnly bool) ([]models.BlogCategory, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogCategory, error)
}

// PageSource lists and finds static pages.
type PageSource interface {
	List(ctx context.Context, publishedOnly bool) ([]models.StaticPage, error)
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.StaticPage, error)
}

// SectionSource lists the sections of a page.
type SectionSource interface {
	ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.WebsiteSection, error)
}

// Reader answers public read requests.
type Reader struct {
	posts      PostSource
	categories CategorySource
	pages      PageSource
	sections   SectionSource
	resolver   *sections.Resolver
	site       *settings.Site
}

// New returns a Reader. resolver decides where keyed sections come from.
func New(posts PostSource, categories CategorySource, pages PageSource, secs SectionSource, resolver *sections.Resolver, site *settings.Site) *Reader {
	return &Reader{
		posts:      posts,
		categories: categories,
		pages:      pages,
		sections:   secs,
		resolver:   resolver,
		site:       site,
	}
}

// PostPage is one page of a post listing.
type PostPage struct {
	Items      []models.BlogPost `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	TotalPages int               `json:"total_pages"`
}

// DefaultPerPage is the listing size when none is requested.
const DefaultPerPage = 9

// ListPosts returns published posts matching f. Search matches the title
// or excerpt case-insensitively.
func (r *Reader) ListPosts(ctx context.Context, f store.PostFilter) PostPage {
	f.PublishedOnly = true
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = DefaultPerPage
	}
	out := PostPage{Items: []models.BlogPost{}, Page: f.Page, PerPage: f.PerPage}

	items, total, err := r.posts.List(ctx, f)
	if err != nil {
		slog.Error("list posts failed", "search", f.Search, "category", f.CategorySlug, "error", err)
		return out
	}
	if items != nil {
		out.Items = items
	}
	out.Total = total
	out.TotalPages = (total + f.PerPage - 1) / f.PerPage
	return out
}

// PostBySlug returns a published post, or nil.
func (r *Reader) PostBySlug(ctx context.Context, slug string) *models.BlogPost {
	p, err := r.posts.FindBySlug(ctx, slug, true)
	if err != nil {
		slog.Error("find post failed", "slug", slug, "error", err)
		return nil
	}
	return p
}

// RecentPosts returns up to n newest published posts.
func (r *Reader) RecentPosts(ctx context.Context, n int) []models.BlogPost {
	return r.ListPosts(ctx, store.PostFilter{Page: 1, PerPage: n}).Items
}

// CategoryBySlug returns a category, or nil.
func (r *Reader) CategoryBySlug(ctx context.Context, slug string) *models.BlogCategory {
	c, err := r.categories.FindBySlug(ctx, slug)
	if err != nil {
		slog.Error("find category failed", "slug", slug, "error", err)
		return nil
	}
	return c
}

// ListCategories returns every category with its published post count.
func (r *Reader) ListCategories(ctx context.Context) []models.BlogCategory {
	items, err := r.categories.List(ctx, true)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		return []models.BlogCategory{}
	}
	if items == nil {
		return []models.BlogCategory{}
	}
	return items
}

// PageBySlug returns a published static page, or nil.
func (r *Reader) PageBySlug(ctx context.Context, slug string) *models.StaticPage {
	p, err := r.pages.FindBySlug(ctx, slug, true)
	if err != nil {
		slog.Error("find page failed", "slug", slug, "error", err)
		return nil
	}
	return p
}

// ListPages returns published static pages.
func (r *Reader) ListPages(ctx context.Context) []models.StaticPage {
	items, err := r.pages.List(ctx, true)
	if err != nil {
		slog.Error("list pages failed", "error", err)
		return []models.StaticPage{}
	}
	if items == nil {
		return []models.StaticPage{}
	}
	return items
}

// ListSections returns the visible sections of page in display order.
// Sections whose content no longer matches their schema are skipped.
func (r *Reader) ListSections(ctx context.Context, page string) []sections.Data {
	if page == "" {
		page = models.PageHome
	}
	rows, err := r.sections.ListByPage(ctx, page, true)
	if err != nil {
		slog.Error("list sections failed", "page", page, "error", err)
		return []sections.Data{}
	}
	out := make([]sections.Data, 0, len(rows))
	for i := range rows {
		res := r.resolver.FromRow(&rows[i])
		if res.Err != nil {
			slog.Warn("skipping malformed section", "page", page, "key", rows[i].Key, "error", res.Err)
			continue
		}
		out = append(out, *res.Data)
	}
	return out
}

// SectionByKey resolves one keyed section of the homepage. Missing or
// malformed sections yield nil.
func (r *Reader) SectionByKey(ctx context.Context, key string) *sections.Data {
	res := r.resolver.Resolve(ctx, key)
	if res.Err != nil {
		if !errors.Is(res.Err, sections.ErrSectionNotFound) {
			slog.Error("resolve section failed", "key", key, "error", res.Err)
		}
		return nil
	}
	return res.Data
}

// Home builds the homepage from its keyed sections, falling back to
// defaults per section. Contact defaults come from the site settings.
func (r *Reader) Home(ctx context.Context) *sections.Home {
	s := r.Settings()
	def := sections.DefaultHome(s.Get(models.SettingSiteName, ""))
	def.Contact.Content = sections.Contact{
		Address: s.Get(models.SettingAddress, ""),
		Phone:   s.Get(models.SettingContactPhone, ""),
		Email:   s.Get(models.SettingContactEmail, ""),
	}
	return sections.BuildHome(ctx, r.resolver, def)
}

// Settings returns the current site settings.
func (r *Reader) Settings() models.SiteSettings {
	if r.site == nil {
		return settings.Defaults.Clone()
	}
	return r.site.Snapshot()
}
