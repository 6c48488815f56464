// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the pesantren JSON API.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pesantren/internal/actions"
	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

// ContentWriter runs dashboard writes.
type ContentWriter interface {
	CreatePost(ctx context.Context, in actions.PostInput) (*models.BlogPost, error)
	UpdatePost(ctx context.Context, id uuid.UUID, in actions.PostInput) (*models.BlogPost, error)
	TogglePostPublish(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	DeletePost(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, in actions.CategoryInput) (*models.BlogCategory, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in actions.CategoryInput) (*models.BlogCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreatePage(ctx context.Context, in actions.PageInput) (*models.StaticPage, error)
	UpdatePage(ctx context.Context, id uuid.UUID, in actions.PageInput) (*models.StaticPage, error)
	TogglePagePublish(ctx context.Context, id uuid.UUID) (*models.StaticPage, error)
	DeletePage(ctx context.Context, id uuid.UUID) error

	CreateSection(ctx context.Context, in actions.SectionInput) (*models.WebsiteSection, error)
	UpdateSection(ctx context.Context, id uuid.UUID, in actions.SectionUpdate) (*models.WebsiteSection, error)
	ReorderSections(ctx context.Context, page string, items []store.ReorderItem) error
	DeleteSection(ctx context.Context, id uuid.UUID) error

	UpdateSettings(ctx context.Context, values map[string]string) (models.SiteSettings, error)
}

// PostReader is the dashboard's view of posts, drafts included.
type PostReader interface {
	List(ctx context.Context, f store.PostFilter) ([]models.BlogPost, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	Counts(ctx context.Context) (store.PostCounts, error)
}

// CategoryReader is the dashboard's view of categories.
type CategoryReader interface {
	List(ctx context.Context, publishedOnly bool) ([]models.BlogCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogCategory, error)
}

// PageReader is the dashboard's view of static pages.
type PageReader interface {
	List(ctx context.Context, publishedOnly bool) ([]models.StaticPage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaticPage, error)
}

// SectionReader is the dashboard's view of sections, hidden ones included.
type SectionReader interface {
	ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.WebsiteSection, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WebsiteSection, error)
}

// UserLister lists dashboard accounts.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// CacheLogReader reads recent revalidations.
type CacheLogReader interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// SlugChecker answers debounced slug availability checks.
type SlugChecker interface {
	Check(ctx context.Context, owner string, table slug.Table, input string, excludeID *uuid.UUID) (slug.Result, error)
}

// AdminDeps wires an Admin handler group.
type AdminDeps struct {
	Writer     ContentWriter
	Posts      PostReader
	Categories CategoryReader
	Pages      PageReader
	Sections   SectionReader
	Users      UserLister
	CacheLog   CacheLogReader
	Slugs      SlugChecker
	Settings   interface{ Snapshot() models.SiteSettings }
}

// Admin groups all dashboard HTTP handlers and their dependencies.
type Admin struct {
	writer     ContentWriter
	posts      PostReader
	categories CategoryReader
	pages      PageReader
	sections   SectionReader
	users      UserLister
	cacheLog   CacheLogReader
	slugs      SlugChecker
	settings   interface{ Snapshot() models.SiteSettings }
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{
		writer:     d.Writer,
		posts:      d.Posts,
		categories: d.Categories,
		pages:      d.Pages,
		sections:   d.Sections,
		users:      d.Users,
		cacheLog:   d.CacheLog,
		slugs:      d.Slugs,
		settings:   d.Settings,
	}
}

// DashboardStats is the overview shown on the dashboard home.
type DashboardStats struct {
	Posts         store.PostCounts      `json:"posts"`
	Categories    int                   `json:"categories"`
	Pages         int                   `json:"pages"`
	Sections      int                   `json:"sections"`
	Users         int                   `json:"users"`
	RecentChanges []store.CacheLogEntry `json:"recent_changes"`
}

// Dashboard gathers the overview counts concurrently.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		c, err := a.posts.Counts(ctx)
		stats.Posts = c
		return err
	})
	g.Go(func() error {
		cats, err := a.categories.List(ctx, false)
		stats.Categories = len(cats)
		return err
	})
	g.Go(func() error {
		pages, err := a.pages.List(ctx, false)
		stats.Pages = len(pages)
		return err
	})
	g.Go(func() error {
		secs, err := a.sections.ListByPage(ctx, models.PageHome, false)
		stats.Sections = len(secs)
		return err
	})
	g.Go(func() error {
		users, err := a.users.List(ctx)
		stats.Users = len(users)
		return err
	})
	g.Go(func() error {
		entries, err := a.cacheLog.RecentEntries(ctx, 10)
		if err != nil {
			// The log is best-effort; the dashboard renders without it.
			slog.Warn("recent cache log failed", "error", err)
			entries = nil
		}
		if entries == nil {
			entries = []store.CacheLogEntry{}
		}
		stats.RecentChanges = entries
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("dashboard stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UsersList lists dashboard accounts.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// slugTables maps the public table names accepted by SlugCheck.
var slugTables = map[string]slug.Table{
	"posts":      slug.TablePosts,
	"categories": slug.TableCategories,
	"pages":      slug.TablePages,
}

// SlugCheck reports whether a slug is free. Query: table, slug, exclude
// (the id being edited) and form (the editor instance). A newer check from
// the same form supersedes this one, which answers 204.
func (a *Admin) SlugCheck(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.Require(r.Context())
	if err != nil {
		writeActionError(w, r, err)
		return
	}

	q := r.URL.Query()
	table, ok := slugTables[q.Get("table")]
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Unknown table.", Field: "table"})
		return
	}
	input := strings.TrimSpace(q.Get("slug"))
	if input == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Slug is required.", Field: "slug"})
		return
	}

	var exclude *uuid.UUID
	if raw := q.Get("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Invalid id.", Field: "exclude"})
			return
		}
		exclude = &id
	}

	owner := actor.ID.String() + ":" + string(table) + ":" + q.Get("form")
	res, err := a.slugs.Check(r.Context(), owner, table, input, exclude)
	switch {
	case errors.Is(err, slug.ErrSuperseded), errors.Is(err, context.Canceled):
		w.WriteHeader(http.StatusNoContent)
	case err != nil:
		slog.Error("slug check failed", "table", table, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// SettingsGet returns every site setting.
func (a *Admin) SettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.settings.Snapshot())
}

// SettingsUpdate saves the submitted settings.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := decodeJSON(w, r, &values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if field, msg := validateSettings(values); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msg, Field: field})
		return
	}
	saved, err := a.writer.UpdateSettings(r.Context(), values)
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
