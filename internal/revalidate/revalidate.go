// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package revalidate declares which public paths a content change made
// stale and purges them from the rendered-output cache.
package revalidate

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// Entity types named in declarations.
const (
	EntityPost     = "post"
	EntityCategory = "category"
	EntityPage     = "page"
	EntitySection  = "section"
	EntitySettings = "settings"
)

// Actions named in declarations.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionPublish = "publish"
	ActionReorder = "reorder"
)

// Declaration names the paths made stale by one write. All is set when
// every public path is affected.
type Declaration struct {
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Paths      []string
	All        bool
}

// Signal receives declarations. Implementations are fire-and-forget: a
// failed purge is logged and never fails the write that caused it.
type Signal interface {
	Revalidate(ctx context.Context, d Declaration)
}

// Post declares the paths showing a post. Passing the previous slug on a
// rename also drops the old detail path.
func Post(id uuid.UUID, action, slug, oldSlug string) Declaration {
	paths := []string{"/", "/blog", "/blog/" + slug}
	if oldSlug != "" && oldSlug != slug {
		paths = append(paths, "/blog/"+oldSlug)
	}
	return Declaration{EntityType: EntityPost, EntityID: id, Action: action, Paths: paths}
}

// Category declares the blog index and the category listing.
func Category(id uuid.UUID, action, slug, oldSlug string) Declaration {
	paths := []string{"/blog", "/blog/category/" + slug}
	if oldSlug != "" && oldSlug != slug {
		paths = append(paths, "/blog/category/"+oldSlug)
	}
	return Declaration{EntityType: EntityCategory, EntityID: id, Action: action, Paths: paths}
}

// Page declares a static page path.
func Page(id uuid.UUID, action, slug, oldSlug string) Declaration {
	paths := []string{"/" + slug}
	if oldSlug != "" && oldSlug != slug {
		paths = append(paths, "/"+oldSlug)
	}
	return Declaration{EntityType: EntityPage, EntityID: id, Action: action, Paths: paths}
}

// Section declares the page a section is shown on.
func Section(id uuid.UUID, action, page string) Declaration {
	path := "/"
	if page != "" && page != "home" {
		path = "/" + page
	}
	return Declaration{EntityType: EntitySection, EntityID: id, Action: action, Paths: []string{path}}
}

// Settings declares every public path.
func Settings() Declaration {
	return Declaration{EntityType: EntitySettings, Action: ActionUpdate, All: true}
}

// Purger drops cached output.
type Purger interface {
	InvalidatePaths(ctx context.Context, paths ...string) error
	InvalidateAll(ctx context.Context) error
}

// Recorder keeps an audit trail of declarations.
type Recorder interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string, paths []string)
}

// Cache is the Signal backed by the Valkey page cache and the
// invalidation log. Either dependency may be nil.
type Cache struct {
	purger   Purger
	recorder Recorder
}

// NewCache returns a Signal purging through p and recording through r.
func NewCache(p Purger, r Recorder) *Cache {
	return &Cache{purger: p, recorder: r}
}

// Revalidate purges the declared paths and records the declaration.
func (c *Cache) Revalidate(ctx context.Context, d Declaration) {
	paths := slices.Compact(slices.Sorted(slices.Values(d.Paths)))
	if d.All {
		paths = []string{"*"}
	}

	if c.purger != nil {
		var err error
		if d.All {
			err = c.purger.InvalidateAll(ctx)
		} else {
			err = c.purger.InvalidatePaths(ctx, paths...)
		}
		if err != nil {
			slog.Warn("revalidation failed",
				"entity_type", d.EntityType,
				"entity_id", d.EntityID,
				"paths", paths,
				"error", err,
			)
		}
	}
	if c.recorder != nil {
		c.recorder.Log(ctx, d.EntityType, d.EntityID, d.Action, paths)
	}
	slog.Debug("paths revalidated", "entity_type", d.EntityType, "action", d.Action, "paths", paths)
}

// Nop discards declarations.
type Nop struct{}

// Revalidate does nothing.
func (Nop) Revalidate(context.Context, Declaration) {}
