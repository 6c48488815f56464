// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package actions implements every dashboard write. Each action requires
// a signed-in actor, validates its input, performs one store write, stamps
// the audit columns, and declares the public paths it made stale before
// returning.
package actions

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/revalidate"
	"pesantren/internal/sections"
	"pesantren/internal/settings"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

var (
	// ErrNotFound is returned when the targeted row does not exist.
	ErrNotFound = store.ErrNotFound

	// ErrCategoryInUse refuses deleting a category that still has posts.
	ErrCategoryInUse = errors.New("category is in use by existing posts")

	// ErrSlugTaken is wrapped by the validation error for a duplicate slug.
	ErrSlugTaken = errors.New("slug is already in use")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap exposes the sentinel behind the error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// PostRepo is the post storage used by the actions.
type PostRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
	Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool, publishedAt *time.Time, by *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// CategoryRepo is the category storage used by the actions.
type CategoryRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogCategory, error)
	Create(ctx context.Context, c *models.BlogCategory) (*models.BlogCategory, error)
	Update(ctx context.Context, c *models.BlogCategory) (*models.BlogCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PageRepo is the static page storage used by the actions.
type PageRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaticPage, error)
	Create(ctx context.Context, p *models.StaticPage) (*models.StaticPage, error)
	Update(ctx context.Context, p *models.StaticPage) (*models.StaticPage, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool, publishedAt *time.Time, by *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SectionRepo is the website section storage used by the actions.
type SectionRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.WebsiteSection, error)
	Create(ctx context.Context, s *models.WebsiteSection) (*models.WebsiteSection, error)
	Update(ctx context.Context, s *models.WebsiteSection) (*models.WebsiteSection, error)
	Reorder(ctx context.Context, items []store.ReorderItem, by *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepo is the site settings storage used by the actions.
type SettingsRepo interface {
	All(ctx context.Context) (models.SiteSettings, error)
	SetMany(ctx context.Context, values map[string]string) error
}

// Deps wires a Service. Signal defaults to a no-op and Now to time.Now.
type Deps struct {
	Posts      PostRepo
	Categories CategoryRepo
	Pages      PageRepo
	Sections   SectionRepo
	Settings   SettingsRepo
	Site       *settings.Site
	Registry   *sections.Registry
	Signal     revalidate.Signal
	Now        func() time.Time
}

// Service runs dashboard writes.
type Service struct {
	posts      PostRepo
	categories CategoryRepo
	pages      PageRepo
	sections   SectionRepo
	settings   SettingsRepo
	site       *settings.Site
	registry   *sections.Registry
	signal     revalidate.Signal
	now        func() time.Time

	// rich is applied to HTML bodies, plain to every other text field.
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// New returns a Service using d.
func New(d Deps) *Service {
	s := &Service{
		posts:      d.Posts,
		categories: d.Categories,
		pages:      d.Pages,
		sections:   d.Sections,
		settings:   d.Settings,
		site:       d.Site,
		registry:   d.Registry,
		signal:     d.Signal,
		now:        d.Now,
		rich:       bluemonday.UGCPolicy(),
		plain:      bluemonday.StrictPolicy(),
	}
	if s.signal == nil {
		s.signal = revalidate.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.registry == nil {
		s.registry = sections.NewRegistry()
	}
	return s
}

// text trims and strips markup from a plain text field. The policy
// escapes what it keeps, so entities are decoded back to plain text.
func (s *Service) text(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(v)))
}

// optText is text for optional fields; blank becomes nil.
func (s *Service) optText(v *string) *string {
	if v == nil {
		return nil
	}
	out := s.text(*v)
	if out == "" {
		return nil
	}
	return &out
}

// richText sanitises a rich-text body.
func (s *Service) richText(v string) string {
	return strings.TrimSpace(s.rich.Sanitize(v))
}

// assignSlug returns the explicit slug normalised, or one derived from title.
func assignSlug(explicit, title string) (string, error) {
	src := explicit
	if strings.TrimSpace(src) == "" {
		src = title
	}
	out := slug.Generate(src)
	if out == "" || !slug.Valid(out) {
		return "", invalid("slug", "slug must contain at least one letter or digit")
	}
	return out, nil
}

// storeErr converts store failures into action errors: duplicate slugs
// become validation errors and everything else is wrapped with op.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if _, ok := store.UniqueViolation(err); ok {
		return &ValidationError{Field: "slug", Message: ErrSlugTaken.Error(), Err: ErrSlugTaken}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func actorID(a *auth.Actor) *uuid.UUID {
	id := a.ID
	return &id
}
