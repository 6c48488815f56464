// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package actions

import (
	"context"

	"github.com/google/uuid"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/revalidate"
)

// PageInput is the editable shape of a static page.
type PageInput struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Content         string  `json:"content"`
	MetaDescription *string `json:"meta_description"`
	IsPublished     bool    `json:"is_published"`
}

// reservedPageSlugs collide with routed public paths.
var reservedPageSlugs = map[string]bool{"blog": true, "api": true, "admin": true, "health": true}

func (s *Service) pageFromInput(in PageInput) (*models.StaticPage, error) {
	title := s.text(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	sl, err := assignSlug(in.Slug, title)
	if err != nil {
		return nil, err
	}
	if reservedPageSlugs[sl] {
		return nil, invalid("slug", "slug is reserved")
	}
	return &models.StaticPage{
		Title:           title,
		Slug:            sl,
		Content:         s.richText(in.Content),
		MetaDescription: s.optText(in.MetaDescription),
		IsPublished:     in.IsPublished,
	}, nil
}

// CreatePage inserts a static page.
func (s *Service) CreatePage(ctx context.Context, in PageInput) (*models.StaticPage, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.pageFromInput(in)
	if err != nil {
		return nil, err
	}
	p.PublishedAt = models.PublishedAt(nil, p.IsPublished, s.now())
	p.CreatedBy = actorID(actor)
	p.UpdatedBy = actorID(actor)

	out, err := s.pages.Create(ctx, p)
	if err != nil {
		return nil, storeErr("create page", err)
	}
	s.signal.Revalidate(ctx, revalidate.Page(out.ID, revalidate.ActionCreate, out.Slug, ""))
	return out, nil
}

// UpdatePage replaces a page's editable fields, keeping any existing
// published_at.
func (s *Service) UpdatePage(ctx context.Context, id uuid.UUID, in PageInput) (*models.StaticPage, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find page", err)
	}
	if prior == nil {
		return nil, ErrNotFound
	}
	p, err := s.pageFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.PublishedAt = models.PublishedAt(prior.PublishedAt, p.IsPublished, s.now())
	p.CreatedBy = prior.CreatedBy
	p.UpdatedBy = actorID(actor)

	out, err := s.pages.Update(ctx, p)
	if err != nil {
		return nil, storeErr("update page", err)
	}
	s.signal.Revalidate(ctx, revalidate.Page(id, revalidate.ActionUpdate, out.Slug, prior.Slug))
	return out, nil
}

// TogglePagePublish flips a page between draft and published.
func (s *Service) TogglePagePublish(ctx context.Context, id uuid.UUID) (*models.StaticPage, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find page", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	p.IsPublished = !p.IsPublished
	p.PublishedAt = models.PublishedAt(p.PublishedAt, p.IsPublished, s.now())
	p.UpdatedBy = actorID(actor)

	if err := s.pages.SetPublished(ctx, id, p.IsPublished, p.PublishedAt, p.UpdatedBy); err != nil {
		return nil, storeErr("publish page", err)
	}
	s.signal.Revalidate(ctx, revalidate.Page(id, revalidate.ActionPublish, p.Slug, ""))
	return p, nil
}

// DeletePage removes a page permanently.
func (s *Service) DeletePage(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.Require(ctx); err != nil {
		return err
	}
	p, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return storeErr("find page", err)
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.pages.Delete(ctx, id); err != nil {
		return storeErr("delete page", err)
	}
	s.signal.Revalidate(ctx, revalidate.Page(id, revalidate.ActionDelete, p.Slug, ""))
	return nil
}
