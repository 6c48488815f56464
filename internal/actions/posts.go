// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package actions

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/revalidate"
)

// PostInput is the editable shape of a blog post.
type PostInput struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       *string    `json:"excerpt"`
	Content       string     `json:"content"`
	CoverImageURL *string    `json:"cover_image_url"`
	CategoryID    *uuid.UUID `json:"category_id"`
	Tags          []string   `json:"tags"`
	IsPublished   bool       `json:"is_published"`
}

func (s *Service) postFromInput(ctx context.Context, in PostInput) (*models.BlogPost, error) {
	title := s.text(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	sl, err := assignSlug(in.Slug, title)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		c, err := s.categories.FindByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, storeErr("find category", err)
		}
		if c == nil {
			return nil, invalid("category_id", "category does not exist")
		}
	}

	tags := make([]string, 0, len(in.Tags))
	seen := make(map[string]bool, len(in.Tags))
	for _, t := range in.Tags {
		t = strings.ToLower(s.text(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}

	return &models.BlogPost{
		Title:         title,
		Slug:          sl,
		Excerpt:       s.optText(in.Excerpt),
		Content:       s.richText(in.Content),
		CoverImageURL: s.optText(in.CoverImageURL),
		CategoryID:    in.CategoryID,
		Tags:          tags,
		IsPublished:   in.IsPublished,
	}, nil
}

// CreatePost inserts a post. Publishing on creation stamps published_at.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.BlogPost, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.postFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	p.PublishedAt = models.PublishedAt(nil, p.IsPublished, s.now())
	p.CreatedBy = actorID(actor)
	p.UpdatedBy = actorID(actor)

	out, err := s.posts.Create(ctx, p)
	if err != nil {
		return nil, storeErr("create post", err)
	}
	s.signal.Revalidate(ctx, revalidate.Post(out.ID, revalidate.ActionCreate, out.Slug, ""))
	return out, nil
}

// UpdatePost replaces a post's editable fields. An existing published_at
// is preserved; it is only stamped on the first publish.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, in PostInput) (*models.BlogPost, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	if prior == nil {
		return nil, ErrNotFound
	}
	p, err := s.postFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.PublishedAt = models.PublishedAt(prior.PublishedAt, p.IsPublished, s.now())
	p.CreatedBy = prior.CreatedBy
	p.UpdatedBy = actorID(actor)

	out, err := s.posts.Update(ctx, p)
	if err != nil {
		return nil, storeErr("update post", err)
	}
	s.signal.Revalidate(ctx, revalidate.Post(id, revalidate.ActionUpdate, out.Slug, prior.Slug))
	return out, nil
}

// TogglePostPublish flips a post between draft and published.
func (s *Service) TogglePostPublish(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	p.IsPublished = !p.IsPublished
	p.PublishedAt = models.PublishedAt(p.PublishedAt, p.IsPublished, s.now())
	p.UpdatedBy = actorID(actor)

	if err := s.posts.SetPublished(ctx, id, p.IsPublished, p.PublishedAt, p.UpdatedBy); err != nil {
		return nil, storeErr("publish post", err)
	}
	s.signal.Revalidate(ctx, revalidate.Post(id, revalidate.ActionPublish, p.Slug, ""))
	return p, nil
}

// DeletePost removes a post permanently.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.Require(ctx); err != nil {
		return err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return storeErr("find post", err)
	}
	if p == nil {
		return ErrNotFound
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeErr("delete post", err)
	}
	s.signal.Revalidate(ctx, revalidate.Post(id, revalidate.ActionDelete, p.Slug, ""))
	return nil
}
