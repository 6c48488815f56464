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
	"pesantren/internal/store"
)

// CategoryInput is the editable shape of a blog category.
type CategoryInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

func (s *Service) categoryFromInput(in CategoryInput) (*models.BlogCategory, error) {
	name := s.text(in.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	sl, err := assignSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	return &models.BlogCategory{Name: name, Slug: sl, Description: s.optText(in.Description)}, nil
}

// CreateCategory inserts a category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.BlogCategory, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = actorID(actor)
	c.UpdatedBy = actorID(actor)

	out, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, storeErr("create category", err)
	}
	s.signal.Revalidate(ctx, revalidate.Category(out.ID, revalidate.ActionCreate, out.Slug, ""))
	return out, nil
}

// UpdateCategory replaces a category's editable fields.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.BlogCategory, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find category", err)
	}
	if prior == nil {
		return nil, ErrNotFound
	}
	c, err := s.categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.CreatedBy = prior.CreatedBy
	c.UpdatedBy = actorID(actor)

	out, err := s.categories.Update(ctx, c)
	if err != nil {
		return nil, storeErr("update category", err)
	}
	s.signal.Revalidate(ctx, revalidate.Category(id, revalidate.ActionUpdate, out.Slug, prior.Slug))
	return out, nil
}

// DeleteCategory removes a category. It refuses while any post, published
// or not, still references it.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.Require(ctx); err != nil {
		return err
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return storeErr("find category", err)
	}
	if c == nil {
		return ErrNotFound
	}
	n, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return storeErr("count category posts", err)
	}
	if n > 0 {
		return categoryInUse()
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		// A post assigned after the count still blocks the delete.
		if store.ForeignKeyViolation(err) {
			return categoryInUse()
		}
		return storeErr("delete category", err)
	}
	s.signal.Revalidate(ctx, revalidate.Category(id, revalidate.ActionDelete, c.Slug, ""))
	return nil
}

func categoryInUse() *ValidationError {
	return &ValidationError{Field: "category", Message: ErrCategoryInUse.Error(), Err: ErrCategoryInUse}
}
