// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package actions

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/revalidate"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

// ErrSectionExists is wrapped by the validation error for a duplicate key.
var ErrSectionExists = errors.New("section already exists on this page")

// SectionInput creates a section.
type SectionInput struct {
	Page       string          `json:"page"`
	Key        string          `json:"section_key"`
	Title      *string         `json:"title"`
	Subtitle   *string         `json:"subtitle"`
	Content    json.RawMessage `json:"content"`
	IsVisible  *bool           `json:"is_visible"`
	OrderIndex int             `json:"order_index"`
}

// SectionUpdate replaces the editable fields of a section. All four are
// written together; a nil title or subtitle clears it.
type SectionUpdate struct {
	Title     *string         `json:"title"`
	Subtitle  *string         `json:"subtitle"`
	Content   json.RawMessage `json:"content"`
	IsVisible bool            `json:"is_visible"`
}

// validContent checks raw against key's registered schema.
func (s *Service) validContent(key string, raw json.RawMessage) error {
	if err := s.registry.Validate(key, raw); err != nil {
		return &ValidationError{Field: "content", Message: err.Error(), Err: err}
	}
	return nil
}

// CreateSection inserts a section. Visibility defaults to true.
func (s *Service) CreateSection(ctx context.Context, in SectionInput) (*models.WebsiteSection, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	page := in.Page
	if page == "" {
		page = models.PageHome
	}
	if !slug.Valid(page) {
		return nil, invalid("page", "page must be a slug")
	}
	if !slug.Valid(in.Key) {
		return nil, invalid("section_key", "section key must be a slug")
	}
	if err := s.validContent(in.Key, in.Content); err != nil {
		return nil, err
	}
	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}

	out, err := s.sections.Create(ctx, &models.WebsiteSection{
		Page:       page,
		Key:        in.Key,
		Title:      s.optText(in.Title),
		Subtitle:   s.optText(in.Subtitle),
		Content:    in.Content,
		IsVisible:  visible,
		OrderIndex: in.OrderIndex,
		UpdatedBy:  actorID(actor),
	})
	if _, dup := store.UniqueViolation(err); dup {
		return nil, &ValidationError{Field: "section_key", Message: ErrSectionExists.Error(), Err: ErrSectionExists}
	}
	if err != nil {
		return nil, storeErr("create section", err)
	}
	s.signal.Revalidate(ctx, revalidate.Section(out.ID, revalidate.ActionCreate, out.Page))
	return out, nil
}

// UpdateSection replaces title, subtitle, content and visibility together.
// Content must match the section key's schema.
func (s *Service) UpdateSection(ctx context.Context, id uuid.UUID, in SectionUpdate) (*models.WebsiteSection, error) {
	actor, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	prior, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find section", err)
	}
	if prior == nil {
		return nil, ErrNotFound
	}
	if err := s.validContent(prior.Key, in.Content); err != nil {
		return nil, err
	}

	out, err := s.sections.Update(ctx, &models.WebsiteSection{
		ID:        id,
		Page:      prior.Page,
		Key:       prior.Key,
		Title:     s.optText(in.Title),
		Subtitle:  s.optText(in.Subtitle),
		Content:   in.Content,
		IsVisible: in.IsVisible,
		UpdatedBy: actorID(actor),
	})
	if err != nil {
		return nil, storeErr("update section", err)
	}
	s.signal.Revalidate(ctx, revalidate.Section(id, revalidate.ActionUpdate, out.Page))
	return out, nil
}

// ReorderSections writes a new order for the sections of page in one
// transaction.
func (s *Service) ReorderSections(ctx context.Context, page string, items []store.ReorderItem) error {
	actor, err := auth.Require(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return invalid("items", "nothing to reorder")
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return invalid("items", "section listed twice")
		}
		seen[it.ID] = true
	}
	if page == "" {
		page = models.PageHome
	}
	if err := s.sections.Reorder(ctx, items, actorID(actor)); err != nil {
		return storeErr("reorder sections", err)
	}
	s.signal.Revalidate(ctx, revalidate.Section(uuid.Nil, revalidate.ActionReorder, page))
	return nil
}

// DeleteSection removes a section. Its page falls back to defaults.
func (s *Service) DeleteSection(ctx context.Context, id uuid.UUID) error {
	if _, err := auth.Require(ctx); err != nil {
		return err
	}
	prior, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return storeErr("find section", err)
	}
	if prior == nil {
		return ErrNotFound
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return storeErr("delete section", err)
	}
	s.signal.Revalidate(ctx, revalidate.Section(id, revalidate.ActionDelete, prior.Page))
	return nil
}
