// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/models"
)

// PageStore handles static page database operations.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, title, slug, content, meta_description, is_published, published_at,
	created_by, updated_by, created_at, updated_at`

func scanPage(sc scanner) (*models.StaticPage, error) {
	var p models.StaticPage
	err := sc.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.MetaDescription,
		&p.IsPublished, &p.PublishedAt,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns static pages ordered by title.
func (s *PageStore) List(ctx context.Context, publishedOnly bool) ([]models.StaticPage, error) {
	q := `SELECT ` + pageColumns + ` FROM static_pages`
	if publishedOnly {
		q += ` WHERE is_published = TRUE`
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var items []models.StaticPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a page by slug. Drafts are missing when
// publishedOnly is set. Returns nil if not found.
func (s *PageStore) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.StaticPage, error) {
	q := `SELECT ` + pageColumns + ` FROM static_pages WHERE slug = $1`
	if publishedOnly {
		q += ` AND is_published = TRUE`
	}
	p, err := scanPage(s.db.QueryRowContext(ctx, q, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a page by ID. Returns nil if not found.
func (s *PageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.StaticPage, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM static_pages WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// Create inserts a page and returns the stored row.
func (s *PageStore) Create(ctx context.Context, p *models.StaticPage) (*models.StaticPage, error) {
	out, err := scanPage(s.db.QueryRowContext(ctx, `
		INSERT INTO static_pages (title, slug, content, meta_description,
			is_published, published_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+pageColumns,
		p.Title, p.Slug, p.Content, p.MetaDescription,
		p.IsPublished, p.PublishedAt, p.CreatedBy, p.UpdatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields of a page. Returns ErrNotFound if
// the page does not exist.
func (s *PageStore) Update(ctx context.Context, p *models.StaticPage) (*models.StaticPage, error) {
	out, err := scanPage(s.db.QueryRowContext(ctx, `
		UPDATE static_pages SET
			title = $1, slug = $2, content = $3, meta_description = $4,
			is_published = $5, published_at = $6, updated_by = $7, updated_at = $8
		WHERE id = $9
		RETURNING `+pageColumns,
		p.Title, p.Slug, p.Content, p.MetaDescription,
		p.IsPublished, p.PublishedAt, p.UpdatedBy, time.Now(), p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return out, nil
}

// SetPublished writes the publish flag and timestamp of a page.
func (s *PageStore) SetPublished(ctx context.Context, id uuid.UUID, published bool, publishedAt *time.Time, by *uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE static_pages SET is_published = $1, published_at = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4
	`, published, publishedAt, by, id)
	if err != nil {
		return fmt.Errorf("set page published: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a page by ID.
func (s *PageStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM static_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return requireAffected(res)
}
