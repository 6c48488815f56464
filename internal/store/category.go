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

// CategoryStore manages blog categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, created_by, updated_by, created_at, updated_at`

// scanCategory scans a row into a BlogCategory struct.
func scanCategory(sc scanner) (*models.BlogCategory, error) {
	var c models.BlogCategory
	err := sc.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts. When
// publishedOnly is set only published posts are counted.
func (s *CategoryStore) List(ctx context.Context, publishedOnly bool) ([]models.BlogCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.created_by, c.updated_by,
		       c.created_at, c.updated_at,
		       COUNT(p.id) AS post_count
		FROM blog_categories c
		LEFT JOIN blog_posts p ON p.category_id = c.id AND (p.is_published OR NOT $1)
		GROUP BY c.id
		ORDER BY c.name
	`, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.BlogCategory
	for rows.Next() {
		var c models.BlogCategory
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
			&c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogCategory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM blog_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.BlogCategory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM blog_categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.BlogCategory) (*models.BlogCategory, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO blog_categories (name, slug, description, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.CreatedBy, c.UpdatedBy,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. Returns ErrNotFound if it does not exist.
func (s *CategoryStore) Update(ctx context.Context, c *models.BlogCategory) (*models.BlogCategory, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE blog_categories SET
			name = $1, slug = $2, description = $3, updated_by = $4, updated_at = $5
		WHERE id = $6
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.UpdatedBy, time.Now(), c.ID,
	)
	result, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category by ID. Posts still referencing it make the
// foreign key refuse the delete.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}
