// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/models"
)

// PostStore handles blog post database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows a post listing. Page is 1-based.
type PostFilter struct {
	Search        string
	CategorySlug  string
	PublishedOnly bool
	Page          int
	PerPage       int
}

const postSelect = `
	SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image_url,
	       p.category_id, p.tags, p.is_published, p.published_at,
	       p.created_by, p.updated_by, p.created_at, p.updated_at,
	       c.id, c.name, c.slug
	FROM blog_posts p
	LEFT JOIN blog_categories c ON c.id = p.category_id`

const postReturning = `id, title, slug, excerpt, content, cover_image_url,
	category_id, tags, is_published, published_at,
	created_by, updated_by, created_at, updated_at`

func scanPost(sc scanner) (*models.BlogPost, error) {
	var (
		p       models.BlogPost
		catID   uuid.NullUUID
		catName sql.NullString
		catSlug sql.NullString
	)
	err := sc.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverImageURL,
		&p.CategoryID, textArray(&p.Tags), &p.IsPublished, &p.PublishedAt,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		p.Category = &models.BlogCategory{ID: catID.UUID, Name: catName.String, Slug: catSlug.String}
	}
	return &p, nil
}

func scanPostRow(sc scanner) (*models.BlogPost, error) {
	var p models.BlogPost
	err := sc.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverImageURL,
		&p.CategoryID, textArray(&p.Tags), &p.IsPublished, &p.PublishedAt,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of posts matching f, newest first, and the total
// number of matching posts. Search is a case-insensitive substring match
// against the title or the excerpt.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.BlogPost, int, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "p.is_published = TRUE")
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.excerpt ILIKE $%d)", n, n))
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM blog_posts p
		LEFT JOIN blog_categories c ON c.id = p.category_id`+clause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	limit, offset := pageBounds(f.Page, f.PerPage)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, postSelect+clause+fmt.Sprintf(`
		ORDER BY COALESCE(p.published_at, p.created_at) DESC, p.id
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// escapeLike escapes the ILIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FindBySlug retrieves a post by slug. When publishedOnly is set, drafts
// are treated as missing. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error) {
	q := postSelect + ` WHERE p.slug = $1`
	if publishedOnly {
		q += ` AND p.is_published = TRUE`
	}
	p, err := scanPost(s.db.QueryRowContext(ctx, q, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a post and returns the stored row.
func (s *PostStore) Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	out, err := scanPostRow(s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, content, cover_image_url,
			category_id, tags, is_published, published_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+postReturning,
		p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImageURL,
		p.CategoryID, tags, p.IsPublished, p.PublishedAt, p.CreatedBy, p.UpdatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields of a post. Returns ErrNotFound if
// the post does not exist.
func (s *PostStore) Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	out, err := scanPostRow(s.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET
			title = $1, slug = $2, excerpt = $3, content = $4, cover_image_url = $5,
			category_id = $6, tags = $7, is_published = $8, published_at = $9,
			updated_by = $10, updated_at = $11
		WHERE id = $12
		RETURNING `+postReturning,
		p.Title, p.Slug, p.Excerpt, p.Content, p.CoverImageURL,
		p.CategoryID, tags, p.IsPublished, p.PublishedAt,
		p.UpdatedBy, time.Now(), p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return out, nil
}

// SetPublished writes the publish flag and timestamp of a post.
func (s *PostStore) SetPublished(ctx context.Context, id uuid.UUID, published bool, publishedAt *time.Time, by *uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_posts SET is_published = $1, published_at = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4
	`, published, publishedAt, by, id)
	if err != nil {
		return fmt.Errorf("set post published: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a post by ID.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res)
}

// CountByCategory returns how many posts reference the category.
func (s *PostStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE category_id = $1`, categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return n, nil
}

// PostCounts is the published/draft split shown on the dashboard.
type PostCounts struct {
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}

// Counts returns the number of published and draft posts.
func (s *PostStore) Counts(ctx context.Context) (PostCounts, error) {
	var c PostCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_published),
		       COUNT(*) FILTER (WHERE NOT is_published)
		FROM blog_posts
	`).Scan(&c.Published, &c.Drafts)
	if err != nil {
		return c, fmt.Errorf("count posts: %w", err)
	}
	return c, nil
}

// requireAffected maps a zero-row write to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
