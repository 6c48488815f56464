// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/models"
)

// SectionStore handles website section database operations.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore creates a new SectionStore.
func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

const sectionColumns = `id, page, section_key, title, subtitle, content, is_visible,
	order_index, updated_by, created_at, updated_at`

func scanSection(sc scanner) (*models.WebsiteSection, error) {
	var (
		s       models.WebsiteSection
		content []byte
	)
	err := sc.Scan(
		&s.ID, &s.Page, &s.Key, &s.Title, &s.Subtitle, &content, &s.IsVisible,
		&s.OrderIndex, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Content = json.RawMessage(content)
	return &s, nil
}

// jsonb returns raw as a JSONB parameter, substituting an empty object
// for an empty payload.
func jsonb(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// ListByPage returns every section of a page in display order. Hidden
// sections are included unless visibleOnly is set.
func (s *SectionStore) ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.WebsiteSection, error) {
	q := `SELECT ` + sectionColumns + ` FROM website_sections WHERE page = $1`
	if visibleOnly {
		q += ` AND is_visible = TRUE`
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY order_index, section_key`, page)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var items []models.WebsiteSection
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		items = append(items, *sec)
	}
	return items, rows.Err()
}

// FindByKey retrieves the section of page with the given key. Returns nil
// if not found.
func (s *SectionStore) FindByKey(ctx context.Context, page, key string) (*models.WebsiteSection, error) {
	sec, err := scanSection(s.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM website_sections WHERE page = $1 AND section_key = $2`,
		page, key,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section %s/%s: %w", page, key, err)
	}
	return sec, nil
}

// FindByID retrieves a section by ID. Returns nil if not found.
func (s *SectionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WebsiteSection, error) {
	sec, err := scanSection(s.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM website_sections WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section by id: %w", err)
	}
	return sec, nil
}

// FetchSection looks a key up on the homepage. It satisfies the section
// resolver's fetcher contract.
func (s *SectionStore) FetchSection(ctx context.Context, key string) (*models.WebsiteSection, error) {
	return s.FindByKey(ctx, models.PageHome, key)
}

// Create inserts a section and returns the stored row.
func (s *SectionStore) Create(ctx context.Context, sec *models.WebsiteSection) (*models.WebsiteSection, error) {
	out, err := scanSection(s.db.QueryRowContext(ctx, `
		INSERT INTO website_sections (page, section_key, title, subtitle, content,
			is_visible, order_index, updated_by)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
		RETURNING `+sectionColumns,
		sec.Page, sec.Key, sec.Title, sec.Subtitle, jsonb(sec.Content),
		sec.IsVisible, sec.OrderIndex, sec.UpdatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return out, nil
}

// Update replaces title, subtitle, content and visibility together.
// Returns ErrNotFound if the section does not exist.
func (s *SectionStore) Update(ctx context.Context, sec *models.WebsiteSection) (*models.WebsiteSection, error) {
	out, err := scanSection(s.db.QueryRowContext(ctx, `
		UPDATE website_sections SET
			title = $1, subtitle = $2, content = $3::jsonb, is_visible = $4,
			updated_by = $5, updated_at = $6
		WHERE id = $7
		RETURNING `+sectionColumns,
		sec.Title, sec.Subtitle, jsonb(sec.Content), sec.IsVisible,
		sec.UpdatedBy, time.Now(), sec.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update section: %w", err)
	}
	return out, nil
}

// ReorderItem is a single item in a reorder request.
type ReorderItem struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order_index"`
}

// Reorder updates order_index for multiple sections in a transaction.
// Either every item is applied or none is.
func (s *SectionStore) Reorder(ctx context.Context, items []ReorderItem, by *uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE website_sections SET order_index = $1, updated_by = $2, updated_at = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		res, err := stmt.ExecContext(ctx, item.Order, by, now, item.ID)
		if err != nil {
			return fmt.Errorf("reorder section %s: %w", item.ID, err)
		}
		if err := requireAffected(res); err != nil {
			return fmt.Errorf("reorder section %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes a section by ID.
func (s *SectionStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM website_sections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return requireAffected(res)
}
