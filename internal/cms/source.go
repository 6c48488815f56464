// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pesantren/internal/models"
)

// SectionQuery selects one section document by key.
const SectionQuery = `*[_type == "websiteSection" && key == $key][0]{
  _id, _updatedAt, _createdAt, key, page, title, subtitle, content, isVisible, order
}`

// PageQuery selects the sections of one page in display order. Documents
// without a page belong to the homepage.
const PageQuery = `*[_type == "websiteSection" && coalesce(page, "home") == $page && (!$visibleOnly || isVisible != false)] | order(order asc, key asc){
  _id, _updatedAt, _createdAt, key, page, title, subtitle, content, isVisible, order
}`

// sectionDoc is a websiteSection document as returned by SectionQuery.
type sectionDoc struct {
	ID        string          `json:"_id"`
	CreatedAt time.Time       `json:"_createdAt"`
	UpdatedAt time.Time       `json:"_updatedAt"`
	Key       string          `json:"key"`
	Page      string          `json:"page"`
	Title     *string         `json:"title"`
	Subtitle  *string         `json:"subtitle"`
	Content   json.RawMessage `json:"content"`
	IsVisible *bool           `json:"isVisible"`
	Order     int             `json:"order"`
}

// docNamespace derives stable section ids from CMS document ids.
var docNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cms:websiteSection"))

// SectionSource serves sections from the CMS.
type SectionSource struct {
	client *Client
}

// NewSectionSource returns a SectionSource reading through c.
func NewSectionSource(c *Client) *SectionSource {
	return &SectionSource{client: c}
}

// FetchSection returns the section stored under key, or nil, nil when the
// CMS has no such document.
func (s *SectionSource) FetchSection(ctx context.Context, key string) (*models.WebsiteSection, error) {
	var doc *sectionDoc
	if err := s.client.Query(ctx, SectionQuery, map[string]any{"key": key}, &doc); err != nil {
		return nil, fmt.Errorf("fetch section %s: %w", key, err)
	}
	if doc == nil {
		return nil, nil
	}
	return doc.toSection()
}

// ListByPage returns the sections of page in display order. Hidden
// sections are included unless visibleOnly is set. Documents that cannot
// be converted are skipped.
func (s *SectionSource) ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.WebsiteSection, error) {
	var docs []sectionDoc
	params := map[string]any{"page": page, "visibleOnly": visibleOnly}
	if err := s.client.Query(ctx, PageQuery, params, &docs); err != nil {
		return nil, fmt.Errorf("list sections %s: %w", page, err)
	}
	out := make([]models.WebsiteSection, 0, len(docs))
	for i := range docs {
		sec, err := docs[i].toSection()
		if err != nil {
			slog.Warn("skipping cms section", "page", page, "id", docs[i].ID, "error", err)
			continue
		}
		if visibleOnly && !sec.IsVisible {
			continue
		}
		out = append(out, *sec)
	}
	return out, nil
}

func (d *sectionDoc) toSection() (*models.WebsiteSection, error) {
	content := json.RawMessage("{}")
	if len(d.Content) > 0 && string(d.Content) != "null" {
		var v any
		if err := json.Unmarshal(d.Content, &v); err != nil {
			return nil, fmt.Errorf("decode section %s content: %w", d.Key, err)
		}
		b, err := json.Marshal(normalize(v))
		if err != nil {
			return nil, fmt.Errorf("encode section %s content: %w", d.Key, err)
		}
		content = b
	}

	page := d.Page
	if page == "" {
		page = models.PageHome
	}
	visible := true
	if d.IsVisible != nil {
		visible = *d.IsVisible
	}
	return &models.WebsiteSection{
		ID:         uuid.NewSHA1(docNamespace, []byte(d.ID)),
		Page:       page,
		Key:        d.Key,
		Title:      d.Title,
		Subtitle:   d.Subtitle,
		Content:    content,
		IsVisible:  visible,
		OrderIndex: d.Order,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}
