// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageHome is the logical page most sections belong to.
const PageHome = "home"

// WebsiteSection is a keyed, independently toggleable block of marketing
// content. Content is stored as raw JSON; its shape depends on Key and is
// decoded by the sections package.
type WebsiteSection struct {
	ID         uuid.UUID       `json:"id"`
	Page       string          `json:"page"`
	Key        string          `json:"section_key"`
	Title      *string         `json:"title"`
	Subtitle   *string         `json:"subtitle"`
	Content    json.RawMessage `json:"content"`
	IsVisible  bool            `json:"is_visible"`
	OrderIndex int             `json:"order_index"`
	UpdatedBy  *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
