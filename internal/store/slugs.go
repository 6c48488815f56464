// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pesantren/internal/slug"
)

// SlugStore answers slug availability questions across the slugged tables.
type SlugStore struct {
	db *sql.DB
}

// NewSlugStore creates a new SlugStore.
func NewSlugStore(db *sql.DB) *SlugStore {
	return &SlugStore{db: db}
}

// SlugExists reports whether value is already used in table by a row
// other than excludeID.
func (s *SlugStore) SlugExists(ctx context.Context, table slug.Table, value string, excludeID *uuid.UUID) (bool, error) {
	if !table.Known() {
		return false, fmt.Errorf("slug exists: unknown table %q", table)
	}
	// table is one of a fixed set of identifiers, never user input.
	q := `SELECT EXISTS (SELECT 1 FROM ` + string(table) + ` WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, value, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("slug exists in %s: %w", table, err)
	}
	return exists, nil
}
