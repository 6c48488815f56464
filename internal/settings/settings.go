// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package settings holds the site-wide settings loaded at boot. Handlers
// read a snapshot; the settings action replaces it after a write.
package settings

import (
	"context"
	"fmt"
	"sync"

	"pesantren/internal/models"
)

// Defaults apply to keys that were never saved.
var Defaults = models.SiteSettings{
	models.SettingSiteName:       "Pondok Pesantren",
	models.SettingTagline:        "Mencetak generasi Qur'ani",
	models.SettingPrimaryColor:   "#166534",
	models.SettingSecondaryColor: "#ca8a04",
	models.SettingFontFamily:     "Inter",
}

// Loader reads every stored setting.
type Loader interface {
	All(ctx context.Context) (models.SiteSettings, error)
}

// Site is the process-wide settings object.
type Site struct {
	mu     sync.RWMutex
	values models.SiteSettings
}

// New returns a Site holding values merged over Defaults.
func New(values models.SiteSettings) *Site {
	s := &Site{}
	s.Replace(values)
	return s
}

// Load reads settings from l and returns a Site holding them.
func Load(ctx context.Context, l Loader) (*Site, error) {
	values, err := l.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return New(values), nil
}

// Snapshot returns a copy of the current settings.
func (s *Site) Snapshot() models.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Get returns one setting or fallback when it is unset or empty.
func (s *Site) Get(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Get(key, fallback)
}

// SiteName is the configured site name.
func (s *Site) SiteName() string {
	return s.Get(models.SettingSiteName, Defaults[models.SettingSiteName])
}

// Replace swaps in values merged over Defaults.
func (s *Site) Replace(values models.SiteSettings) {
	merged := Defaults.Clone()
	for k, v := range values {
		if v != "" {
			merged[k] = v
		}
	}
	s.mu.Lock()
	s.values = merged
	s.mu.Unlock()
}

// Reload re-reads settings from l.
func (s *Site) Reload(ctx context.Context, l Loader) error {
	values, err := l.All(ctx)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	s.Replace(values)
	return nil
}
