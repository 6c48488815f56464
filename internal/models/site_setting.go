// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Well-known setting keys edited from the dashboard's theme/settings screen.
const (
	SettingSiteName       = "site_name"
	SettingTagline        = "tagline"
	SettingLogoURL        = "logo_url"
	SettingPrimaryColor   = "theme_primary_color"
	SettingSecondaryColor = "theme_secondary_color"
	SettingFontFamily     = "theme_font_family"
	SettingContactEmail   = "contact_email"
	SettingContactPhone   = "contact_phone"
	SettingAddress        = "address"
	SettingWhatsApp       = "whatsapp_number"
)

// SiteSetting represents a single configuration key-value pair.
type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteSettings is a convenience map for accessing settings by key.
type SiteSettings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s SiteSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Clone returns a copy that is safe to hand out to readers.
func (s SiteSettings) Clone() SiteSettings {
	out := make(SiteSettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
