// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package actions

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"pesantren/internal/auth"
	"pesantren/internal/models"
	"pesantren/internal/revalidate"
)

// editableSettings lists the keys the dashboard may write.
var editableSettings = map[string]bool{
	models.SettingSiteName:       true,
	models.SettingTagline:        true,
	models.SettingLogoURL:        true,
	models.SettingPrimaryColor:   true,
	models.SettingSecondaryColor: true,
	models.SettingFontFamily:     true,
	models.SettingContactEmail:   true,
	models.SettingContactPhone:   true,
	models.SettingAddress:        true,
	models.SettingWhatsApp:       true,
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// UpdateSettings upserts site settings by key and refreshes the in-memory
// settings object.
func (s *Service) UpdateSettings(ctx context.Context, values map[string]string) (models.SiteSettings, error) {
	if _, err := auth.Require(ctx); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, invalid("settings", "no settings given")
	}

	clean := make(map[string]string, len(values))
	for k, v := range values {
		if !editableSettings[k] {
			return nil, invalid(k, "unknown setting")
		}
		v = s.text(v)
		if (k == models.SettingPrimaryColor || k == models.SettingSecondaryColor) && v != "" && !hexColor.MatchString(v) {
			return nil, invalid(k, "must be a hex colour such as #166534")
		}
		clean[k] = v
	}

	if err := s.settings.SetMany(ctx, clean); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	if s.site != nil {
		if err := s.site.Reload(ctx, s.settings); err != nil {
			// The write landed; serve the merged values until the next reload.
			slog.Warn("settings reload failed", "error", err)
			merged := s.site.Snapshot()
			for k, v := range clean {
				merged[k] = v
			}
			s.site.Replace(merged)
		}
	}
	s.signal.Revalidate(ctx, revalidate.Settings())

	if s.site != nil {
		return s.site.Snapshot(), nil
	}
	return models.SiteSettings(clean), nil
}
