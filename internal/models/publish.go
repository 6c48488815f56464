// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// PublishedAt returns the published_at value a row should carry after a
// write. An existing timestamp is always kept, so unpublishing and
// republishing never moves the original publish date. A row without one
// gets now when it is being published, and stays nil otherwise.
func PublishedAt(prior *time.Time, publishing bool, now time.Time) *time.Time {
	if prior != nil {
		return prior
	}
	if publishing {
		t := now
		return &t
	}
	return nil
}
