// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and a debounced, cancellable availability checker for editor forms.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, separator or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators collapses runs of whitespace, underscores and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Al-Bisri, Pesantren!" → "al-bisri-pesantren"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(stripDiacritics(s)))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// stripDiacritics decomposes s and drops combining marks, so "Pésantrén"
// becomes "Pesantren". Transformers carry state, so a fresh chain is built
// per call.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
