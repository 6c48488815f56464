package handlers

import (
	"unicode/utf8"

	"pesantren/internal/actions"
)

// Validation limits for submitted fields. Required-field and slug rules
// live in the actions; these only bound sizes.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxBodyLen        = 100_000
	maxExcerptLen     = 1_000
	maxMetaDescLen    = 500
	maxDescriptionLen = 1_000
	maxURLLen         = 2_000
	maxTags           = 20
	maxSettingLen     = 2_000
)

// tooLong reports whether s exceeds max runes.
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

func tooLongPtr(s *string, max int) bool {
	return s != nil && tooLong(*s, max)
}

// validatePost checks post field sizes and returns the first error found.
func validatePost(in actions.PostInput) (field, msg string) {
	switch {
	case tooLong(in.Title, maxTitleLen):
		return "title", "Title is too long (max 300 characters)."
	case tooLong(in.Slug, maxSlugLen):
		return "slug", "Slug is too long (max 300 characters)."
	case tooLong(in.Content, maxBodyLen):
		return "content", "Content is too long (max 100,000 characters)."
	case tooLongPtr(in.Excerpt, maxExcerptLen):
		return "excerpt", "Excerpt is too long (max 1,000 characters)."
	case tooLongPtr(in.CoverImageURL, maxURLLen):
		return "cover_image_url", "Cover image URL is too long."
	case len(in.Tags) > maxTags:
		return "tags", "Too many tags (max 20)."
	}
	return "", ""
}

// validateCategory checks category field sizes.
func validateCategory(in actions.CategoryInput) (field, msg string) {
	switch {
	case tooLong(in.Name, maxTitleLen):
		return "name", "Name is too long (max 300 characters)."
	case tooLong(in.Slug, maxSlugLen):
		return "slug", "Slug is too long (max 300 characters)."
	case tooLongPtr(in.Description, maxDescriptionLen):
		return "description", "Description is too long (max 1,000 characters)."
	}
	return "", ""
}

// validatePage checks static page field sizes.
func validatePage(in actions.PageInput) (field, msg string) {
	switch {
	case tooLong(in.Title, maxTitleLen):
		return "title", "Title is too long (max 300 characters)."
	case tooLong(in.Slug, maxSlugLen):
		return "slug", "Slug is too long (max 300 characters)."
	case tooLong(in.Content, maxBodyLen):
		return "content", "Content is too long (max 100,000 characters)."
	case tooLongPtr(in.MetaDescription, maxMetaDescLen):
		return "meta_description", "Meta description is too long (max 500 characters)."
	}
	return "", ""
}

// validateSection checks section field sizes.
func validateSection(title, subtitle *string, content []byte) (field, msg string) {
	switch {
	case tooLongPtr(title, maxTitleLen):
		return "title", "Title is too long (max 300 characters)."
	case tooLongPtr(subtitle, maxExcerptLen):
		return "subtitle", "Subtitle is too long (max 1,000 characters)."
	case len(content) > maxBodyLen:
		return "content", "Content is too large."
	}
	return "", ""
}

// validateSettings checks setting value sizes.
func validateSettings(values map[string]string) (field, msg string) {
	for k, v := range values {
		if tooLong(v, maxSettingLen) {
			return k, "Value is too long (max 2,000 characters)."
		}
	}
	return "", ""
}
