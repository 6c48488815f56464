// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sections

// TextOr returns *s, or def when s is nil or empty.
func TextOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// TitleOr returns the stored title or def.
func (d *Data) TitleOr(def string) string {
	if d == nil {
		return def
	}
	return TextOr(d.Title, def)
}

// SubtitleOr returns the stored subtitle or def.
func (d *Data) SubtitleOr(def string) string {
	if d == nil {
		return def
	}
	return TextOr(d.Subtitle, def)
}

// Hidden reports whether the section exists and was switched off, whether
// or not its content decoded. Missing sections are not hidden.
func (r Result) Hidden() bool {
	return r.Data != nil && !r.Data.IsVisible
}

// ContentOr returns the stored content as T, merged field by field with
// def, or def itself when the section is missing, broken or of another
// shape.
func ContentOr[T Content](r Result, def T) T {
	if r.Data == nil || r.Data.Content == nil {
		return def
	}
	v, ok := As[T](r.Data.Content)
	if !ok {
		return def
	}
	if m, ok := any(v).(interface{ WithDefaults(T) T }); ok {
		return m.WithDefaults(def)
	}
	return v
}

func or[S ~string](v, def S) S {
	if v == "" {
		return def
	}
	return v
}

func orLink(v, def *Link) *Link {
	if v == nil || (v.Label == "" && v.Href == "") {
		return def
	}
	return &Link{Label: or(v.Label, labelOf(def)), Href: or(v.Href, hrefOf(def))}
}

func labelOf(l *Link) string {
	if l == nil {
		return ""
	}
	return l.Label
}

func hrefOf(l *Link) string {
	if l == nil {
		return ""
	}
	return l.Href
}

// WithDefaults fills empty fields from def.
func (h Hero) WithDefaults(def Hero) Hero {
	return Hero{
		Badge:           or(h.Badge, def.Badge),
		CTAPrimary:      orLink(h.CTAPrimary, def.CTAPrimary),
		CTASecondary:    orLink(h.CTASecondary, def.CTASecondary),
		BackgroundImage: or(h.BackgroundImage, def.BackgroundImage),
	}
}

// WithDefaults uses def's items when none are stored.
func (s Stats) WithDefaults(def Stats) Stats {
	if len(s.Items) == 0 {
		return def
	}
	return s
}

// WithDefaults fills empty fields from def.
func (c CTA) WithDefaults(def CTA) CTA {
	return CTA{
		ButtonText: or(c.ButtonText, def.ButtonText),
		ButtonURL:  or(c.ButtonURL, def.ButtonURL),
		Note:       or(c.Note, def.Note),
	}
}

// WithDefaults uses def's items when none are stored.
func (f Features) WithDefaults(def Features) Features {
	if len(f.Items) == 0 {
		return def
	}
	return f
}

// WithDefaults uses def's items when none are stored.
func (p Programs) WithDefaults(def Programs) Programs {
	if len(p.Items) == 0 {
		return def
	}
	return p
}

// WithDefaults uses def's items when none are stored.
func (t Testimonials) WithDefaults(def Testimonials) Testimonials {
	if len(t.Items) == 0 {
		return def
	}
	return t
}

// WithDefaults fills empty fields from def.
func (c Contact) WithDefaults(def Contact) Contact {
	return Contact{
		Address: or(c.Address, def.Address),
		Phone:   or(c.Phone, def.Phone),
		Email:   or(c.Email, def.Email),
		MapURL:  or(c.MapURL, def.MapURL),
	}
}
