// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sections resolves keyed website sections into typed, render-ready
// content. Every section key maps to a payload schema; consumers ask for a
// key, get the stored row verbatim (or an error), and merge it with their
// own hard-coded defaults field by field.
package sections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Well-known section keys.
const (
	KeyHero         = "hero"
	KeyStats        = "stats"
	KeyCTA          = "cta"
	KeyFeatures     = "features"
	KeyPrograms     = "programs"
	KeyTestimonials = "testimonials"
	KeyContact      = "contact"
)

// Content is the typed payload of a section. SectionKey names the variant.
type Content interface {
	SectionKey() string
}

// Link is a labelled call-to-action target.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Hero is the landing banner.
type Hero struct {
	Badge           string `json:"badge,omitempty"`
	CTAPrimary      *Link  `json:"cta_primary,omitempty"`
	CTASecondary    *Link  `json:"cta_secondary,omitempty"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// Stat is a single figure in the stats strip.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// Stats is a strip of headline figures.
type Stats struct {
	Items []Stat `json:"items"`
}

// CTA is a closing call-to-action block.
type CTA struct {
	ButtonText string   `json:"button_text,omitempty"`
	ButtonURL  string   `json:"button_url,omitempty"`
	Note       RichText `json:"note,omitempty"`
}

// Feature is one item of a feature grid.
type Feature struct {
	Title       string   `json:"title"`
	Description RichText `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// Features is a grid of selling points.
type Features struct {
	Items []Feature `json:"items"`
}

// Program is an educational programme offered by the school.
type Program struct {
	Name        string   `json:"name"`
	Description RichText `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// Programs lists the school's programmes.
type Programs struct {
	Items []Program `json:"items"`
}

// Testimonial is a quote from a parent, alumnus or student.
type Testimonial struct {
	Name  string   `json:"name"`
	Role  string   `json:"role,omitempty"`
	Quote RichText `json:"quote"`
	Photo string   `json:"photo,omitempty"`
}

// Testimonials lists quotes.
type Testimonials struct {
	Items []Testimonial `json:"items"`
}

// Contact holds the school's contact details.
type Contact struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	MapURL  string `json:"map_url,omitempty"`
}

// Generic holds the payload of a key with no registered schema.
type Generic struct {
	Key    string         `json:"-"`
	Fields map[string]any `json:"-"`
}

func (Hero) SectionKey() string         { return KeyHero }
func (Stats) SectionKey() string        { return KeyStats }
func (CTA) SectionKey() string          { return KeyCTA }
func (Features) SectionKey() string     { return KeyFeatures }
func (Programs) SectionKey() string     { return KeyPrograms }
func (Testimonials) SectionKey() string { return KeyTestimonials }
func (Contact) SectionKey() string      { return KeyContact }
func (g Generic) SectionKey() string    { return g.Key }

// MarshalJSON writes the raw field map so generic content round-trips.
func (g Generic) MarshalJSON() ([]byte, error) {
	if g.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g.Fields)
}

// Registry maps section keys to payload schemas.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() Content
}

// NewRegistry returns a registry preloaded with the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]func() Content)}
	r.Register(KeyHero, func() Content { return &Hero{} })
	r.Register(KeyStats, func() Content { return &Stats{} })
	r.Register(KeyCTA, func() Content { return &CTA{} })
	r.Register(KeyFeatures, func() Content { return &Features{} })
	r.Register(KeyPrograms, func() Content { return &Programs{} })
	r.Register(KeyTestimonials, func() Content { return &Testimonials{} })
	r.Register(KeyContact, func() Content { return &Contact{} })
	return r
}

// Register adds or replaces the schema for key. factory must return a
// pointer that encoding/json can decode into.
func (r *Registry) Register(key string, factory func() Content) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Known reports whether key has a registered schema.
func (r *Registry) Known(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[key]
	return ok
}

// Decode parses raw into the variant registered for key. Registered
// variants are decoded strictly: unknown fields are an error, so a payload
// written for another key is caught. Unregistered keys decode into Generic.
// Empty or null payloads yield the zero value of the variant.
func (r *Registry) Decode(key string, raw json.RawMessage) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	empty := len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		g := Generic{Key: key, Fields: map[string]any{}}
		if empty {
			return g, nil
		}
		if err := json.Unmarshal(trimmed, &g.Fields); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", key, err)
		}
		return g, nil
	}

	v := factory()
	if empty {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", key, err)
	}
	return v, nil
}

// Validate checks that raw decodes under key's schema.
func (r *Registry) Validate(key string, raw json.RawMessage) error {
	_, err := r.Decode(key, raw)
	return err
}

// As returns c as the concrete variant T. It accepts both value and
// pointer forms, so As[Hero] works on the *Hero produced by Decode.
func As[T Content](c Content) (T, bool) {
	var zero T
	switch v := c.(type) {
	case T:
		return v, true
	case interface{ deref() Content }:
		if t, ok := v.deref().(T); ok {
			return t, true
		}
	}
	return zero, false
}

func (h *Hero) deref() Content         { return *h }
func (s *Stats) deref() Content        { return *s }
func (c *CTA) deref() Content          { return *c }
func (f *Features) deref() Content     { return *f }
func (p *Programs) deref() Content     { return *p }
func (t *Testimonials) deref() Content { return *t }
func (c *Contact) deref() Content      { return *c }
