// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sections

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Block is one rendered section of a page: stored values merged with the
// component's defaults.
type Block[T Content] struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  T      `json:"content"`
	// Fallback is true when no stored content was usable and the block's
	// content is entirely made of defaults.
	Fallback bool `json:"fallback"`
}

// Default is a component's hard-coded rendering of its section.
type Default[T Content] struct {
	Title    string
	Subtitle string
	Content  T
}

// Render merges r over def. It returns nil when the section is hidden.
func Render[T Content](key string, r Result, def Default[T]) *Block[T] {
	if r.Hidden() {
		return nil
	}
	return &Block[T]{
		Key:      key,
		Title:    r.Data.TitleOr(def.Title),
		Subtitle: r.Data.SubtitleOr(def.Subtitle),
		Content:  ContentOr(r, def.Content),
		Fallback: r.Data == nil || r.Data.Content == nil,
	}
}

// HomeDefaults are the hard-coded fallbacks of every homepage component.
type HomeDefaults struct {
	Hero         Default[Hero]
	Stats        Default[Stats]
	Programs     Default[Programs]
	Features     Default[Features]
	Testimonials Default[Testimonials]
	CTA          Default[CTA]
	Contact      Default[Contact]
}

// Home is the homepage view model. A nil block was switched off by an editor.
type Home struct {
	Hero         *Block[Hero]         `json:"hero,omitempty"`
	Stats        *Block[Stats]        `json:"stats,omitempty"`
	Programs     *Block[Programs]     `json:"programs,omitempty"`
	Features     *Block[Features]     `json:"features,omitempty"`
	Testimonials *Block[Testimonials] `json:"testimonials,omitempty"`
	CTA          *Block[CTA]          `json:"cta,omitempty"`
	Contact      *Block[Contact]      `json:"contact,omitempty"`
}

// BuildHome resolves every homepage component concurrently. Each component
// mounts its own binding and fetches independently; a missing or broken
// section degrades to its defaults and never fails the page.
func BuildHome(ctx context.Context, r *Resolver, def HomeDefaults) *Home {
	home := &Home{}
	g, gctx := errgroup.WithContext(ctx)

	mount(g, gctx, r, KeyHero, def.Hero, &home.Hero)
	mount(g, gctx, r, KeyStats, def.Stats, &home.Stats)
	mount(g, gctx, r, KeyPrograms, def.Programs, &home.Programs)
	mount(g, gctx, r, KeyFeatures, def.Features, &home.Features)
	mount(g, gctx, r, KeyTestimonials, def.Testimonials, &home.Testimonials)
	mount(g, gctx, r, KeyCTA, def.CTA, &home.CTA)
	mount(g, gctx, r, KeyContact, def.Contact, &home.Contact)

	// Components never return errors; Wait only joins them.
	_ = g.Wait()
	return home
}

func mount[T Content](g *errgroup.Group, ctx context.Context, r *Resolver, key string, def Default[T], out **Block[T]) {
	g.Go(func() error {
		b := r.Bind(ctx)
		defer b.Close()

		b.Load(key)
		res, err := b.Wait(ctx)
		if err != nil {
			res = Result{Err: err}
		}
		if res.Err != nil && !isNotFound(res.Err) {
			slog.Warn("section degraded to defaults", "key", key, "error", res.Err)
		}
		*out = Render(key, res, def)
		return nil
	})
}
