// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pesantren/internal/models"
)

// ErrSectionNotFound means no row exists for the key. Callers render their
// defaults; an unconfigured section is a supported state, not a page error.
var ErrSectionNotFound = errors.New("section not found")

// Fetcher loads the stored row for a section key. It returns nil, nil when
// the row does not exist.
type Fetcher interface {
	FetchSection(ctx context.Context, key string) (*models.WebsiteSection, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key string) (*models.WebsiteSection, error)

// FetchSection calls f.
func (f FetcherFunc) FetchSection(ctx context.Context, key string) (*models.WebsiteSection, error) {
	return f(ctx, key)
}

// Data is a stored section exposed verbatim: nothing is merged with
// defaults at this level.
type Data struct {
	Key        string  `json:"section_key"`
	Page       string  `json:"page"`
	Title      *string `json:"title"`
	Subtitle   *string `json:"subtitle"`
	Content    Content `json:"content"`
	IsVisible  bool    `json:"is_visible"`
	OrderIndex int     `json:"order_index"`
}

// Result is the loading/data/error triple a consumer renders from.
// Data is nil while the fetch is pending or when no row was read. A row
// whose content fails to decode keeps its Data with a nil Content, so
// visibility and headings still apply.
type Result struct {
	Loading bool
	Data    *Data
	Err     error
}

// Resolver turns section keys into Results. It keeps no cache: every call
// is one independent fetch.
type Resolver struct {
	fetcher  Fetcher
	registry *Registry
}

// NewResolver returns a Resolver reading from fetcher and decoding payloads
// with registry. A nil registry uses the built-in variants.
func NewResolver(fetcher Fetcher, registry *Registry) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{fetcher: fetcher, registry: registry}
}

// Registry returns the schema registry used for decoding.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve performs exactly one fetch for key.
func (r *Resolver) Resolve(ctx context.Context, key string) Result {
	row, err := r.fetcher.FetchSection(ctx, key)
	if err != nil {
		return Result{Err: fmt.Errorf("fetch section %s: %w", key, err)}
	}
	if row == nil {
		return Result{Err: fmt.Errorf("%w: %s", ErrSectionNotFound, key)}
	}
	return r.FromRow(row)
}

// FromRow decodes an already loaded row into a Result.
func (r *Resolver) FromRow(row *models.WebsiteSection) Result {
	data := &Data{
		Key:        row.Key,
		Page:       row.Page,
		Title:      row.Title,
		Subtitle:   row.Subtitle,
		IsVisible:  row.IsVisible,
		OrderIndex: row.OrderIndex,
	}
	content, err := r.registry.Decode(row.Key, row.Content)
	if err != nil {
		return Result{Data: data, Err: err}
	}
	data.Content = content
	return Result{Data: data}
}

// Binding is a long-lived subscription to one section key at a time, the
// server-side equivalent of a mounted component. Changing the key cancels
// the fetch for the old key and its result is discarded, so a slow stale
// response can never overwrite newer state.
type Binding struct {
	resolver *Resolver
	ctx      context.Context
	stop     context.CancelFunc

	mu      sync.Mutex
	key     string
	gen     uint64
	cancel  context.CancelFunc
	state   Result
	changed chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Bind returns a Binding whose fetches run under ctx.
func (r *Resolver) Bind(ctx context.Context) *Binding {
	ctx, stop := context.WithCancel(ctx)
	return &Binding{
		resolver: r,
		ctx:      ctx,
		stop:     stop,
		changed:  make(chan struct{}),
	}
}

// Load points the binding at key. Loading the key already bound is a no-op.
func (b *Binding) Load(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || (b.gen > 0 && key == b.key) {
		return
	}
	if b.cancel != nil {
		b.cancel()
	}

	b.gen++
	gen := b.gen
	b.key = key
	ctx, cancel := context.WithCancel(b.ctx)
	b.cancel = cancel
	b.setLocked(Result{Loading: true})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		res := b.resolver.Resolve(ctx, key)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed || gen != b.gen {
			return
		}
		b.setLocked(res)
	}()
}

// Key returns the key currently bound.
func (b *Binding) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// State returns the current result.
func (b *Binding) State() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Wait blocks until the current fetch has settled or ctx is done.
func (b *Binding) Wait(ctx context.Context) (Result, error) {
	for {
		b.mu.Lock()
		st, ch, closed := b.state, b.changed, b.closed
		b.mu.Unlock()

		if !st.Loading || closed {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Close cancels any in-flight fetch and waits for it to return. The last
// settled state stays readable.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.stop()
	close(b.changed)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Binding) setLocked(r Result) {
	b.state = r
	close(b.changed)
	b.changed = make(chan struct{})
}
