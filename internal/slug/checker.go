// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Table names the entity whose slug namespace is being checked.
type Table string

const (
	TablePosts      Table = "blog_posts"
	TableCategories Table = "blog_categories"
	TablePages      Table = "static_pages"
)

// Known reports whether t is one of the slugged tables.
func (t Table) Known() bool {
	switch t {
	case TablePosts, TableCategories, TablePages:
		return true
	}
	return false
}

var (
	// ErrSuperseded is returned to a check that was replaced by a newer
	// check from the same owner before it finished.
	ErrSuperseded = errors.New("slug check superseded")
	// ErrClosed is returned once the checker has been closed.
	ErrClosed = errors.New("slug checker closed")
)

// Availability answers whether a slug is already taken. excludeID is the
// row being edited, which must not collide with itself.
type Availability interface {
	SlugExists(ctx context.Context, table Table, slug string, excludeID *uuid.UUID) (bool, error)
}

// Result is the outcome of an availability check.
type Result struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// Checker debounces slug availability checks. Each owner (typically one
// editor form) has at most one pending check; starting another cancels the
// previous one. The check is advisory; the UNIQUE constraint in the
// database is authoritative.
type Checker struct {
	store Availability
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*Future
	closed  bool
}

// NewChecker returns a Checker that waits delay before querying store.
func NewChecker(store Availability, delay time.Duration) *Checker {
	return &Checker{
		store:   store,
		delay:   delay,
		pending: make(map[string]*Future),
	}
}

// Future is a pending availability check.
type Future struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
	res    Result
	err    error
}

// Done is closed when the check has finished, successfully or not.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome. It blocks until the check has finished.
func (f *Future) Result() (Result, error) {
	<-f.done
	return f.res, f.err
}

// Cancel abandons the check. The future resolves with ctx's cause.
func (f *Future) Cancel() { f.cancel(context.Canceled) }

// Start begins a check for input on behalf of owner and returns
// immediately. input is normalised with Generate first.
func (c *Checker) Start(ctx context.Context, owner string, table Table, input string, excludeID *uuid.UUID) *Future {
	ctx, cancel := context.WithCancelCause(ctx)
	f := &Future{cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel(ErrClosed)
		f.err = ErrClosed
		close(f.done)
		return f
	}
	if prev, ok := c.pending[owner]; ok {
		prev.cancel(ErrSuperseded)
	}
	c.pending[owner] = f
	c.mu.Unlock()

	go func() {
		defer close(f.done)
		defer cancel(nil)
		defer c.release(owner, f)
		f.res, f.err = c.run(ctx, table, Generate(input), excludeID)
	}()
	return f
}

// Check starts a check and waits for it.
func (c *Checker) Check(ctx context.Context, owner string, table Table, input string, excludeID *uuid.UUID) (Result, error) {
	return c.Start(ctx, owner, table, input, excludeID).Result()
}

// Close cancels every pending check. Subsequent checks fail with ErrClosed.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for owner, f := range c.pending {
		f.cancel(ErrClosed)
		delete(c.pending, owner)
	}
}

func (c *Checker) run(ctx context.Context, table Table, s string, excludeID *uuid.UUID) (Result, error) {
	if s == "" {
		return Result{Slug: s}, nil
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Result{}, context.Cause(ctx)
	case <-timer.C:
	}

	exists, err := c.store.SlugExists(ctx, table, s, excludeID)
	// A newer check may have replaced this one while the query ran; its
	// answer is stale even if the query itself succeeded.
	if ctx.Err() != nil {
		return Result{}, context.Cause(ctx)
	}
	if err != nil {
		return Result{}, fmt.Errorf("check slug %q: %w", s, err)
	}
	return Result{Slug: s, Available: !exists}, nil
}

func (c *Checker) release(owner string, f *Future) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[owner] == f {
		delete(c.pending, owner)
	}
}
