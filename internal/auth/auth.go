// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth carries the signed-in editor through request contexts and
// issues the bearer tokens accepted by the dashboard API.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pesantren/internal/models"
)

// ErrNotAuthenticated is returned by writes attempted without an actor.
var ErrNotAuthenticated = errors.New("not authenticated")

// Actor is the editor performing a request.
type Actor struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
}

// FromUser builds an Actor from a stored user.
func FromUser(u *models.User) *Actor {
	return &Actor{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor in ctx, or nil.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}

// Require returns the actor in ctx or ErrNotAuthenticated.
func Require(ctx context.Context) (*Actor, error) {
	a := ActorFrom(ctx)
	if a == nil || a.ID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return a, nil
}
