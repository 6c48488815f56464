// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"pesantren/internal/models"
)

func TestCategoryStoreCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanSlugs(t, db, "blog_categories", "test-cat-crud", "test-cat-crud-2") })

	c, err := s.Create(ctx, &models.BlogCategory{Name: "Berita", Slug: "test-cat-crud", Description: strPtr("Kabar pondok")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindBySlug(ctx, "test-cat-crud")
	if err != nil || got == nil || got.ID != c.ID {
		t.Fatalf("FindBySlug: %+v, %v", got, err)
	}

	c.Name = "Berita Pondok"
	c.Slug = "test-cat-crud-2"
	updated, err := s.Update(ctx, c)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Berita Pondok" {
		t.Errorf("name: got %q", updated.Name)
	}

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindByID(ctx, c.ID); got != nil {
		t.Error("category still present after delete")
	}
}

func TestCategoryStoreListCountsPublishedPosts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	cats := NewCategoryStore(db)
	posts := NewPostStore(db)
	t.Cleanup(func() {
		cleanSlugs(t, db, "blog_posts", "test-count-pub", "test-count-draft")
		cleanSlugs(t, db, "blog_categories", "test-count-cat")
	})

	c, err := cats.Create(ctx, &models.BlogCategory{Name: "Hitung", Slug: "test-count-cat"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	now := time.Now()
	posts.Create(ctx, &models.BlogPost{Title: "P", Slug: "test-count-pub", CategoryID: &c.ID, IsPublished: true, PublishedAt: &now})
	posts.Create(ctx, &models.BlogPost{Title: "D", Slug: "test-count-draft", CategoryID: &c.ID})

	for _, tt := range []struct {
		publishedOnly bool
		want          int
	}{{true, 1}, {false, 2}} {
		list, err := cats.List(ctx, tt.publishedOnly)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for _, item := range list {
			if item.ID == c.ID && item.PostCount != tt.want {
				t.Errorf("publishedOnly=%v: post count %d, want %d", tt.publishedOnly, item.PostCount, tt.want)
			}
		}
	}

	// The foreign key refuses deleting a referenced category.
	if err := cats.Delete(ctx, c.ID); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected foreign key error, got %v", err)
	}
}
