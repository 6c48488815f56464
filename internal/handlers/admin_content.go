// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"pesantren/internal/actions"
	"pesantren/internal/models"
	"pesantren/internal/reader"
	"pesantren/internal/store"
)

// --- Posts ---

// PostsList lists posts, drafts included. Query: search, category, page,
// per_page.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PostFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Page:         intQuery(r, "page", 1),
		PerPage:      intQuery(r, "per_page", 20),
	}
	items, total, err := a.posts.List(r.Context(), f)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if items == nil {
		items = []models.BlogPost{}
	}
	writeJSON(w, http.StatusOK, reader.PostPage{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: (total + f.PerPage - 1) / f.PerPage,
	})
}

// PostGet returns one post by id.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	post, err := a.posts.FindByID(r.Context(), id)
	respondFound(w, r, post, err)
}

// PostCreate creates a post.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	var in actions.PostInput
	if !decodeValid(w, r, &in, func() (string, string) { return validatePost(in) }) {
		return
	}
	post, err := a.writer.CreatePost(r.Context(), in)
	respondWrite(w, r, http.StatusCreated, post, err)
}

// PostUpdate replaces a post's editable fields.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in actions.PostInput
	if !decodeValid(w, r, &in, func() (string, string) { return validatePost(in) }) {
		return
	}
	post, err := a.writer.UpdatePost(r.Context(), id, in)
	respondWrite(w, r, http.StatusOK, post, err)
}

// PostPublish flips a post between draft and published.
func (a *Admin) PostPublish(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	post, err := a.writer.TogglePostPublish(r.Context(), id)
	respondWrite(w, r, http.StatusOK, post, err)
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	respondDelete(w, r, a.writer.DeletePost(r.Context(), id))
}

// --- Categories ---

// CategoriesList lists every category with its post count.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.categories.List(r.Context(), false)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if items == nil {
		items = []models.BlogCategory{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CategoryGet returns one category by id.
func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := a.categories.FindByID(r.Context(), id)
	respondFound(w, r, c, err)
}

// CategoryCreate creates a category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var in actions.CategoryInput
	if !decodeValid(w, r, &in, func() (string, string) { return validateCategory(in) }) {
		return
	}
	c, err := a.writer.CreateCategory(r.Context(), in)
	respondWrite(w, r, http.StatusCreated, c, err)
}

// CategoryUpdate replaces a category's fields.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in actions.CategoryInput
	if !decodeValid(w, r, &in, func() (string, string) { return validateCategory(in) }) {
		return
	}
	c, err := a.writer.UpdateCategory(r.Context(), id, in)
	respondWrite(w, r, http.StatusOK, c, err)
}

// CategoryDelete removes a category that no post references.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	respondDelete(w, r, a.writer.DeleteCategory(r.Context(), id))
}

// --- Static pages ---

// PagesList lists every static page, drafts included.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.pages.List(r.Context(), false)
	if err != nil {
		slog.Error("list pages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if items == nil {
		items = []models.StaticPage{}
	}
	writeJSON(w, http.StatusOK, items)
}

// PageGet returns one static page by id.
func (a *Admin) PageGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := a.pages.FindByID(r.Context(), id)
	respondFound(w, r, p, err)
}

// PageCreate creates a static page.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	var in actions.PageInput
	if !decodeValid(w, r, &in, func() (string, string) { return validatePage(in) }) {
		return
	}
	p, err := a.writer.CreatePage(r.Context(), in)
	respondWrite(w, r, http.StatusCreated, p, err)
}

// PageUpdate replaces a static page's editable fields.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in actions.PageInput
	if !decodeValid(w, r, &in, func() (string, string) { return validatePage(in) }) {
		return
	}
	p, err := a.writer.UpdatePage(r.Context(), id, in)
	respondWrite(w, r, http.StatusOK, p, err)
}

// PagePublish flips a static page between draft and published.
func (a *Admin) PagePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := a.writer.TogglePagePublish(r.Context(), id)
	respondWrite(w, r, http.StatusOK, p, err)
}

// PageDelete removes a static page.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	respondDelete(w, r, a.writer.DeletePage(r.Context(), id))
}

// --- Sections ---

// SectionsList lists the sections of ?page= (default home), hidden ones
// included, in display order.
func (a *Admin) SectionsList(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	if page == "" {
		page = models.PageHome
	}
	items, err := a.sections.ListByPage(r.Context(), page, false)
	if err != nil {
		slog.Error("list sections failed", "page", page, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if items == nil {
		items = []models.WebsiteSection{}
	}
	writeJSON(w, http.StatusOK, items)
}

// SectionGet returns one section by id.
func (a *Admin) SectionGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s, err := a.sections.FindByID(r.Context(), id)
	respondFound(w, r, s, err)
}

// SectionCreate adds a section to a page.
func (a *Admin) SectionCreate(w http.ResponseWriter, r *http.Request) {
	var in actions.SectionInput
	if !decodeValid(w, r, &in, func() (string, string) { return validateSection(in.Title, in.Subtitle, in.Content) }) {
		return
	}
	s, err := a.writer.CreateSection(r.Context(), in)
	respondWrite(w, r, http.StatusCreated, s, err)
}

// SectionUpdate replaces a section's title, subtitle, content and
// visibility together.
func (a *Admin) SectionUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in actions.SectionUpdate
	if !decodeValid(w, r, &in, func() (string, string) { return validateSection(in.Title, in.Subtitle, in.Content) }) {
		return
	}
	s, err := a.writer.UpdateSection(r.Context(), id, in)
	respondWrite(w, r, http.StatusOK, s, err)
}

type reorderRequest struct {
	Page  string              `json:"page"`
	Items []store.ReorderItem `json:"items"`
}

// SectionsReorder rewrites the display order of a page's sections.
func (a *Admin) SectionsReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Page == "" {
		req.Page = models.PageHome
	}
	if err := a.writer.ReorderSections(r.Context(), req.Page, req.Items); err != nil {
		writeActionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SectionDelete removes a section.
func (a *Admin) SectionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	respondDelete(w, r, a.writer.DeleteSection(r.Context(), id))
}

// --- shared ---

// decodeValid decodes the body into dst and runs check. It writes the
// error response and returns false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any, check func() (string, string)) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if field, msg := check(); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msg, Field: field})
		return false
	}
	return true
}

// respondFound answers a lookup that returns nil, nil when missing.
func respondFound[T any](w http.ResponseWriter, r *http.Request, v *T, err error) {
	switch {
	case err != nil:
		slog.Error("lookup failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	case v == nil:
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

// respondWrite answers a write action.
func respondWrite[T any](w http.ResponseWriter, r *http.Request, status int, v *T, err error) {
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

// respondDelete answers a delete action.
func respondDelete(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeActionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
