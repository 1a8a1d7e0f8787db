package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FollowCreate handles POST /schools/{id}/follow.
func (a *App) FollowCreate(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	schoolID := chi.URLParam(r, "id")
	if _, err := a.Schools.GetByID(r.Context(), schoolID); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Follows.Follow(r.Context(), alumni.ID, schoolID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"following": true})
}

// FollowDelete handles DELETE /schools/{id}/follow.
func (a *App) FollowDelete(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	if err := a.Follows.Unfollow(r.Context(), alumni.ID, chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"following": false})
}

// BookmarkCreate handles POST /projects/{id}/bookmark.
func (a *App) BookmarkCreate(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "id")
	if _, err := a.Projects.GetByID(r.Context(), projectID); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Bookmarks.Add(r.Context(), alumni.ID, projectID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"bookmarked": true})
}

// BookmarkDelete handles DELETE /projects/{id}/bookmark.
func (a *App) BookmarkDelete(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	if err := a.Bookmarks.Remove(r.Context(), alumni.ID, chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"bookmarked": false})
}

// BookmarksList handles GET /bookmarks.
func (a *App) BookmarksList(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	ids, err := a.Bookmarks.ListProjectIDs(r.Context(), alumni.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"projectIds": ids})
}
