package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"backed/internal/fanout"
)

type updateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

// UpdatesCreate handles POST /projects/{id}/updates. School-only: persists
// the update and fans notifications out to donors and followers.
func (a *App) UpdatesCreate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !a.decode(w, r, &req) {
		return
	}
	school, ok := a.currentSchool(w, r)
	if !ok {
		return
	}

	result, err := a.Notifier.ShareProjectUpdate(r.Context(), fanout.ShareRequest{
		SchoolID:  school.ID,
		ProjectID: chi.URLParam(r, "id"),
		Title:     req.Title,
		Message:   req.Message,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"update":        result.Update,
		"notifiedCount": result.NotifiedCount,
		"audienceSize":  result.AudienceSize,
	})
}

// UpdatesList handles GET /projects/{id}/updates.
func (a *App) UpdatesList(w http.ResponseWriter, r *http.Request) {
	updates, err := a.Updates.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": updates})
}
