package handlers

import (
	"net/http"

	"backed/internal/domain"
)

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatCreate handles POST /chat: the donor-facing assistant, grounded on the
// currently listed projects.
func (a *App) ChatCreate(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !a.decode(w, r, &req) {
		return
	}

	projects, err := a.Projects.ListByStatus(r.Context(),
		[]domain.ProjectStatus{domain.ProjectActive, domain.ProjectFunded}, 10)
	if err != nil {
		// The assistant can still answer platform questions without the
		// project context.
		a.Logger.Warn().Err(err).Msg("chat: project context unavailable")
		projects = nil
	}

	a.json(w, http.StatusOK, a.Assistant.Answer(r.Context(), req.Message, projects))
}
