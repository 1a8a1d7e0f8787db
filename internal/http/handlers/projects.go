package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"backed/internal/domain"
	"backed/internal/ledger"
)

// ProjectsList handles GET /projects. Newest active and funded projects.
func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	statuses := []domain.ProjectStatus{domain.ProjectActive, domain.ProjectFunded}
	if s := r.URL.Query().Get("status"); s != "" {
		statuses = []domain.ProjectStatus{domain.ProjectStatus(s)}
	}
	projects, err := a.Projects.ListByStatus(r.Context(), statuses, 50)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": projects})
}

// ProjectsGet handles GET /projects/{id}.
func (a *App) ProjectsGet(w http.ResponseWriter, r *http.Request) {
	project, err := a.Projects.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, project)
}

// ProjectsFunding handles GET /projects/{id}/funding.
//
// grouping=donors (default) is the alumni-facing card: backers are distinct
// donors. grouping=rows is the school dashboard: every donation row counts.
func (a *App) ProjectsFunding(w http.ResponseWriter, r *http.Request) {
	grouping := ledger.GroupByDonor
	if r.URL.Query().Get("grouping") == "rows" {
		grouping = ledger.GroupByRow
	}

	totals, err := a.Ledger.ComputeFundingTotals(r.Context(), chi.URLParam(r, "id"), grouping)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"totalRaised":     totals.TotalRaised,
		"backerCount":     totals.BackerCount,
		"donationCount":   totals.DonationCount,
		"degraded":        totals.Degraded,
		"degradedSources": totals.DegradedSources,
	})
}

// ProjectsSummary handles GET /projects/{id}/summary.
func (a *App) ProjectsSummary(w http.ResponseWriter, r *http.Request) {
	project, err := a.Projects.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, a.Summarizer.Summarize(r.Context(), *project))
}
