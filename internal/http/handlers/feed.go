package handlers

import "net/http"

// FeedGet handles GET /feed: the personalized project feed for the
// authenticated alumni.
func (a *App) FeedGet(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	result, err := a.Ranker.BuildFeed(r.Context(), alumni.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}
