package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NotificationsList handles GET /notifications.
func (a *App) NotificationsList(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	notifications, err := a.Notifications.ListByRecipient(r.Context(), alumni.ID, 50)
	if err != nil {
		a.domainError(w, err)
		return
	}
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": notifications, "unreadCount": unread})
}

// NotificationsMarkRead handles POST /notifications/{id}/read. Scoped to the
// recipient: marking someone else's notification is a 404.
func (a *App) NotificationsMarkRead(w http.ResponseWriter, r *http.Request) {
	alumni, ok := a.currentAlumni(w, r)
	if !ok {
		return
	}
	if err := a.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), alumni.ID); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"read": true})
}
