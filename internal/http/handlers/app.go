package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"backed/internal/domain"
	"backed/internal/fanout"
	"backed/internal/feed"
	"backed/internal/funding"
	"backed/internal/ledger"
	"backed/internal/middleware"
	"backed/internal/providers/genai"
)

// App carries every dependency the HTTP handlers need. Handlers stay thin:
// decode, resolve the principal, call one service, map the error.
type App struct {
	Ledger     *ledger.Reader
	Processor  *funding.Processor
	Ranker     *feed.Ranker
	Notifier   *fanout.Notifier
	Summarizer *genai.Summarizer
	Assistant  *genai.Assistant

	Projects      domain.ProjectRepository
	Donations     domain.DonationRepository
	Notifications domain.NotificationRepository
	Follows       domain.FollowRepository
	Bookmarks     domain.BookmarkRepository
	Updates       domain.ProjectUpdateRepository
	Alumni        domain.AlumniRepository
	Schools       domain.SchoolRepository

	Logger   zerolog.Logger
	Validate *validator.Validate
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": slug, "message": message})
}

// domainError maps sentinel errors onto HTTP responses. Anything unmapped is
// an internal error, logged with its cause but not leaked to the client.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrInvalidAmount):
		a.error(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domain.ErrProjectNotActive):
		a.error(w, http.StatusConflict, "project_not_active", "project is not accepting donations")
	case errors.Is(err, domain.ErrExceedsRemainingTarget):
		a.error(w, http.StatusUnprocessableEntity, "exceeds_remaining_target", err.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		a.error(w, http.StatusPaymentRequired, "payment_declined", "payment failed, you were not charged")
	case errors.Is(err, domain.ErrDuplicateOperation):
		a.error(w, http.StatusConflict, "duplicate", "operation already performed")
	case errors.Is(err, domain.ErrReconciliationRequired):
		a.error(w, http.StatusInternalServerError, "reconciliation_pending",
			"your payment went through but recording it failed; support has been notified and it will be credited")
	case errors.Is(err, domain.ErrSourceUnavailable):
		a.error(w, http.StatusServiceUnavailable, "source_unavailable", "funding data is temporarily unavailable")
	default:
		a.Logger.Error().Err(err).Msg("http: unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode parses and validates a JSON body.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if a.Validate != nil {
		if err := a.Validate.Struct(v); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return false
		}
	}
	return true
}

// currentAlumni resolves the authenticated alumni profile.
func (a *App) currentAlumni(w http.ResponseWriter, r *http.Request) (*domain.AlumniUser, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return nil, false
	}
	alumni, err := a.Alumni.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusForbidden, "forbidden", "no alumni profile")
			return nil, false
		}
		a.domainError(w, err)
		return nil, false
	}
	return alumni, true
}

// currentSchool resolves the authenticated school profile.
func (a *App) currentSchool(w http.ResponseWriter, r *http.Request) (*domain.School, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return nil, false
	}
	school, err := a.Schools.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusForbidden, "forbidden", "no school profile")
			return nil, false
		}
		a.domainError(w, err)
		return nil, false
	}
	return school, true
}
