package fanout

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// ShareRequest is a school sharing an update on its own project.
type ShareRequest struct {
	SchoolID  string
	ProjectID string
	Title     string
	Message   string
}

// ShareResult reports the persisted update and how many notifications went
// out.
type ShareResult struct {
	Update        domain.ProjectUpdate
	NotifiedCount int
	AudienceSize  int
}

// Notifier creates a project update and fans notifications out to its
// audience: everyone who donated to the project plus everyone following the
// owning school, each recipient at most once.
type Notifier struct {
	projects      domain.ProjectRepository
	updates       domain.ProjectUpdateRepository
	donations     domain.DonationRepository
	follows       domain.FollowRepository
	notifications domain.NotificationRepository
	logger        zerolog.Logger
}

func NewNotifier(
	projects domain.ProjectRepository,
	updates domain.ProjectUpdateRepository,
	donations domain.DonationRepository,
	follows domain.FollowRepository,
	notifications domain.NotificationRepository,
	logger zerolog.Logger,
) *Notifier {
	return &Notifier{
		projects:      projects,
		updates:       updates,
		donations:     donations,
		follows:       follows,
		notifications: notifications,
		logger:        logger,
	}
}

// ShareProjectUpdate persists the update, then notifies donors ∪ followers.
//
// The update is the document of record: once it is written it stays written,
// and notification delivery failures are logged, never propagated. Only an
// unauthorized school or a failed update insert error out.
func (n *Notifier) ShareProjectUpdate(ctx context.Context, req ShareRequest) (*ShareResult, error) {
	project, err := n.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.SchoolID != req.SchoolID {
		return nil, fmt.Errorf("%w: project belongs to another school", domain.ErrUnauthorized)
	}

	update := domain.ProjectUpdate{
		ProjectID: req.ProjectID,
		SchoolID:  req.SchoolID,
		Title:     req.Title,
		Message:   req.Message,
	}
	if err := n.updates.Create(ctx, &update); err != nil {
		return nil, fmt.Errorf("create project update: %w", err)
	}

	audience := n.collectAudience(ctx, project)
	result := &ShareResult{Update: update, AudienceSize: len(audience)}
	if len(audience) == 0 {
		return result, nil
	}

	notifications := make([]domain.Notification, 0, len(audience))
	for _, recipientID := range audience {
		notifications = append(notifications, domain.Notification{
			RecipientID: recipientID,
			ProjectID:   &update.ProjectID,
			Type:        domain.NotificationUpdate,
			Title:       fmt.Sprintf("Update from %s", project.Title),
			Message:     req.Title,
			Metadata:    map[string]any{"update_id": update.ID},
		})
	}

	created, err := n.notifications.BulkCreate(ctx, notifications)
	result.NotifiedCount = created
	if err != nil {
		// The update row stays; partial delivery is acceptable.
		n.logger.Warn().Err(err).
			Str("update_id", update.ID).
			Int("created", created).
			Int("audience", len(audience)).
			Msg("fanout: notification delivery incomplete")
	}
	return result, nil
}

// collectAudience merges the project's completed donors with the owning
// school's followers, deduplicated. Either half being unreadable degrades to
// the other half rather than failing the share.
func (n *Notifier) collectAudience(ctx context.Context, project *domain.Project) []string {
	seen := make(map[string]struct{})

	donors, err := n.donations.ListCompletedDonorIDs(ctx, project.ID)
	if err != nil {
		n.logger.Warn().Err(err).
			Str("project_id", project.ID).
			Msg("fanout: donor audience unavailable")
	}
	for _, id := range donors {
		seen[id] = struct{}{}
	}

	followers, err := n.follows.ListFollowerIDs(ctx, project.SchoolID)
	if err != nil {
		n.logger.Warn().Err(err).
			Str("school_id", project.SchoolID).
			Msg("fanout: follower audience unavailable")
	}
	for _, id := range followers {
		seen[id] = struct{}{}
	}

	audience := make([]string, 0, len(seen))
	for id := range seen {
		audience = append(audience, id)
	}
	// Stable order keeps delivery and tests reproducible.
	sort.Strings(audience)
	return audience
}
