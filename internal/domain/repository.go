package domain

import "context"

// ProjectRepository defines access to projects and to the ledger-owned
// funding cache columns.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*Project, error)
	// ListByStatus returns the newest projects in any of the given
	// statuses, capped at limit. This is the feed's bounded candidate
	// window.
	ListByStatus(ctx context.Context, statuses []ProjectStatus, limit int) ([]Project, error)
	// ReleaseHeadroom subtracts amount from current_amount as a
	// compensating delta for a reservation whose charge was declined,
	// reverting funded status when the total drops below target. Never a
	// re-sum: concurrent reservations must not be disturbed.
	ReleaseHeadroom(ctx context.Context, projectID string, amount int64) error
	// RefreshFundingCache writes recomputed totals onto the project row
	// and derives status=funded when the target is met. Idempotent;
	// last-writer-wins is safe because callers always pass a full re-sum.
	RefreshFundingCache(ctx context.Context, projectID string, totalRaised int64, backerCount int) error
}

// DonationRepository handles the primary alumni donation table.
type DonationRepository interface {
	Create(ctx context.Context, donation *Donation) error
	// CreatePending atomically reserves headroom on the project and inserts
	// the donation as a pending row, in one statement. The reservation and
	// its backing row can never be observed apart, so a concurrent re-sum
	// of donation rows always accounts for every live reservation. Returns
	// ErrExceedsRemainingTarget or ErrProjectNotActive when refused.
	CreatePending(ctx context.Context, donation *Donation) error
	// MarkStatus flips a donation's lifecycle state once the gateway has
	// answered; provider is recorded when non-empty.
	MarkStatus(ctx context.Context, id string, status DonationStatus, provider string) error
	// SumPendingAmount totals the project's in-flight pending rows, which
	// back live headroom reservations.
	SumPendingAmount(ctx context.Context, projectID string) (int64, error)
	GetByPaymentReference(ctx context.Context, reference string) (*Donation, error)
	ListByDonor(ctx context.Context, donorID string, limit int) ([]Donation, error)
	// ListCompletedDonorIDs returns the distinct donor ids with a
	// completed donation on the project (fan-out audience half).
	ListCompletedDonorIDs(ctx context.Context, projectID string) ([]string, error)
}

// DonationSource is one physical origin of completed donations. The ledger
// merges all sources before aggregating; call sites never see the individual
// tables.
type DonationSource interface {
	Name() string
	ListCompleted(ctx context.Context, projectID string) ([]CompletedDonation, error)
}

// FollowRepository handles alumni-follows-school existence rows.
type FollowRepository interface {
	Follow(ctx context.Context, alumniUserID, schoolID string) error
	Unfollow(ctx context.Context, alumniUserID, schoolID string) error
	ListFollowerIDs(ctx context.Context, schoolID string) ([]string, error)
}

// BookmarkRepository handles alumni-bookmarks-project existence rows.
type BookmarkRepository interface {
	Add(ctx context.Context, alumniUserID, projectID string) error
	Remove(ctx context.Context, alumniUserID, projectID string) error
	ListProjectIDs(ctx context.Context, alumniUserID string) ([]string, error)
}

// NotificationRepository persists alumni notifications.
type NotificationRepository interface {
	// BulkCreate inserts the given notifications best-effort and returns
	// how many were written.
	BulkCreate(ctx context.Context, notifications []Notification) (int, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

// ProjectUpdateRepository persists school-authored project updates.
type ProjectUpdateRepository interface {
	Create(ctx context.Context, update *ProjectUpdate) error
	ListByProject(ctx context.Context, projectID string) ([]ProjectUpdate, error)
}

// AlumniRepository reads donor profiles.
type AlumniRepository interface {
	GetByID(ctx context.Context, id string) (*AlumniUser, error)
	GetByUserID(ctx context.Context, userID string) (*AlumniUser, error)
}

// SchoolRepository reads school principals.
type SchoolRepository interface {
	GetByID(ctx context.Context, id string) (*School, error)
	GetByUserID(ctx context.Context, userID string) (*School, error)
}

// ReconciliationRepository queues charged-but-unrecorded donations for
// retry.
type ReconciliationRepository interface {
	Enqueue(ctx context.Context, entry *ReconciliationEntry) error
	ListPending(ctx context.Context, limit int) ([]ReconciliationEntry, error)
	MarkResolved(ctx context.Context, id string) error
	MarkAttempt(ctx context.Context, id string, lastError string) error
}
