package fanout

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

type fakeProjects struct {
	project *domain.Project
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProjects) ListByStatus(context.Context, []domain.ProjectStatus, int) ([]domain.Project, error) {
	return nil, nil
}
func (f *fakeProjects) ReleaseHeadroom(context.Context, string, int64) error          { return nil }
func (f *fakeProjects) RefreshFundingCache(context.Context, string, int64, int) error { return nil }

type fakeUpdates struct {
	created []domain.ProjectUpdate
	err     error
}

func (f *fakeUpdates) Create(_ context.Context, u *domain.ProjectUpdate) error {
	if f.err != nil {
		return f.err
	}
	u.ID = "upd-1"
	f.created = append(f.created, *u)
	return nil
}

func (f *fakeUpdates) ListByProject(context.Context, string) ([]domain.ProjectUpdate, error) {
	return nil, nil
}

type fakeDonations struct {
	donorIDs []string
	err      error
}

func (f *fakeDonations) Create(context.Context, *domain.Donation) error        { return nil }
func (f *fakeDonations) CreatePending(context.Context, *domain.Donation) error { return nil }
func (f *fakeDonations) MarkStatus(context.Context, string, domain.DonationStatus, string) error {
	return nil
}
func (f *fakeDonations) SumPendingAmount(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeDonations) GetByPaymentReference(context.Context, string) (*domain.Donation, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeDonations) ListByDonor(context.Context, string, int) ([]domain.Donation, error) {
	return nil, nil
}

func (f *fakeDonations) ListCompletedDonorIDs(context.Context, string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.donorIDs, nil
}

type fakeFollows struct {
	followerIDs []string
	err         error
}

func (f *fakeFollows) Follow(context.Context, string, string) error   { return nil }
func (f *fakeFollows) Unfollow(context.Context, string, string) error { return nil }

func (f *fakeFollows) ListFollowerIDs(context.Context, string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.followerIDs, nil
}

type fakeNotifications struct {
	created []domain.Notification
	err     error
}

func (f *fakeNotifications) BulkCreate(_ context.Context, ns []domain.Notification) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.created = append(f.created, ns...)
	return len(ns), nil
}

func (f *fakeNotifications) ListByRecipient(context.Context, string, int) ([]domain.Notification, error) {
	return nil, nil
}
func (f *fakeNotifications) MarkRead(context.Context, string, string) error { return nil }

func shareProject() *domain.Project {
	return &domain.Project{ID: "p1", SchoolID: "school-1", Title: "New science lab"}
}

func newTestNotifier(donations *fakeDonations, follows *fakeFollows, updates *fakeUpdates, notifications *fakeNotifications) *Notifier {
	return NewNotifier(
		&fakeProjects{project: shareProject()},
		updates, donations, follows, notifications,
		zerolog.New(io.Discard),
	)
}

func TestShareProjectUpdateDeduplicatesAudience(t *testing.T) {
	donations := &fakeDonations{donorIDs: []string{"a", "b", "c"}}
	follows := &fakeFollows{followerIDs: []string{"b", "c", "d"}}
	updates := &fakeUpdates{}
	notifications := &fakeNotifications{}

	res, err := newTestNotifier(donations, follows, updates, notifications).ShareProjectUpdate(
		context.Background(),
		ShareRequest{SchoolID: "school-1", ProjectID: "p1", Title: "Walls are up", Message: "Great progress"},
	)
	if err != nil {
		t.Fatalf("ShareProjectUpdate returned error: %v", err)
	}
	if res.AudienceSize != 4 {
		t.Fatalf("AudienceSize = %d, want 4 (a b c d deduped)", res.AudienceSize)
	}
	if res.NotifiedCount != 4 {
		t.Fatalf("NotifiedCount = %d, want 4", res.NotifiedCount)
	}

	seen := make(map[string]int)
	for _, n := range notifications.created {
		seen[n.RecipientID]++
		if n.Type != domain.NotificationUpdate {
			t.Fatalf("notification type = %s, want update", n.Type)
		}
		if n.Metadata["update_id"] != "upd-1" {
			t.Fatalf("metadata update_id = %v, want upd-1", n.Metadata["update_id"])
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("recipient %s notified %d times, want exactly once", id, count)
		}
	}
}

func TestShareProjectUpdateWrongSchool(t *testing.T) {
	notifier := newTestNotifier(&fakeDonations{}, &fakeFollows{}, &fakeUpdates{}, &fakeNotifications{})

	_, err := notifier.ShareProjectUpdate(context.Background(),
		ShareRequest{SchoolID: "school-2", ProjectID: "p1", Title: "x"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestShareProjectUpdateNotificationFailureKeepsUpdate(t *testing.T) {
	updates := &fakeUpdates{}
	notifications := &fakeNotifications{err: errors.New("insert failed")}
	notifier := newTestNotifier(&fakeDonations{donorIDs: []string{"a"}}, &fakeFollows{}, updates, notifications)

	res, err := notifier.ShareProjectUpdate(context.Background(),
		ShareRequest{SchoolID: "school-1", ProjectID: "p1", Title: "x", Message: "y"})
	if err != nil {
		t.Fatalf("notification failure must not fail the share: %v", err)
	}
	if len(updates.created) != 1 {
		t.Fatal("the update must be persisted even when delivery fails")
	}
	if res.NotifiedCount != 0 {
		t.Fatalf("NotifiedCount = %d, want 0", res.NotifiedCount)
	}
}

func TestShareProjectUpdateDonorFetchFailureDegradesToFollowers(t *testing.T) {
	donations := &fakeDonations{err: errors.New("db down")}
	follows := &fakeFollows{followerIDs: []string{"f1", "f2"}}
	notifications := &fakeNotifications{}
	notifier := newTestNotifier(donations, follows, &fakeUpdates{}, notifications)

	res, err := notifier.ShareProjectUpdate(context.Background(),
		ShareRequest{SchoolID: "school-1", ProjectID: "p1", Title: "x"})
	if err != nil {
		t.Fatalf("donor fetch failure must not fail the share: %v", err)
	}
	if res.NotifiedCount != 2 {
		t.Fatalf("NotifiedCount = %d, want the 2 reachable followers", res.NotifiedCount)
	}
}

func TestShareProjectUpdateEmptyAudience(t *testing.T) {
	notifications := &fakeNotifications{}
	notifier := newTestNotifier(&fakeDonations{}, &fakeFollows{}, &fakeUpdates{}, notifications)

	res, err := notifier.ShareProjectUpdate(context.Background(),
		ShareRequest{SchoolID: "school-1", ProjectID: "p1", Title: "x"})
	if err != nil {
		t.Fatalf("ShareProjectUpdate returned error: %v", err)
	}
	if res.NotifiedCount != 0 || len(notifications.created) != 0 {
		t.Fatal("empty audience must create no notifications")
	}
}

func TestShareProjectUpdateCreateFailureErrors(t *testing.T) {
	updates := &fakeUpdates{err: errors.New("constraint violation")}
	notifier := newTestNotifier(&fakeDonations{donorIDs: []string{"a"}}, &fakeFollows{}, updates, &fakeNotifications{})

	_, err := notifier.ShareProjectUpdate(context.Background(),
		ShareRequest{SchoolID: "school-1", ProjectID: "p1", Title: "x"})
	if err == nil {
		t.Fatal("a failed update insert must error")
	}
}
