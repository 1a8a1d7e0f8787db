package ledger

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

type fakeProjects struct {
	project   *domain.Project
	refreshes []refreshCall
}

type refreshCall struct {
	projectID   string
	totalRaised int64
	backerCount int
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

func (f *fakeProjects) ReleaseHeadroom(context.Context, string, int64) error { return nil }

func (f *fakeProjects) RefreshFundingCache(_ context.Context, projectID string, totalRaised int64, backerCount int) error {
	f.refreshes = append(f.refreshes, refreshCall{projectID, totalRaised, backerCount})
	return nil
}

type fakePending struct {
	total int64
	err   error
}

func (f *fakePending) SumPendingAmount(context.Context, string) (int64, error) {
	return f.total, f.err
}

type fakeSource struct {
	name string
	rows []domain.CompletedDonation
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) ListCompleted(context.Context, string) ([]domain.CompletedDonation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func testProject() *domain.Project {
	target := int64(100000)
	return &domain.Project{ID: "p1", Status: domain.ProjectActive, TargetAmount: &target}
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestComputeFundingTotalsMergesBothSources(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	primary := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 5000},
		{ProjectID: "p1", DonorID: "a", Amount: 2500},
		{ProjectID: "p1", DonorID: "b", Amount: 1000},
	}}
	legacy := &fakeSource{name: "donation_history", rows: []domain.CompletedDonation{
		{ProjectID: "p1", Amount: 20000},
	}}

	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{primary, legacy}, testLogger())

	totals, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if err != nil {
		t.Fatalf("ComputeFundingTotals returned error: %v", err)
	}
	if totals.TotalRaised != 28500 {
		t.Fatalf("TotalRaised = %d, want 28500", totals.TotalRaised)
	}
	// Donor a counted once, donor b once, one unlinked legacy row.
	if totals.BackerCount != 3 {
		t.Fatalf("BackerCount = %d, want 3", totals.BackerCount)
	}
	if totals.DonationCount != 4 {
		t.Fatalf("DonationCount = %d, want 4", totals.DonationCount)
	}
	if totals.Degraded {
		t.Fatal("totals unexpectedly degraded")
	}
}

func TestComputeFundingTotalsGroupByRowCountsEveryDonation(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	primary := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 100},
		{ProjectID: "p1", DonorID: "a", Amount: 100},
	}}

	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{primary}, testLogger())

	totals, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByRow)
	if err != nil {
		t.Fatalf("ComputeFundingTotals returned error: %v", err)
	}
	if totals.BackerCount != 2 {
		t.Fatalf("BackerCount = %d, want 2 (row grouping)", totals.BackerCount)
	}
}

func TestComputeFundingTotalsIsIdempotent(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	source := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 1234},
		{ProjectID: "p1", DonorID: "b", Amount: 4321},
	}}
	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{source}, testLogger())

	first, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) && first.TotalRaised != second.TotalRaised {
		t.Fatalf("totals differ across identical reads: %+v vs %+v", first, second)
	}
	if first.TotalRaised != 5555 || second.TotalRaised != 5555 {
		t.Fatalf("TotalRaised = %d/%d, want 5555", first.TotalRaised, second.TotalRaised)
	}
}

func TestComputeFundingTotalsFlagsUnreachableSource(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	primary := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 7000},
	}}
	legacy := &fakeSource{name: "donation_history", err: errors.New("connection refused")}

	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{primary, legacy}, testLogger())

	totals, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if err != nil {
		t.Fatalf("partial totals should not error: %v", err)
	}
	if !totals.Degraded {
		t.Fatal("expected degraded marker for unreachable source")
	}
	if len(totals.DegradedSources) != 1 || totals.DegradedSources[0] != "donation_history" {
		t.Fatalf("DegradedSources = %v, want [donation_history]", totals.DegradedSources)
	}
	if totals.TotalRaised != 7000 {
		t.Fatalf("TotalRaised = %d, want 7000 from the reachable source", totals.TotalRaised)
	}
}

func TestComputeFundingTotalsAllSourcesDown(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{
		&fakeSource{name: "alumni_donations", err: errors.New("down")},
		&fakeSource{name: "donation_history", err: errors.New("down")},
	}, testLogger())

	_, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestComputeFundingTotalsUnknownProject(t *testing.T) {
	projects := &fakeProjects{}
	reader := NewReader(projects, &fakePending{}, nil, testLogger())

	_, err := reader.ComputeFundingTotals(context.Background(), "missing", GroupByDonor)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRefreshWritesFullResum(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	source := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 60000},
		{ProjectID: "p1", DonorID: "b", Amount: 40000},
	}}
	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{source}, testLogger())

	if err := reader.Refresh(context.Background(), "p1"); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(projects.refreshes) != 1 {
		t.Fatalf("expected 1 cache write, got %d", len(projects.refreshes))
	}
	got := projects.refreshes[0]
	if got.totalRaised != 100000 || got.backerCount != 2 {
		t.Fatalf("cache write = %+v, want total 100000 backers 2", got)
	}

	// A second refresh with no new donations writes identical totals.
	if err := reader.Refresh(context.Background(), "p1"); err != nil {
		t.Fatalf("second Refresh returned error: %v", err)
	}
	if projects.refreshes[1] != got {
		t.Fatalf("repeat refresh diverged: %+v vs %+v", projects.refreshes[1], got)
	}
}

// Legacy rows that do carry a donor reference are deduplicated like primary
// rows; only reference-less rows count once each.
func TestComputeFundingTotalsDeduplicatesLinkedLegacyDonors(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	primary := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 1000},
	}}
	legacy := &fakeSource{name: "donation_history", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "X1", Amount: 2000},
		{ProjectID: "p1", DonorID: "X1", Amount: 3000},
		{ProjectID: "p1", Amount: 4000},
	}}
	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{primary, legacy}, testLogger())

	totals, err := reader.ComputeFundingTotals(context.Background(), "p1", GroupByDonor)
	if err != nil {
		t.Fatalf("ComputeFundingTotals returned error: %v", err)
	}
	// a, X1 (once), and the anonymous legacy row.
	if totals.BackerCount != 3 {
		t.Fatalf("BackerCount = %d, want 3", totals.BackerCount)
	}
	if totals.TotalRaised != 10000 {
		t.Fatalf("TotalRaised = %d, want 10000", totals.TotalRaised)
	}
}

// The cache write carries in-flight pending amounts on top of the completed
// total, so a refresh can never reopen headroom a mid-charge donor holds.
func TestRefreshIncludesPendingReservations(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	source := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 30000},
	}}
	pending := &fakePending{total: 40000}
	reader := NewReader(projects, pending, []domain.DonationSource{source}, testLogger())

	if err := reader.Refresh(context.Background(), "p1"); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(projects.refreshes) != 1 {
		t.Fatalf("expected 1 cache write, got %d", len(projects.refreshes))
	}
	got := projects.refreshes[0]
	if got.totalRaised != 70000 {
		t.Fatalf("totalRaised = %d, want 70000 (completed 30000 + pending 40000)", got.totalRaised)
	}
	if got.backerCount != 1 {
		t.Fatalf("backerCount = %d, want 1 (pending rows are not backers yet)", got.backerCount)
	}
}

func TestRefreshFailsWhenPendingSumUnavailable(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	source := &fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{
		{ProjectID: "p1", DonorID: "a", Amount: 100},
	}}
	reader := NewReader(projects, &fakePending{err: errors.New("timeout")}, []domain.DonationSource{source}, testLogger())

	if err := reader.Refresh(context.Background(), "p1"); err == nil {
		t.Fatal("expected error when pending sum is unreadable")
	}
	if len(projects.refreshes) != 0 {
		t.Fatalf("cache writes = %d, want 0 without the pending sum", len(projects.refreshes))
	}
}

func TestRefreshSkipsCacheWriteWhenDegraded(t *testing.T) {
	projects := &fakeProjects{project: testProject()}
	reader := NewReader(projects, &fakePending{}, []domain.DonationSource{
		&fakeSource{name: "alumni_donations", rows: []domain.CompletedDonation{{ProjectID: "p1", DonorID: "a", Amount: 100}}},
		&fakeSource{name: "donation_history", err: errors.New("timeout")},
	}, testLogger())

	err := reader.Refresh(context.Background(), "p1")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if len(projects.refreshes) != 0 {
		t.Fatalf("degraded totals must not be persisted, got %d cache writes", len(projects.refreshes))
	}
}
