package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
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

type fakeStore struct {
	projects      map[string]*domain.Project
	donations     []domain.Donation
	notifications []domain.Notification
	updates       []domain.ProjectUpdate
	followers     map[string][]string
	alumni        map[string]*domain.AlumniUser
	schools       map[string]*domain.School
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  make(map[string]*domain.Project),
		followers: make(map[string][]string),
		alumni:    make(map[string]*domain.AlumniUser),
		schools:   make(map[string]*domain.School),
	}
}

// --- domain.ProjectRepository ---

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if p, ok := s.projects[id]; ok {
		snapshot := *p
		return &snapshot, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ListByStatus(_ context.Context, statuses []domain.ProjectStatus, limit int) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range s.projects {
		for _, st := range statuses {
			if p.Status == st {
				out = append(out, *p)
				break
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ReleaseHeadroom(_ context.Context, projectID string, amount int64) error {
	p, ok := s.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentAmount -= amount
	if p.CurrentAmount < 0 {
		p.CurrentAmount = 0
	}
	return nil
}

func (s *fakeStore) RefreshFundingCache(context.Context, string, int64, int) error { return nil }

// --- domain.DonationRepository ---

func (s *fakeStore) Create(_ context.Context, d *domain.Donation) error {
	d.ID = fmt.Sprintf("don-%d", len(s.donations)+1)
	s.donations = append(s.donations, *d)
	return nil
}

// CreatePending mirrors the atomic reserve-and-insert: the headroom guard
// and the pending row land together or not at all.
func (s *fakeStore) CreatePending(_ context.Context, d *domain.Donation) error {
	p, ok := s.projects[d.ProjectID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != domain.ProjectActive {
		return domain.ErrProjectNotActive
	}
	if p.TargetAmount != nil && p.CurrentAmount+d.Amount > *p.TargetAmount {
		return fmt.Errorf("%w: max %d", domain.ErrExceedsRemainingTarget, *p.TargetAmount-p.CurrentAmount)
	}
	p.CurrentAmount += d.Amount
	d.Status = domain.DonationPending
	d.ID = fmt.Sprintf("don-%d", len(s.donations)+1)
	s.donations = append(s.donations, *d)
	return nil
}

func (s *fakeStore) MarkStatus(_ context.Context, id string, status domain.DonationStatus, provider string) error {
	for i := range s.donations {
		if s.donations[i].ID == id {
			s.donations[i].Status = status
			if provider != "" {
				s.donations[i].PaymentProvider = provider
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeStore) SumPendingAmount(_ context.Context, projectID string) (int64, error) {
	var total int64
	for _, d := range s.donations {
		if d.ProjectID == projectID && d.Status == domain.DonationPending {
			total += d.Amount
		}
	}
	return total, nil
}

func (s *fakeStore) GetByPaymentReference(_ context.Context, ref string) (*domain.Donation, error) {
	for _, d := range s.donations {
		if d.PaymentReference == ref {
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ListByDonor(_ context.Context, donorID string, _ int) ([]domain.Donation, error) {
	var out []domain.Donation
	for _, d := range s.donations {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) ListCompletedDonorIDs(_ context.Context, projectID string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range s.donations {
		if d.ProjectID == projectID && d.Status.CountsAsCompleted() {
			if _, ok := seen[d.DonorID]; !ok {
				seen[d.DonorID] = struct{}{}
				out = append(out, d.DonorID)
			}
		}
	}
	return out, nil
}

// --- domain.DonationSource ---

func (s *fakeStore) Name() string { return "alumni_donations" }

func (s *fakeStore) ListCompleted(_ context.Context, projectID string) ([]domain.CompletedDonation, error) {
	var out []domain.CompletedDonation
	for _, d := range s.donations {
		if d.ProjectID == projectID && d.Status.CountsAsCompleted() {
			out = append(out, domain.CompletedDonation{ProjectID: d.ProjectID, DonorID: d.DonorID, Amount: d.Amount})
		}
	}
	return out, nil
}

// --- domain.NotificationRepository ---

func (s *fakeStore) BulkCreate(_ context.Context, ns []domain.Notification) (int, error) {
	for i := range ns {
		ns[i].ID = fmt.Sprintf("n-%d", len(s.notifications)+1)
		s.notifications = append(s.notifications, ns[i])
	}
	return len(ns), nil
}

func (s *fakeStore) ListByRecipient(_ context.Context, recipientID string, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkRead(_ context.Context, id, recipientID string) error {
	for i, n := range s.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- domain.FollowRepository ---

func (s *fakeStore) Follow(_ context.Context, alumniID, schoolID string) error {
	s.followers[schoolID] = append(s.followers[schoolID], alumniID)
	return nil
}

func (s *fakeStore) Unfollow(_ context.Context, alumniID, schoolID string) error { return nil }

func (s *fakeStore) ListFollowerIDs(_ context.Context, schoolID string) ([]string, error) {
	return s.followers[schoolID], nil
}

// --- domain.BookmarkRepository ---

func (s *fakeStore) Add(context.Context, string, string) error    { return nil }
func (s *fakeStore) Remove(context.Context, string, string) error { return nil }
func (s *fakeStore) ListProjectIDs(context.Context, string) ([]string, error) {
	return nil, nil
}

// --- domain.ProjectUpdateRepository ---

func (s *fakeStore) CreateUpdate(_ context.Context, u *domain.ProjectUpdate) error {
	u.ID = fmt.Sprintf("upd-%d", len(s.updates)+1)
	s.updates = append(s.updates, *u)
	return nil
}

func (s *fakeStore) ListByProject(_ context.Context, projectID string) ([]domain.ProjectUpdate, error) {
	var out []domain.ProjectUpdate
	for _, u := range s.updates {
		if u.ProjectID == projectID {
			out = append(out, u)
		}
	}
	return out, nil
}

type updateRepoAdapter struct{ s *fakeStore }

func (a updateRepoAdapter) Create(ctx context.Context, u *domain.ProjectUpdate) error {
	return a.s.CreateUpdate(ctx, u)
}

func (a updateRepoAdapter) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectUpdate, error) {
	return a.s.ListByProject(ctx, projectID)
}

// --- domain.AlumniRepository / SchoolRepository ---

type alumniRepoAdapter struct{ s *fakeStore }

func (a alumniRepoAdapter) GetByID(_ context.Context, id string) (*domain.AlumniUser, error) {
	for _, u := range a.s.alumni {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (a alumniRepoAdapter) GetByUserID(_ context.Context, userID string) (*domain.AlumniUser, error) {
	if u, ok := a.s.alumni[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

type schoolRepoAdapter struct{ s *fakeStore }

func (a schoolRepoAdapter) GetByID(_ context.Context, id string) (*domain.School, error) {
	for _, sc := range a.s.schools {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (a schoolRepoAdapter) GetByUserID(_ context.Context, userID string) (*domain.School, error) {
	if sc, ok := a.s.schools[userID]; ok {
		return sc, nil
	}
	return nil, domain.ErrNotFound
}

type noopRecon struct{}

func (noopRecon) Enqueue(context.Context, *domain.ReconciliationEntry) error { return nil }
func (noopRecon) ListPending(context.Context, int) ([]domain.ReconciliationEntry, error) {
	return nil, nil
}
func (noopRecon) MarkResolved(context.Context, string) error        { return nil }
func (noopRecon) MarkAttempt(context.Context, string, string) error { return nil }

func newTestApp(store *fakeStore) *App {
	logger := zerolog.New(io.Discard)
	alumni := alumniRepoAdapter{store}
	schools := schoolRepoAdapter{store}
	updates := updateRepoAdapter{store}

	reader := ledger.NewReader(store, store, []domain.DonationSource{store}, logger)
	processor := funding.NewProcessor(store, store, noopRecon{}, funding.NewSimulatedGateway(0), reader, nil, logger)
	ranker := feed.NewRanker(store, alumni, nil, 30, 20, 0, logger)
	notifier := fanout.NewNotifier(store, updates, store, store, store, logger)

	return &App{
		Ledger:        reader,
		Processor:     processor,
		Ranker:        ranker,
		Notifier:      notifier,
		Summarizer:    genai.NewSummarizer(nil),
		Assistant:     genai.NewAssistant(nil),
		Projects:      store,
		Donations:     store,
		Notifications: store,
		Follows:       store,
		Bookmarks:     store,
		Updates:       updates,
		Alumni:        alumni,
		Schools:       schools,
		Logger:        logger,
		Validate:      validator.New(),
	}
}

func seedStore() *fakeStore {
	store := newFakeStore()
	target := int64(100000)
	store.projects["p1"] = &domain.Project{
		ID:           "p1",
		SchoolID:     "sch-1",
		Title:        "New science lab",
		Description:  "Modern equipment for senior physics.",
		Category:     []string{"science"},
		TargetAmount: &target,
		Status:       domain.ProjectActive,
	}
	store.alumni["user-1"] = &domain.AlumniUser{ID: "al-1", UserID: "user-1", FullName: "Ama Mensah", Niches: []string{"science"}}
	store.schools["user-2"] = &domain.School{ID: "sch-1", UserID: "user-2", Name: "Achimota"}
	return store
}

func authedRequest(method, path, body, userID, role string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), userID, role))
	return req
}

// withURLParam installs a chi URL parameter the way the router would.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDonationsCreateHappyPath(t *testing.T) {
	store := seedStore()
	app := newTestApp(store)

	req := authedRequest(http.MethodPost, "/v1/donations",
		`{"projectId":"p1","amount":5000}`, "user-1", middleware.RoleAlumni)
	rec := httptest.NewRecorder()
	app.DonationsCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp donationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.DonationCompletedDemo) {
		t.Fatalf("status = %s, want completed_demo", resp.Status)
	}
	if resp.ReceiptNumber == "" {
		t.Fatal("expected a receipt number")
	}
	if store.projects["p1"].CurrentAmount != 5000 {
		t.Fatalf("current_amount = %d, want 5000", store.projects["p1"].CurrentAmount)
	}
}

func TestDonationsCreateOverHeadroom(t *testing.T) {
	store := seedStore()
	store.projects["p1"].CurrentAmount = 95000
	app := newTestApp(store)

	req := authedRequest(http.MethodPost, "/v1/donations",
		`{"projectId":"p1","amount":10000}`, "user-1", middleware.RoleAlumni)
	rec := httptest.NewRecorder()
	app.DonationsCreate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "max 5000") {
		t.Fatalf("body %s should name the remaining headroom", rec.Body.String())
	}
}

func TestDonationsCreateValidation(t *testing.T) {
	app := newTestApp(seedStore())

	req := authedRequest(http.MethodPost, "/v1/donations",
		`{"projectId":"p1","amount":0}`, "user-1", middleware.RoleAlumni)
	rec := httptest.NewRecorder()
	app.DonationsCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFeedGetPersonalized(t *testing.T) {
	app := newTestApp(seedStore())

	req := authedRequest(http.MethodGet, "/v1/feed", "", "user-1", middleware.RoleAlumni)
	rec := httptest.NewRecorder()
	app.FeedGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp feed.Feed
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Personalized || len(resp.Items) != 1 {
		t.Fatalf("feed = %+v, want 1 personalized item", resp)
	}
}

func TestChatCreateCannedFallback(t *testing.T) {
	app := newTestApp(seedStore())

	req := authedRequest(http.MethodPost, "/v1/chat",
		`{"message":"how do donations work"}`, "user-1", middleware.RoleAlumni)
	rec := httptest.NewRecorder()
	app.ChatCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp genai.ChatReply
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Generated || resp.Message == "" {
		t.Fatalf("reply = %+v, want canned non-empty message", resp)
	}
}

func TestUpdatesCreateFansOutToDonorsAndFollowers(t *testing.T) {
	store := seedStore()
	store.donations = []domain.Donation{
		{ID: "d1", DonorID: "al-1", ProjectID: "p1", Status: domain.DonationCompletedDemo, Amount: 100},
	}
	store.followers["sch-1"] = []string{"al-1", "al-2"}
	app := newTestApp(store)

	req := authedRequest(http.MethodPost, "/v1/projects/p1/updates",
		`{"title":"Walls are up","message":"Great progress this week"}`, "user-2", middleware.RoleSchool)
	req = withURLParam(req, "id", "p1")
	rec := httptest.NewRecorder()
	app.UpdatesCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// al-1 donated and follows: notified once. al-2 follows: notified once.
	if len(store.notifications) != 2 {
		t.Fatalf("notifications = %d, want 2 (deduped)", len(store.notifications))
	}
	if len(store.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(store.updates))
	}
}

func TestNotificationsMarkReadScopedToRecipient(t *testing.T) {
	store := seedStore()
	store.notifications = []domain.Notification{{ID: "n-1", RecipientID: "al-other"}}
	app := newTestApp(store)

	req := authedRequest(http.MethodPost, "/v1/notifications/n-1/read", "", "user-1", middleware.RoleAlumni)
	req = withURLParam(req, "id", "n-1")
	rec := httptest.NewRecorder()
	app.NotificationsMarkRead(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for someone else's notification", rec.Code)
	}
}
