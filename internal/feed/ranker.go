package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"backed/internal/domain"
	"backed/internal/relevance"
)

// Item is one ranked project in a feed.
type Item struct {
	Project        domain.Project `json:"project"`
	RelevanceScore int            `json:"relevanceScore"`
}

// Feed is the ranked result for one donor.
type Feed struct {
	Items        []Item `json:"items"`
	Personalized bool   `json:"personalized"`
	// Degraded marks a fallback feed produced because the donor profile
	// could not be read; Message explains it to the client.
	Degraded bool   `json:"degraded,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Ranker builds personalized project feeds. Scoring is the deterministic
// rule-based tier only; the ranker never calls the model, so identical
// inputs always produce the identical feed.
type Ranker struct {
	projects domain.ProjectRepository
	alumni   domain.AlumniRepository
	scorer   relevance.RuleBasedScorer
	cache    *redis.Client // nil disables caching
	logger   zerolog.Logger

	candidateLimit int
	resultLimit    int
	cacheTTL       time.Duration
}

// NewRanker wires a feed ranker. cache may be nil.
func NewRanker(
	projects domain.ProjectRepository,
	alumni domain.AlumniRepository,
	cache *redis.Client,
	candidateLimit, resultLimit int,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *Ranker {
	return &Ranker{
		projects:       projects,
		alumni:         alumni,
		cache:          cache,
		logger:         logger,
		candidateLimit: candidateLimit,
		resultLimit:    resultLimit,
		cacheTTL:       cacheTTL,
	}
}

var candidateStatuses = []domain.ProjectStatus{domain.ProjectActive, domain.ProjectFunded}

// BuildFeed assembles the ranked feed for one alumni donor.
//
// A donor with no declared interests gets the newest projects in reverse
// chronological order at a flat neutral score, marked unpersonalized. A
// failed profile read degrades to the same fallback with an explanatory
// message rather than erroring; only a failed candidate fetch is fatal.
func (r *Ranker) BuildFeed(ctx context.Context, alumniUserID string) (*Feed, error) {
	if cached := r.fromCache(ctx, alumniUserID); cached != nil {
		return cached, nil
	}

	candidates, err := r.projects.ListByStatus(ctx, candidateStatuses, r.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}

	profile, err := r.alumni.GetByID(ctx, alumniUserID)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("alumni_user_id", alumniUserID).
			Msg("feed: profile unavailable, serving unpersonalized fallback")
		feed := r.chronological(candidates)
		feed.Degraded = true
		feed.Message = "Showing latest projects while personalization is unavailable."
		return feed, nil
	}

	var feed *Feed
	if len(profile.Niches) == 0 {
		feed = r.chronological(candidates)
	} else {
		feed = r.ranked(candidates, relevance.Profile{
			Interests: profile.Niches,
			SchoolID:  profile.SchoolID,
		})
	}

	r.toCache(ctx, alumniUserID, feed)
	return feed, nil
}

func (r *Ranker) ranked(candidates []domain.Project, profile relevance.Profile) *Feed {
	items := make([]Item, 0, len(candidates))
	for _, p := range candidates {
		items = append(items, Item{Project: p, RelevanceScore: r.scorer.Score(p, profile)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RelevanceScore != items[j].RelevanceScore {
			return items[i].RelevanceScore > items[j].RelevanceScore
		}
		return items[i].Project.CreatedAt.After(items[j].Project.CreatedAt)
	})
	return &Feed{Items: truncate(items, r.resultLimit), Personalized: true}
}

// chronological is the neutral feed: newest first, flat score.
func (r *Ranker) chronological(candidates []domain.Project) *Feed {
	items := make([]Item, 0, len(candidates))
	for _, p := range candidates {
		items = append(items, Item{Project: p, RelevanceScore: 50})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Project.CreatedAt.After(items[j].Project.CreatedAt)
	})
	return &Feed{Items: truncate(items, r.resultLimit), Personalized: false}
}

func truncate(items []Item, limit int) []Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cacheKey(alumniUserID string) string {
	return "feed:" + alumniUserID
}

func (r *Ranker) fromCache(ctx context.Context, alumniUserID string) *Feed {
	if r.cache == nil || r.cacheTTL <= 0 {
		return nil
	}
	raw, err := r.cache.Get(ctx, cacheKey(alumniUserID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn().Err(err).Msg("feed: cache read failed")
		}
		return nil
	}
	var feed Feed
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil
	}
	return &feed
}

func (r *Ranker) toCache(ctx context.Context, alumniUserID string, feed *Feed) {
	if r.cache == nil || r.cacheTTL <= 0 || feed.Degraded {
		return
	}
	raw, err := json.Marshal(feed)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(alumniUserID), raw, r.cacheTTL).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("feed: cache write failed")
	}
}
