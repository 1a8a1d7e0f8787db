package relevance

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"backed/internal/domain"
)

// TextGenerator is the slice of the Gemini client the AI scorer needs.
type TextGenerator interface {
	Configured() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// AIScorer rates project relevance with a model assist. Unlike the
// rule-based scorer it is allowed a non-deterministic jitter; it is used by
// the assistant chat path only, never by the feed ranker.
//
// It never fails: every error path degrades to a keyword heuristic.
type AIScorer struct {
	gen    TextGenerator
	logger zerolog.Logger

	// sleep and jitter are swappable for tests.
	sleep  func(time.Duration)
	jitter func(n int) int
}

func NewAIScorer(gen TextGenerator, logger zerolog.Logger) *AIScorer {
	return &AIScorer{
		gen:    gen,
		logger: logger,
		sleep:  time.Sleep,
		jitter: rand.Intn,
	}
}

const scoreRetryBase = 500 * time.Millisecond

// ScoreRelevance rates how well a project matches the given interests.
//
// A direct category match short-circuits to a high confidence band without
// spending a model call. Otherwise the model is asked for a bare number,
// with one retry; any failure falls back to keyword counting.
func (s *AIScorer) ScoreRelevance(ctx context.Context, project domain.Project, interests []string) int {
	if directCategoryMatch(project, interests) {
		return 85 + s.jitter(15)
	}

	if s.gen == nil || !s.gen.Configured() {
		if textMatches(project, interests) {
			return 60
		}
		return 40
	}

	prompt := scorePrompt(project, interests)
	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			s.sleep(scoreRetryBase * time.Duration(attempt))
		}
		raw, err := s.gen.GenerateText(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		if score, ok := parseScore(raw); ok {
			return score
		}
		lastErr = fmt.Errorf("unparseable score %q", raw)
	}

	s.logger.Warn().Err(lastErr).
		Str("project_id", project.ID).
		Msg("relevance: ai scoring failed, using keyword fallback")
	return keywordFallback(project, interests)
}

func directCategoryMatch(project domain.Project, interests []string) bool {
	for _, interest := range interests {
		folded := fold(interest)
		for _, tag := range project.Category {
			if tagsOverlap(folded, fold(tag)) {
				return true
			}
		}
	}
	return false
}

func scorePrompt(project domain.Project, interests []string) string {
	return fmt.Sprintf(
		"Rate how relevant this school fundraising project is to a donor interested in: %s.\n"+
			"Project: %s\nCategories: %s\nDescription: %s\n"+
			"Respond with ONLY a number from 0 to 100.",
		strings.Join(interests, ", "),
		project.Title,
		strings.Join(project.Category, ", "),
		project.Description,
	)
}

// parseScore extracts the digits from a model reply and clamps to [0, 100].
// Replies with no digits at all are rejected so the retry fires.
func parseScore(raw string) (int, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return clamp(n), true
}

// keywordFallback counts interests mentioned anywhere in the project text.
func keywordFallback(project domain.Project, interests []string) int {
	haystack := fold(project.Title + " " + project.Description + " " + strings.Join(project.Category, " "))
	hits := 0
	for _, interest := range interests {
		folded := fold(interest)
		if folded != "" && strings.Contains(haystack, folded) {
			hits++
		}
	}
	switch {
	case hits >= 2:
		return 65
	case hits == 1:
		return 55
	default:
		return 45
	}
}
