package relevance

import (
	"strings"

	"golang.org/x/text/cases"

	"backed/internal/domain"
)

// Profile is the donor-side input to scoring: the declared interest tags and
// the school the donor graduated from.
type Profile struct {
	Interests []string
	SchoolID  *string
}

var foldCaser = cases.Fold()

func fold(s string) string {
	return strings.TrimSpace(foldCaser.String(s))
}

// tagsOverlap reports containment either direction between a folded interest
// and a folded category tag. "tech" matches "technology" and vice versa.
func tagsOverlap(interest, tag string) bool {
	if interest == "" || tag == "" {
		return false
	}
	return strings.Contains(tag, interest) || strings.Contains(interest, tag)
}

// RuleBasedScorer assigns relevance scores from profile/project data alone.
// Fully deterministic: the same inputs always produce the same score, which
// is what keeps the personalized feed stable across refreshes.
type RuleBasedScorer struct{}

// Score rates a project for a profile on a 0–100 scale.
//
// Category overlap scores 60 plus 15 per matching interest, capped at 95.
// Without category overlap, an interest appearing in the title or description
// scores 55, otherwise the floor of 30. The donor's own school adds 10 and a
// still-running campaign adds 5, each application clamped to 100.
func (RuleBasedScorer) Score(project domain.Project, profile Profile) int {
	score := baseScore(project, profile.Interests)

	if profile.SchoolID != nil && *profile.SchoolID == project.SchoolID {
		score = clamp(score + 10)
	}
	if project.Status == domain.ProjectActive && project.DaysRemaining != nil && *project.DaysRemaining > 0 {
		score = clamp(score + 5)
	}
	return score
}

func baseScore(project domain.Project, interests []string) int {
	matches := 0
	for _, interest := range interests {
		folded := fold(interest)
		for _, tag := range project.Category {
			if tagsOverlap(folded, fold(tag)) {
				matches++
				break
			}
		}
	}
	if matches > 0 {
		bonus := matches * 15
		if bonus > 35 {
			bonus = 35
		}
		return 60 + bonus
	}

	if textMatches(project, interests) {
		return 55
	}
	return 30
}

// textMatches reports whether any interest appears in the project's title or
// description.
func textMatches(project domain.Project, interests []string) bool {
	haystack := fold(project.Title + " " + project.Description)
	for _, interest := range interests {
		folded := fold(interest)
		if folded != "" && strings.Contains(haystack, folded) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
