package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"backed/internal/domain"
)

// ProjectSummary is the donor-facing digest of a project page.
type ProjectSummary struct {
	QuickSummary    string   `json:"quickSummary"`
	KeyHighlights   []string `json:"keyHighlights"`
	ImpactStatement string   `json:"impactStatement"`
	FundingInsight  string   `json:"fundingInsight"`
	// Generated is false when the deterministic fallback produced the
	// summary instead of the model.
	Generated bool `json:"generated"`
}

// Summarizer produces project summaries with a model assist and a
// deterministic fallback. Summarize never fails: any model problem degrades
// to the fallback built from the project's own fields.
type Summarizer struct {
	gen TextGenerator

	retries   int
	retryBase time.Duration
}

func NewSummarizer(gen TextGenerator) *Summarizer {
	return &Summarizer{gen: gen, retries: 2, retryBase: time.Second}
}

const maxHighlights = 4

// Summarize builds the digest for one project.
func (s *Summarizer) Summarize(ctx context.Context, project domain.Project) ProjectSummary {
	if s.gen == nil || !s.gen.Configured() {
		return fallbackSummary(project)
	}

	raw, err := RetryText(ctx, s.gen, summaryPrompt(project), s.retries, s.retryBase)
	if err != nil {
		return fallbackSummary(project)
	}
	parsed, err := parsePayload[ProjectSummary](raw)
	if err != nil || strings.TrimSpace(parsed.QuickSummary) == "" {
		return fallbackSummary(project)
	}

	if len(parsed.KeyHighlights) > maxHighlights {
		parsed.KeyHighlights = parsed.KeyHighlights[:maxHighlights]
	}
	fb := fallbackSummary(project)
	if strings.TrimSpace(parsed.ImpactStatement) == "" {
		parsed.ImpactStatement = fb.ImpactStatement
	}
	if strings.TrimSpace(parsed.FundingInsight) == "" {
		parsed.FundingInsight = fb.FundingInsight
	}
	if len(parsed.KeyHighlights) == 0 {
		parsed.KeyHighlights = fb.KeyHighlights
	}
	parsed.Generated = true
	return parsed
}

func summaryPrompt(project domain.Project) string {
	sb := &strings.Builder{}
	sb.WriteString("Summarize this school fundraising project for a potential donor. ")
	sb.WriteString("Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"quickSummary":string,"keyHighlights":string[],"impactStatement":string,"fundingInsight":string}`)
	sb.WriteString(". At most 4 highlights, each under 12 words.\n")
	fmt.Fprintf(sb, "Title: %s\n", project.Title)
	fmt.Fprintf(sb, "Description: %s\n", project.Description)
	if len(project.Category) > 0 {
		fmt.Fprintf(sb, "Categories: %s\n", strings.Join(project.Category, ", "))
	}
	if project.TargetAmount != nil {
		fmt.Fprintf(sb, "Raised %d of %d (minor units) from %d backers.\n",
			project.CurrentAmount, *project.TargetAmount, project.BackersCount)
	} else {
		fmt.Fprintf(sb, "Raised %d (minor units) from %d backers, no fixed target.\n",
			project.CurrentAmount, project.BackersCount)
	}
	return sb.String()
}

var titleCaser = cases.Title(language.English)

// fallbackSummary assembles a structured digest from the project's own
// fields. Deterministic so the endpoint stays useful with the model down.
func fallbackSummary(project domain.Project) ProjectSummary {
	summary := firstSentence(project.Description)
	if summary == "" {
		summary = fmt.Sprintf("%s is raising funds for its school community.", project.Title)
	}

	var highlights []string
	for _, tag := range project.Category {
		if len(highlights) == maxHighlights {
			break
		}
		highlights = append(highlights, titleCaser.String(tag))
	}
	if len(highlights) == 0 {
		highlights = append(highlights, titleCaser.String(project.Title))
	}

	impact := strings.TrimSpace(project.Objectives)
	if impact == "" {
		impact = fmt.Sprintf("Every contribution moves %s closer to its goal.", project.Title)
	}

	insight := fundingInsight(project)

	return ProjectSummary{
		QuickSummary:    summary,
		KeyHighlights:   highlights,
		ImpactStatement: impact,
		FundingInsight:  insight,
	}
}

func fundingInsight(project domain.Project) string {
	if project.TargetAmount == nil || *project.TargetAmount == 0 {
		return fmt.Sprintf("%d backers have contributed so far.", project.BackersCount)
	}
	pct := project.CurrentAmount * 100 / *project.TargetAmount
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%d%% funded with support from %d backers.", pct, project.BackersCount)
}

func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexAny(trimmed, ".!?"); idx >= 0 {
		return trimmed[:idx+1]
	}
	return trimmed
}
