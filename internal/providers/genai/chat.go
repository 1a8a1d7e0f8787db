package genai

import (
	"context"
	"fmt"
	"strings"

	"backed/internal/domain"
)

// ChatReply is one assistant answer.
type ChatReply struct {
	Message string `json:"message"`
	// Generated is false for canned fallback answers.
	Generated bool `json:"generated"`
}

// Assistant answers donor questions about the platform and the currently
// listed projects. Bounded context: at most maxContextProjects projects are
// included in the prompt regardless of how many are live.
type Assistant struct {
	gen TextGenerator
}

func NewAssistant(gen TextGenerator) *Assistant {
	return &Assistant{gen: gen}
}

const maxContextProjects = 10

// Answer responds to one donor message. Never fails: with the model down or
// unconfigured it routes to a canned answer by keyword.
func (a *Assistant) Answer(ctx context.Context, message string, projects []domain.Project) ChatReply {
	if a.gen == nil || !a.gen.Configured() {
		return cannedReply(message)
	}

	raw, err := a.gen.GenerateText(ctx, chatPrompt(message, projects))
	if err != nil || strings.TrimSpace(raw) == "" {
		return cannedReply(message)
	}
	return ChatReply{Message: strings.TrimSpace(trimCodeFence(raw)), Generated: true}
}

func chatPrompt(message string, projects []domain.Project) string {
	sb := &strings.Builder{}
	sb.WriteString("You are the assistant for a school crowdfunding platform where alumni fund projects at their former schools. ")
	sb.WriteString("Answer briefly and concretely. Recommend projects from the list below when relevant; never invent projects.\n\n")

	count := len(projects)
	if count > maxContextProjects {
		count = maxContextProjects
	}
	if count > 0 {
		sb.WriteString("Current projects:\n")
		for _, p := range projects[:count] {
			fmt.Fprintf(sb, "- %s (%s)", p.Title, strings.Join(p.Category, ", "))
			if p.TargetAmount != nil {
				fmt.Fprintf(sb, ", %d of %d raised", p.CurrentAmount, *p.TargetAmount)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(sb, "Donor question: %s", strings.TrimSpace(message))
	return sb.String()
}

// cannedReply routes a question to a static answer by keyword.
func cannedReply(message string) ChatReply {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "interest"):
		return ChatReply{Message: "Set your interests in your profile and your feed will rank matching projects first. You can change them any time."}
	case strings.Contains(lower, "donat"):
		return ChatReply{Message: "Open any project and tap Donate. You will get a receipt right away, and the project's funding bar updates as soon as the payment settles."}
	case strings.Contains(lower, "how"):
		return ChatReply{Message: "Browse projects from schools you care about, follow schools to get their updates, and donate to the projects you want to see happen."}
	default:
		return ChatReply{Message: "I can help you find projects, explain how donations work, or point you to schools to follow. What would you like to know?"}
	}
}
