package generation

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

const featureSystemPrompt = `You are a senior product manager turning a product brief into a prioritized feature list.

You MUST output ONLY a JSON object of this shape:
{
  "features": [
    {
      "name": "short feature name",
      "description": "one or two sentences describing the capability",
      "priority": "must" | "should" | "could" | "wont",
      "rationale": "why this priority",
      "effort": "S" | "M" | "L"
    }
  ]
}

Rules:
- Use MoSCoW priorities. At most a third of the features are "must".
- Between 4 and 12 features.
- Names are unique and at most six words.
- No markdown, no commentary outside the JSON.`

const prdSystemPrompt = `You are a senior product manager writing a Product Requirements Document.

You receive a product brief and its prioritized feature list. You MUST output ONLY a JSON object of this shape:
{
  "title": "document title",
  "overview": "one paragraph summary",
  "problem": "the problem being solved and for whom",
  "goals": ["measurable goal"],
  "personas": [{"name": "persona name", "needs": "what they need"}],
  "requirements": [
    {
      "feature": "feature name exactly as given",
      "description": "what the feature must do",
      "acceptance_criteria": ["testable statement"]
    }
  ],
  "metrics": ["success metric"],
  "risks": ["risk"],
  "open_questions": ["question"]
}

Rules:
- One requirement per "must" and "should" feature; omit "wont" features.
- Acceptance criteria are concrete and testable.
- No markdown, no commentary outside the JSON.`

func buildFeaturePrompt(b domain.Brief) string {
	var sb strings.Builder
	writeBrief(&sb, b)
	sb.WriteString("\nList the features for this product.")
	return sb.String()
}

func buildPRDPrompt(b domain.Brief, features []domain.Feature) string {
	var sb strings.Builder
	writeBrief(&sb, b)
	sb.WriteString("\n## Features\n")
	for _, f := range features {
		fmt.Fprintf(&sb, "- [%s] %s: %s", f.Priority, f.Name, f.Description)
		if f.Effort != "" {
			fmt.Fprintf(&sb, " (effort %s)", f.Effort)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nWrite the PRD.")
	return sb.String()
}

func writeBrief(sb *strings.Builder, b domain.Brief) {
	fmt.Fprintf(sb, "## Product: %s\n\n%s\n", b.Title, strings.TrimSpace(b.Description))
	if b.TargetUsers != "" {
		fmt.Fprintf(sb, "\nTarget users: %s\n", b.TargetUsers)
	}
	if len(b.Goals) > 0 {
		sb.WriteString("\nGoals:\n")
		for _, g := range b.Goals {
			fmt.Fprintf(sb, "- %s\n", g)
		}
	}
}
