package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// FeatureRow is a decoded feature with the id of the record holding it.
type FeatureRow struct {
	ID      string
	Feature domain.Feature
}

// FormatFeatureTable renders features in the order given.
func FormatFeatureTable(rows []FeatureRow) string {
	if len(rows) == 0 {
		return Dim("No features.") + "\n"
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		effort := string(r.Feature.Effort)
		if effort == "" {
			effort = "-"
		}
		cells = append(cells, []string{
			TruncID(r.ID),
			PriorityPill(r.Feature.Priority),
			r.Feature.Name,
			Dim(effort),
		})
	}
	return RenderTable([]string{"ID", "PRIORITY", "FEATURE", "EFFORT"}, cells)
}

// FormatBrief renders the brief a draft was generated from.
func FormatBrief(id string, b domain.Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n\n", Bold(b.Title), TruncID(id))
	sb.WriteString(StyleFg.Render(b.Description) + "\n")
	if b.TargetUsers != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", Dim("Target users:"), b.TargetUsers)
	}
	if len(b.Goals) > 0 {
		sb.WriteString("\n" + Dim("Goals:") + "\n")
		sb.WriteString(Bullets(b.Goals))
	}
	return RenderBox("Brief", sb.String())
}

// FormatPRD renders a PRD as titled sections. Empty optional sections are
// left out.
func FormatPRD(p domain.PRD) string {
	var b strings.Builder
	b.WriteString(Bold(p.Title) + "\n\n")
	b.WriteString(p.Overview + "\n")

	section := func(title, body string) {
		b.WriteString("\n" + Header(title) + "\n" + body)
	}
	if p.Problem != "" {
		section("Problem", p.Problem+"\n")
	}
	if len(p.Goals) > 0 {
		section("Goals", Bullets(p.Goals))
	}
	if len(p.Personas) > 0 {
		var sb strings.Builder
		for _, persona := range p.Personas {
			fmt.Fprintf(&sb, "  %s %s\n", StylePurple.Render(persona.Name+":"), persona.Needs)
		}
		section("Personas", sb.String())
	}

	var reqs strings.Builder
	for i, r := range p.Requirements {
		fmt.Fprintf(&reqs, "%s %s\n", StyleHeader.Render(fmt.Sprintf("%d.", i+1)), Bold(r.Feature))
		if r.Description != "" {
			fmt.Fprintf(&reqs, "   %s\n", r.Description)
		}
		for _, ac := range r.AcceptanceCriteria {
			fmt.Fprintf(&reqs, "   %s %s\n", StyleGreen.Render("✓"), ac)
		}
	}
	section("Requirements", reqs.String())

	if len(p.Metrics) > 0 {
		section("Success metrics", Bullets(p.Metrics))
	}
	if len(p.Risks) > 0 {
		section("Risks", Bullets(p.Risks))
	}
	if len(p.OpenQuestions) > 0 {
		section("Open questions", Bullets(p.OpenQuestions))
	}
	return b.String()
}
