package cli

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
	"github.com/alexanderramin/prdsmith/internal/domain"
)

// huhTheme applies the formatter palette to huh forms.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// briefForm collects a brief interactively. Goals are entered one per line
// into goalsText; use splitGoals to read them back.
func briefForm(b *domain.Brief, goalsText *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Product name").
				Placeholder("Habit tracker").
				Value(&b.Title).
				Validate(func(s string) error {
					probe := domain.Brief{Title: s, Description: "placeholder text"}
					return probe.Validate()
				}),
			huh.NewText().
				Title("What are you building?").
				Description("A few sentences: the problem, the product, the context.").
				Value(&b.Description).
				Validate(func(s string) error {
					probe := domain.Brief{Title: "x", Description: s}
					return probe.Validate()
				}),
			huh.NewInput().
				Title("Target users").
				Placeholder("optional").
				Value(&b.TargetUsers),
			huh.NewText().
				Title("Goals").
				Description("One per line, optional.").
				Value(goalsText),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func splitGoals(text string) []string {
	var goals []string
	for _, line := range strings.Split(text, "\n") {
		if g := strings.TrimSpace(line); g != "" {
			goals = append(goals, g)
		}
	}
	return goals
}
