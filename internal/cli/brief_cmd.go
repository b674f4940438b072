package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/generation"
	"github.com/alexanderramin/prdsmith/internal/importer"
	"github.com/alexanderramin/prdsmith/internal/llm"
)

func newBriefCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Draft and inspect product briefs",
	}

	cmd.AddCommand(
		newBriefNewCmd(app),
		newBriefListCmd(app),
		newBriefShowCmd(app),
		newBriefImportCmd(app),
		newBriefExportCmd(app),
	)

	return cmd
}

func newBriefNewCmd(app *App) *cobra.Command {
	var brief domain.Brief

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate features and a PRD from a brief",
		Long: `Generate a prioritized feature list and a PRD from a product brief and
store all three. Without --title on a terminal, the brief is collected with
an interactive form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if brief.Title == "" && app.interactive() {
				var goals string
				if err := briefForm(&brief, &goals).Run(); err != nil {
					return err
				}
				brief.Goals = splitGoals(goals)
			}
			if err := brief.Validate(); err != nil {
				return err
			}

			var draft *generation.Draft
			generate := func(ctx context.Context) error {
				var err error
				draft, err = app.Workspace.DraftBrief(ctx, brief)
				return err
			}

			var err error
			if app.interactive() {
				err = formatter.RunWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Generating features and PRD...", generate)
			} else {
				err = generate(cmd.Context())
			}
			if errors.Is(err, llm.ErrMalformedResponse) {
				return fmt.Errorf("the model returned an unusable answer, nothing was saved; try again: %w", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := renderDraft(out, draft); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Saved brief %s with %d features", draft.Brief.ID, len(draft.Features))))
			return nil
		},
	}

	cmd.Flags().StringVar(&brief.Title, "title", "", "Product name")
	cmd.Flags().StringVar(&brief.Description, "description", "", "What the product is and the problem it solves")
	cmd.Flags().StringVar(&brief.TargetUsers, "users", "", "Target users")
	cmd.Flags().StringArrayVar(&brief.Goals, "goal", nil, "Product goal (repeatable)")

	return cmd
}

func newBriefListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List briefs in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			briefs := app.Workspace.Briefs(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecordList(briefs, app.now()))
			return nil
		},
	}
}

func newBriefShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <brief-id>",
		Short: "Show a brief with its features and PRD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := app.Workspace.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDraft(cmd.OutOrStdout(), draft)
		},
	}
}

func newBriefImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a draft from a JSON file without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := importer.LoadDraftFile(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidateDraftFile(file); len(errs) > 0 {
				out := cmd.ErrOrStderr()
				fmt.Fprintln(out, formatter.StyleRed.Render(fmt.Sprintf("Validation failed (%d errors):", len(errs))))
				for _, e := range errs {
					fmt.Fprintln(out, formatter.StyleRed.Render("  - ")+e.Error())
				}
				return fmt.Errorf("%w: %s is not a valid draft file", domain.ErrValidation, args[0])
			}

			in := importer.Convert(file)
			draft, err := app.Workspace.Store(cmd.Context(), in.Brief, in.Features, in.PRD)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Imported brief %s with %d features", draft.Brief.ID, len(draft.Features))))
			return nil
		},
	}
}

func newBriefExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <brief-id>",
		Short: "Write a brief, its features and PRD as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := app.Workspace.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			file, err := importer.Export(draft)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(file, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func renderDraft(out io.Writer, draft *generation.Draft) error {
	brief, err := generation.DecodeBrief(draft.Brief)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.FormatBrief(draft.Brief.ID, brief))

	rows, err := featureRows(draft.Features)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.Header("Features"))
	fmt.Fprintln(out, formatter.FormatFeatureTable(rows))

	if draft.PRD == nil {
		fmt.Fprintln(out, formatter.Dim("No PRD stored."))
		return nil
	}
	prd, err := generation.DecodePRD(draft.PRD)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.RenderBox("PRD", formatter.FormatPRD(prd)))
	return nil
}

func featureRows(records []*domain.Record) ([]formatter.FeatureRow, error) {
	rows := make([]formatter.FeatureRow, 0, len(records))
	for _, rec := range records {
		f, err := generation.DecodeFeature(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding feature %s: %w", rec.ID, err)
		}
		rows = append(rows, formatter.FeatureRow{ID: rec.ID, Feature: f})
	}
	return rows, nil
}
