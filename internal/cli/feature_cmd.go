package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
	"github.com/alexanderramin/prdsmith/internal/domain"
)

func newFeatureCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Inspect and edit generated features",
	}

	cmd.AddCommand(
		newFeatureListCmd(app),
		newPayloadUpdateCmd(app, "feature"),
		newRemoveCmd(app, "feature"),
	)

	return cmd
}

func newFeatureListCmd(app *App) *cobra.Command {
	var briefID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a brief's features by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := app.Workspace.Load(cmd.Context(), briefID)
			if err != nil {
				return err
			}
			rows, err := featureRows(draft.Features)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFeatureTable(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&briefID, "brief", "", "Brief ID")
	_ = cmd.MarkFlagRequired("brief")

	return cmd
}

// newPayloadUpdateCmd builds "<noun> update <id> --set k=v ...", a shallow
// merge of the given keys into the record's payload.
func newPayloadUpdateCmd(app *App, noun string) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Set fields on a %s", noun),
		Example: fmt.Sprintf(`  prdsmith %s update 3f2a --set priority=should
  prdsmith %s update 3f2a --set 'goals=["ship in Q3"]'`, noun, noun),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			rec, err := app.Records.Update(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecord(rec, app.now()))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "key=value to merge into the payload (repeatable)")

	return cmd
}

func newRemoveCmd(app *App, noun string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   fmt.Sprintf("Delete a %s", noun),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Records.Delete(cmd.Context(), args[0]) {
				return fmt.Errorf("%s %s: %w", noun, args[0], domain.ErrNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Deleted "+args[0]))
			return nil
		},
	}
}
