package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/generation"
)

func newPRDCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prd",
		Short: "Inspect and edit generated PRDs",
	}

	cmd.AddCommand(
		newPRDShowCmd(app),
		newPayloadUpdateCmd(app, "prd"),
	)

	return cmd
}

func newPRDShowCmd(app *App) *cobra.Command {
	var briefID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the PRD generated for a brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := app.Workspace.Load(cmd.Context(), briefID)
			if err != nil {
				return err
			}
			if draft.PRD == nil {
				return fmt.Errorf("brief %s has no PRD: %w", briefID, domain.ErrNotFound)
			}
			prd, err := generation.DecodePRD(draft.PRD)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", formatter.TruncID(draft.PRD.ID), formatter.FormatPRD(prd))
			return nil
		},
	}

	cmd.Flags().StringVar(&briefID, "brief", "", "Brief ID")
	_ = cmd.MarkFlagRequired("brief")

	return cmd
}
