package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
)

// newRecordCmd exposes the record coordinator directly, for any kind.
func newRecordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Low-level access to stored records",
	}

	cmd.AddCommand(
		newRecordGetCmd(app),
		newRecordListCmd(app),
		newPayloadUpdateCmd(app, "record"),
		newRemoveCmd(app, "record"),
	)

	return cmd
}

func newRecordGetCmd(app *App) *cobra.Command {
	var require bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a record, preferring the remote copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if require {
				rec, err := app.Records.RequireByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatRecord(rec, app.now()))
				return nil
			}

			rec, ok := app.Records.GetByID(cmd.Context(), args[0])
			if !ok {
				fmt.Fprintln(out, formatter.Dim("Record "+args[0]+" not found."))
				return nil
			}
			fmt.Fprint(out, formatter.FormatRecord(rec, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&require, "require", false, "Fail when the record exists in neither store")

	return cmd
}

func newRecordListCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records under a parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			records := app.Records.ListByParent(cmd.Context(), parentID)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecordList(records, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent ID")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}
