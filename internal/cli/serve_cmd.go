package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/backend"
	"github.com/alexanderramin/prdsmith/internal/cli/formatter"
	"github.com/alexanderramin/prdsmith/internal/db"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference record store backend",
		Long: `Serve the records API over a local SQLite database. Bearer tokens are
mapped to owners by serve.tokens in the config file; with no tokens
configured every non-empty token is accepted as its own owner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				return fmt.Errorf("serve needs a resolved configuration")
			}
			cfg := app.Config.Serve
			if addr == "" {
				addr = cfg.Addr
			}

			conn, err := db.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			srv := backend.NewServer(conn, backend.TokenTable(cfg.Tokens), backend.WithLogger(app.logger()))
			fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim(fmt.Sprintf("Serving records on %s (db %s)", addr, cfg.DBPath)))
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default serve.addr)")

	return cmd
}
