// Package cli implements the prdsmith command tree.
package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/prdsmith/internal/config"
	"github.com/alexanderramin/prdsmith/internal/generation"
	"github.com/alexanderramin/prdsmith/internal/service"
)

// App holds the services CLI commands run against.
type App struct {
	Records   service.RecordService
	Workspace *generation.Workspace
	Config    *config.Config
	Logger    *slog.Logger

	// Init wires Records, Workspace and Logger from the resolved
	// configuration. It runs before any command when Records is unset.
	Init func(cfg *config.Config) error

	// IsInteractive reports whether prompts and spinners may be shown.
	IsInteractive func() bool

	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (a *App) wire(cmd *cobra.Command) error {
	if a.Records != nil {
		return nil
	}
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.Config = cfg
	if a.Init == nil {
		return errors.New("no services configured")
	}
	return a.Init(cfg)
}

// NewRootCmd creates the top-level "prdsmith" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "prdsmith",
		Short:         "Turn a product brief into prioritized features and a PRD",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.wire(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newBriefCmd(app),
		newFeatureCmd(app),
		newPRDCmd(app),
		newRecordCmd(app),
		newServeCmd(app),
	)

	return root
}
