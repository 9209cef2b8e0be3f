// Package cmd implements the dbqt command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/app"
	"github.com/peternagy/dbquerytool/internal/config"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/storage"
)

var (
	version = "dev"
	commit  = "unknown"
)

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	app *app.App
	cfg config.Config

	// dialer and secrets override the network dialer and OS keyring.
	dialer  session.Dialer
	secrets storage.SecretStore

	printMetrics bool
}

// NewRootCmd builds the dbqt command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{})
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "dbqt",
		Short: "Query MongoDB and Redis from one workbench",
		Long: `dbqt keeps connection profiles, query history, favorites and display
settings for MongoDB and Redis in one session file, and runs queries and
commands against them.

Quick Start:
  dbqt profile add mongo local --host localhost --port 27017
  dbqt mongo find -p local shop orders '{"status": "open"}'
  dbqt profile add redis cache --host localhost --port 6379
  dbqt redis exec -p cache GET user:1
  dbqt redis keys -p cache 'user:*'

Every flag can also be set as DBQT_<FLAG> (e.g. DBQT_QUERY_TIMEOUT=10),
in .env or .env.local, or in a --config-file.`,
		Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	config.SetupFlags(root)
	root.PersistentFlags().BoolVar(&c.printMetrics, "print-metrics", false, "Write request metrics to stderr on exit")

	root.AddCommand(
		newProfileCmd(c),
		newMongoCmd(c),
		newRedisCmd(c),
		newHistoryCmd(c),
		newFavoriteCmd(c),
		newSettingsCmd(c),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	config.LoadEnvFiles()
	v, err := config.NewViper(cmd)
	if err != nil {
		return err
	}
	c.cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	debug.Init(debug.Options{
		Level:  c.cfg.LogLevel,
		Format: c.cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})

	c.app, err = app.New(app.Options{
		Config:  c.cfg,
		Dialer:  c.dialer,
		Secrets: c.secrets,
	})
	if err != nil {
		return err
	}
	if loadErr := c.app.LoadError(); loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warningStyle.Render("warning:"), loadErr)
	}
	return nil
}

func (c *cli) teardown(cmd *cobra.Command) error {
	if c.app == nil {
		return nil
	}
	if c.printMetrics {
		c.app.WriteMetrics(cmd.ErrOrStderr())
	}
	err := c.app.Close(cmd.Context())
	c.app = nil
	return err
}
