// Package cli implements the mokurodb command line front end: archive
// import/export, library listing, deletion, and full-text search over a
// store file on disk.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mokurodb/mokurodb/internal/config"
	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/library"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	cfg   config.Config
	level *slog.LevelVar
}

// NewRootCommand creates the mokurodb root command. The level var is
// shared with the process logger so the configured level takes effect
// before any subcommand runs.
func NewRootCommand(level *slog.LevelVar) *cobra.Command {
	opts := &RootOptions{level: level}

	cmd := &cobra.Command{
		Use:           "mokurodb",
		Short:         "Manage a local store of manga volume archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	o.cfg = cfg
	if o.level != nil {
		o.level.Set(cfg.SlogLevel())
	}
	return nil
}

// openService opens the configured store and wraps it in the library
// service. The returned closer must run before process exit.
func (o *RootOptions) openService() (*library.Service, func(), error) {
	s, err := store.NewSQLiteStoreWithDSN(o.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", o.cfg.DBPath, err)
	}
	closer := func() {
		if err := s.Close(); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}
	return library.New(s, slog.Default()), closer, nil
}
