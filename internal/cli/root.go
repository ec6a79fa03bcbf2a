package cli

import (
	"github.com/spf13/cobra"

	"github.com/eleven-am/schemaviz/internal/logger"
	"github.com/eleven-am/schemaviz/pkg/schemaviz"
)

// Global configuration variables
var (
	configFile    string
	config        *Config
	migrationsDir string
	engine        string
	debug         bool
	verbose       bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schemaviz",
		Short: "schemaviz - Migration history visualizer",
		Long: `schemaviz renders the schema described by a project's migrations and
publishes it as a shareable Atlas Cloud visualization.

Migrations are read from one directory per application, ordered by their
dependencies and converted to SQL before being sent to Atlas Cloud.`,
		Version:      schemaviz.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(cmd)

			var err error
			config, err = LoadConfig(configFile)
			if err != nil {
				return err
			}

			if migrationsDir != "" {
				config.Migrations.Directory = migrationsDir
			}
			if engine != "" {
				config.Database.Engine = engine
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: schemaviz.yaml)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "migrations directory holding one sub-directory per app")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "database engine, e.g. django.db.backends.postgresql")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(newVisualizeCommand())
	rootCmd.AddCommand(newSQLCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func configureLogging(cmd *cobra.Command) {
	level := logger.LevelWarn
	switch {
	case debug:
		level = logger.LevelDebug
	case verbose:
		level = logger.LevelInfo
	}
	logger.Configure(cmd.ErrOrStderr(), level)
}
