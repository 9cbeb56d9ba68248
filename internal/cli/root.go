// Package cli provides the matchctl command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foundmatch/internal/bootstrap"
	"github.com/kailas-cloud/foundmatch/internal/config"
	dbRedis "github.com/kailas-cloud/foundmatch/internal/db/redis"
	logpkg "github.com/kailas-cloud/foundmatch/internal/logger"
	"github.com/kailas-cloud/foundmatch/internal/version"
)

var (
	// Global flags
	env     string
	verbose bool

	// Loaded in PersistentPreRunE
	cfg    config.Config
	logger *zap.Logger

	// Connected lazily by commands that need Redis
	store *dbRedis.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Operate the foundmatch engine",
	Long: `matchctl scores lost/found pairs and re-runs matching outside the API server.

Use 'score' to tune weights and thresholds against sample records, and 'run'
to re-run matching for a stored found item.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		} else if level == "" {
			level = "warn"
		}
		logger, err = logpkg.NewLogger(env, level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			store.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// connect opens the Redis store once per invocation.
func connect(ctx context.Context) (*dbRedis.Store, error) {
	if store != nil {
		return store, nil
	}
	s, err := bootstrap.Store(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	store = s
	return store, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(), "config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}
