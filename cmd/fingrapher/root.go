package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/fingrapher"
	"github.com/siherrmann/fingrapher/helper"
	"github.com/siherrmann/fingrapher/model"
	"github.com/spf13/cobra"
)

var (
	configFile string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fingrapher",
	Short: "Answer questions about public companies from filings and a knowledge graph",
	Long: `fingrapher combines semantic search over filing passages with a
company knowledge graph and answers questions with cited sources.

Configuration is read from the --config YAML file, a .env file and the
environment, in that order of precedence from lowest to highest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(askCmd, addDocumentCmd, documentsCmd, reindexCmd, mergeCmd, companyCmd, statsCmd, healthCmd)
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// openFinGrapher loads the configuration and connects all stores. Logs go
// to stderr so that stdout only carries results.
func openFinGrapher(cmd *cobra.Command, opts ...fingrapher.Option) (*fingrapher.FinGrapher, error) {
	config, err := model.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts = append([]fingrapher.Option{
		fingrapher.WithLogger(helper.NewLogger(os.Stderr, level)),
		fingrapher.WithRegisterer(prometheus.DefaultRegisterer),
	}, opts...)
	return fingrapher.NewFinGrapher(cmd.Context(), config, opts...)
}
