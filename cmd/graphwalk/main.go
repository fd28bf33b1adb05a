// Package main provides the graphwalk CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/orneryd/graphwalk/pkg/config"
	"github.com/orneryd/graphwalk/pkg/logging"
	"github.com/orneryd/graphwalk/pkg/traverse"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// app carries state resolved by the root command before any subcommand runs.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "graphwalk",
		Short: "graphwalk - depth-first and breadth-first search over matrices, files and websites",
		Long: `graphwalk explores graph-shaped data with one search engine and
interchangeable expansion backends:

  • matrix  adjacency matrices from CSV or the Badger store
  • files   directories of linked text files
  • web     websites reached through hyperlinks`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().String("mode", "", "Search mode (dfs, bfs)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "graphwalk v%s (%s)\n", version, commit)
		},
	})
	rootCmd.AddCommand(newMatrixCmd(a))
	rootCmd.AddCommand(newFilesCmd(a))
	rootCmd.AddCommand(newWebCmd(a))
	rootCmd.AddCommand(newRevealCmd(a))

	return rootCmd
}

// init loads configuration, applies persistent flags and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v, _ := cmd.Flags().GetString("mode"); v != "" {
		cfg.Search.Mode = v
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.NewWithOutput(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log.WithField("config", cfg.String()).Debug("configuration loaded")

	a.cfg = cfg
	a.log = log
	return nil
}

// search runs the configured traversal and prints the discovery order.
func (a *app) search(cmd *cobra.Command, exp traverse.Expander[string], start string) (*traverse.Searcher[string], error) {
	mode := a.cfg.SearchMode()
	s := traverse.New[string](exp, traverse.WithLogger(logging.Component(a.log, "traverse")))

	err := s.Search(cmd.Context(), mode, start)
	a.log.WithFields(logrus.Fields{
		"mode":    mode.String(),
		"start":   start,
		"visited": s.Len(),
	}).Info("search finished")

	out := cmd.OutOrStdout()
	for _, n := range s.Order() {
		fmt.Fprintln(out, n)
	}
	if err != nil {
		return s, fmt.Errorf("%s search from %s: %w", mode, start, err)
	}
	return s, nil
}
