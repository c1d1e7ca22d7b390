package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/pkg/config"
	"github.com/sonarsarthak/EDUManager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewConsole(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "timetable-cli",
		Short:        "Generate conflict-free weekly timetables from a course sheet",
		SilenceUsage: true,
	}
	root.AddCommand(
		generateCmd(cfg, log),
		templateCmd(),
		tokenCmd(cfg),
	)
	return root
}
