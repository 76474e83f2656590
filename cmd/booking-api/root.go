package main

import (
	"github.com/dtapi/booking-coordinator/internal/config"
	"github.com/dtapi/booking-coordinator/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "booking-api",
	Short:        "Coordinates interpretation bookings between customers and translators.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newTokenCmd())
}

// setup reads the environment configuration and installs the global logger.
// The returned func flushes the logger.
func setup() (*config.Config, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
	undo := zap.ReplaceGlobals(logger)

	return cfg, func() {
		_ = logger.Sync()
		undo()
	}, nil
}
