package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"holidaze/internal/infra/config"
	"holidaze/internal/infra/obs"
)

var version = "dev"

type globalFlags struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	root := &cobra.Command{
		Use:           "holidaze",
		Short:         "Holidaze booking backend: availability, pricing and booking submission",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newAvailabilityCmd(&flags))
	root.AddCommand(newQuoteCmd(&flags))
	root.AddCommand(newBookCmd(&flags))
	return root
}

// loadConfig reads .env files and the environment. CLI commands log to
// stderr so their stdout stays machine readable.
func loadConfig(flags *globalFlags, cli bool) (config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(flags.envFiles...); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if cli {
		return cfg, obs.NewLoggerTo(os.Stderr, cfg.Env), nil
	}
	return cfg, obs.NewLogger(cfg.Env), nil
}
