package main

import (
	"os"

	"github.com/metalagman/taskcli/internal/config"
	"github.com/spf13/cobra"
)

// loadConfig resolves the configuration for cmd. The config file is only
// required when --config was given explicitly.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	required := cmd.Flags().Changed("config")
	cfg, err := config.Load(opts.v, opts.cfgFile, required)
	if err != nil {
		return config.Config{}, err
	}
	if opts.noColor || os.Getenv("NO_COLOR") != "" {
		cfg.Output.Color = false
	}
	return cfg, nil
}
