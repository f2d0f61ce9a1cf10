package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metalagman/taskcli/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func initCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize task-cli in the current directory",
		Long:  "Initialize task-cli by installing a default config and creating an empty task store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := opts.cfgFile
			if _, err := os.Stat(configPath); err == nil {
				log.Info().Str("path", configPath).Msg("config already exists, skipping")
			} else {
				if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
					return fmt.Errorf("create config dir: %w", err)
				}
				d := config.Default()
				defaultConfig := map[string]any{
					"storage": map[string]any{
						"driver":       d.Storage.Driver,
						"path":         d.Storage.Path,
						"lock":         d.Storage.Lock,
						"lock_timeout": d.Storage.LockTimeout.String(),
					},
					"output": map[string]any{
						"format": d.Output.Format,
						"color":  d.Output.Color,
					},
				}
				data, err := json.MarshalIndent(defaultConfig, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal default config: %w", err)
				}
				if err := os.WriteFile(configPath, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write default config: %w", err)
				}
				log.Info().Str("path", configPath).Msg("installed default config")
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			s, closeFn, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			if _, err := s.store.Load(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "task-cli initialized, tasks stored in %s\n", s.store.Path())
			return err
		},
	}
}
