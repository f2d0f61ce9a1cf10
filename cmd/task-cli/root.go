package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/metalagman/taskcli/internal/config"
	"github.com/metalagman/taskcli/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	debug   bool
	noColor bool
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	cmd := &cobra.Command{
		Use:           "task-cli",
		Short:         "task-cli tracks tasks in a local JSON file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(opts.debug)
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Msg("skipping .env")
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", config.DefaultConfigPath, "config file path")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.String("file", config.DefaultJSONPath, "task storage path")
	flags.String("driver", config.DriverJSON, "storage driver (json|sqlite)")
	flags.StringP("format", "o", config.FormatText, "output format (text|json|yaml)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	for key, flag := range map[string]string{
		"storage.path":   "file",
		"storage.driver": "driver",
		"output.format":  "format",
	} {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind %s flag: %v", flag, err))
		}
	}

	for _, sub := range taskCmds(opts) {
		cmd.AddCommand(sub)
	}
	cmd.AddCommand(shellCmd(opts))
	cmd.AddCommand(initCmd(opts))
	return cmd
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}
