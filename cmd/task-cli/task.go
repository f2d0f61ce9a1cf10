package main

import (
	"io"
	"strings"

	"github.com/metalagman/taskcli/internal/command"
	"github.com/metalagman/taskcli/internal/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// taskCmds returns one subcommand per dispatcher command.
func taskCmds(opts *rootOptions) []*cobra.Command {
	specs := command.Specs()
	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		name := spec.Name
		cmd := &cobra.Command{
			Use:   strings.TrimSpace(name + " " + spec.Args),
			Short: spec.Short,
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTaskCommand(cmd, opts, append([]string{name}, args...))
			},
		}
		if name == command.List {
			cmd.Aliases = []string{"ls"}
			cmd.ValidArgs = []string{"todo", "in-progress", "done"}
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func runTaskCommand(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	s, closeFn, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := s.dispatcher.Run(cmd.Context(), args)
	return s.report(cmd.OutOrStdout(), res, err)
}

// report renders a result. Expected conditions such as a missing id are shown
// as a message and do not fail the command.
func (s *session) report(w io.Writer, res command.Result, err error) error {
	if err != nil {
		if msg, ok := render.Notice(err); ok {
			log.Debug().Err(err).Msg("command not applied")
			return s.renderer.Notice(w, msg)
		}
		return err
	}
	return s.renderer.Result(w, res)
}
