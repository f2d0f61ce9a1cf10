package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metalagman/taskcli/internal/command"
	"github.com/spf13/cobra"
)

func shellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read commands from stdin, one per line",
		Long: `Read commands from stdin, one per line, e.g.

  add "buy milk"
  update 0 "buy milk and eggs"
  mark-done 0
  list done

Type "help" for the command list and "exit" to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			s, closeFn, err := openSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()
			return s.serve(cmd, in, out, isTerminal(in))
		},
	}
}

func (s *session) serve(cmd *cobra.Command, in io.Reader, out io.Writer, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			_, _ = fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			writeHelp(out)
			continue
		}

		res, err := s.dispatcher.RunLine(cmd.Context(), line)
		var usage *command.UsageError
		if errors.As(err, &usage) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), usage.Error())
			continue
		}
		if err := s.report(out, res, err); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func writeHelp(w io.Writer) {
	for _, spec := range command.Specs() {
		_, _ = fmt.Fprintf(w, "  %-36s %s\n", strings.TrimSpace(spec.Name+" "+spec.Args), spec.Short)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
