package command

import (
	"errors"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// SplitLine splits a command line into arguments. Single and double quotes
// group words; inside double quotes a backslash escapes the next rune.
func SplitLine(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
