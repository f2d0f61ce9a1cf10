// Package render formats command results for the terminal.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/metalagman/taskcli/internal/command"
	"github.com/metalagman/taskcli/internal/task"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultGlyph is shown for statuses without a dedicated glyph.
const DefaultGlyph = "•"

var glyphs = map[task.Status]string{
	task.StatusTodo:       "📝",
	task.StatusInProgress: "⏳",
	task.StatusDone:       "✅",
}

// Glyph returns the marker shown in front of a task with the given status.
func Glyph(s task.Status) string {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return DefaultGlyph
}

// Line formats a task as "<glyph> <description> (ID: <id>)".
func Line(t task.Task) string {
	return fmt.Sprintf("%s %s (ID: %d)", Glyph(t.Status), t.Description, t.ID)
}

// Lines formats every task with Line.
func Lines(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Line(t))
	}
	return out
}

// Message returns the confirmation text for a command result.
func Message(res command.Result) string {
	switch res.Command {
	case command.Add:
		return fmt.Sprintf("New task with ID %d added.", res.Task.ID)
	case command.Update:
		return fmt.Sprintf("Task with ID %d updated.", res.Task.ID)
	case command.Delete:
		return fmt.Sprintf("Task with ID %d has been deleted.", res.Task.ID)
	case command.MarkTodo, command.MarkInProgress, command.MarkDone:
		tr := res.Transition
		return fmt.Sprintf("Task %d status updated from '%s' to '%s'.", tr.Task.ID, tr.From, tr.To)
	case command.List:
		if len(res.Tasks) > 0 {
			return strings.Join(Lines(res.Tasks), "\n")
		}
		if res.Filter != "" {
			return fmt.Sprintf("No tasks found with status '%s'.", res.Filter)
		}
		return "No tasks available."
	case command.Show:
		return Line(res.Task)
	}
	return ""
}

// Notice returns the message shown for expected, recoverable conditions:
// an empty store, a missing id, or an invalid status. ok is false for any
// other error.
func Notice(err error) (msg string, ok bool) {
	var (
		notFound *task.NotFoundError
		invalid  *task.InvalidStatusError
	)
	switch {
	case errors.As(err, &notFound):
		if notFound.Empty {
			return "There are currently no tasks.", true
		}
		return fmt.Sprintf("No task found with ID %d.", notFound.ID), true
	case errors.As(err, &invalid):
		return fmt.Sprintf("Invalid status '%s'. Please use one of: %s.", invalid.Value, statusList()), true
	case errors.Is(err, task.ErrNoTasks):
		return "There are currently no tasks.", true
	}
	return "", false
}

func statusList() string {
	names := make([]string, 0, len(task.Statuses()))
	for _, s := range task.Statuses() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// Renderer writes results in a fixed format.
type Renderer struct {
	format string
	color  bool
	styles styles
}

// New creates a renderer for format. Colour only applies to text output.
func New(format string, color bool) (*Renderer, error) {
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Renderer{format: format, color: color, styles: newStyles()}, nil
}

// Result writes a command result.
func (r *Renderer) Result(w io.Writer, res command.Result) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, payload(res))
	case FormatYAML:
		return writeYAML(w, payload(res))
	}
	return r.writeText(w, res)
}

// Notice writes the message for a recoverable condition.
func (r *Renderer) Notice(w io.Writer, msg string) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, map[string]string{"message": msg})
	case FormatYAML:
		return writeYAML(w, map[string]string{"message": msg})
	}
	if r.color {
		msg = r.styles.notice.Render(msg)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func (r *Renderer) writeText(w io.Writer, res command.Result) error {
	var text string
	switch {
	case !r.color:
		text = Message(res)
		if res.Command == command.Show {
			text = detail(res.Task, text)
		}
	case res.Command == command.List && len(res.Tasks) > 0:
		lines := make([]string, 0, len(res.Tasks))
		for _, t := range res.Tasks {
			lines = append(lines, r.styles.line(t))
		}
		text = strings.Join(lines, "\n")
	case res.Command == command.Show:
		text = detail(res.Task, r.styles.line(res.Task))
	default:
		text = r.styles.success.Render(Message(res))
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func detail(t task.Task, head string) string {
	return fmt.Sprintf("%s\n  status:  %s\n  created: %s\n  updated: %s",
		head, t.Status, t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339))
}

type transitionView struct {
	Task task.Task   `json:"task" yaml:"task"`
	From task.Status `json:"from" yaml:"from"`
	To   task.Status `json:"to"   yaml:"to"`
}

func payload(res command.Result) any {
	switch res.Command {
	case command.List:
		if res.Tasks == nil {
			return []task.Task{}
		}
		return res.Tasks
	case command.MarkTodo, command.MarkInProgress, command.MarkDone:
		return transitionView{Task: res.Transition.Task, From: res.Transition.From, To: res.Transition.To}
	}
	return res.Task
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

type styles struct {
	status  map[task.Status]lipgloss.Style
	id      lipgloss.Style
	success lipgloss.Style
	notice  lipgloss.Style
}

var (
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

func newStyles() styles {
	return styles{
		status: map[task.Status]lipgloss.Style{
			task.StatusTodo:       lipgloss.NewStyle().Foreground(colorCyan),
			task.StatusInProgress: lipgloss.NewStyle().Foreground(colorYellow),
			task.StatusDone:       lipgloss.NewStyle().Foreground(colorGreen).Strikethrough(true),
		},
		id:      lipgloss.NewStyle().Foreground(colorDim),
		success: lipgloss.NewStyle().Foreground(colorGreen),
		notice:  lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
	}
}

func (s styles) line(t task.Task) string {
	description := t.Description
	if st, ok := s.status[t.Status]; ok {
		description = st.Render(description)
	}
	return fmt.Sprintf("%s %s %s", Glyph(t.Status), description, s.id.Render(fmt.Sprintf("(ID: %d)", t.ID)))
}
