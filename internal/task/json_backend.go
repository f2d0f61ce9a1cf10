package task

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed tasks.schema.json
var tasksSchemaJSON string

var tasksSchema = gojsonschema.NewStringLoader(tasksSchemaJSON)

// DefaultFileName is the task file used when no path is configured.
const DefaultFileName = "tasks.json"

// JSONBackend stores tasks as a JSON array. The id high-water mark lives in a
// sidecar file next to it so the task file stays a plain array.
type JSONBackend struct {
	path string
}

// NewJSONBackend creates a backend for the task file at path.
func NewJSONBackend(path string) *JSONBackend {
	if path == "" {
		path = DefaultFileName
	}
	return &JSONBackend{path: path}
}

// Path returns the task file path.
func (b *JSONBackend) Path() string {
	return b.path
}

func (b *JSONBackend) seqPath() string {
	return b.path + ".seq"
}

type seqFile struct {
	NextID int `json:"nextId"`
}

// Load reads the task file, creating it with an empty array when missing.
func (b *JSONBackend) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", b.path).Msg("creating empty task file")
		if err := writeFileAtomic(b.path, []byte("[]\n"), 0o644); err != nil {
			return State{}, &IOError{Op: "create", Path: b.path, Err: err}
		}
		if err := os.Remove(b.seqPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return State{}, &IOError{Op: "reset", Path: b.seqPath(), Err: err}
		}
		return State{}, nil
	}
	if err != nil {
		return State{}, &IOError{Op: "read", Path: b.path, Err: err}
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		return State{}, &IOError{Op: "parse", Path: b.path, Err: err}
	}
	next, err := b.loadSeq()
	if err != nil {
		return State{}, err
	}
	return State{Tasks: tasks, NextID: max(next, NextID(tasks))}, nil
}

func (b *JSONBackend) loadSeq() (int, error) {
	data, err := os.ReadFile(b.seqPath())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, &IOError{Op: "read", Path: b.seqPath(), Err: err}
	}
	var seq seqFile
	if err := json.Unmarshal(data, &seq); err != nil {
		return 0, &IOError{Op: "parse", Path: b.seqPath(), Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	if seq.NextID < 0 {
		return 0, &IOError{Op: "parse", Path: b.seqPath(), Err: corrupt("negative next id %d", seq.NextID)}
	}
	return seq.NextID, nil
}

// Save writes the id high-water mark and then the task array. Renaming the
// task file is the commit point; the sidecar may run ahead of it since Load
// takes the larger counter.
func (b *JSONBackend) Save(_ context.Context, state State) error {
	data, err := encodeTasks(state.Tasks)
	if err != nil {
		return &IOError{Op: "encode", Path: b.path, Err: err}
	}
	seq, err := json.Marshal(seqFile{NextID: state.NextID})
	if err != nil {
		return &IOError{Op: "encode", Path: b.seqPath(), Err: err}
	}
	if err := writeFileAtomic(b.seqPath(), append(seq, '\n'), 0o644); err != nil {
		return &IOError{Op: "write", Path: b.seqPath(), Err: err}
	}
	if err := writeFileAtomic(b.path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: b.path, Err: err}
	}
	return nil
}

func encodeTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeTasks(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, corrupt("empty file")
	}
	result, err := gojsonschema.Validate(tasksSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, schemaErr := range result.Errors() {
			errs = append(errs, schemaErr.String())
		}
		sort.Strings(errs)
		return nil, corrupt("schema validation failed: %s", strings.Join(errs, "; "))
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := checkOrder(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
