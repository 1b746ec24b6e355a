package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/parser"
)

// ErrUnsafeInput indicates the input path has no extraction folder distinct
// from the input itself.
var ErrUnsafeInput = errors.New("input has no usable extraction folder")

// ErrNoModel indicates the extraction produced neither a DataModelSchema
// file nor a Model folder to compile.
var ErrNoModel = errors.New("report has no data model")

// RunError describes a failed tool invocation.
type RunError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", filepath.Base(e.Tool), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Converter obtains the DataModelSchema document of a report by running
// the pbi-tools extract and compile commands.
type Converter struct {
	// ExtractTool is the path of the pbi-tools executable.
	ExtractTool string
	// CompileTool is the path of the pbi-tools.core executable.
	CompileTool string
	// Runner runs the executables. Defaults to ExecRunner.
	Runner Runner
	// Logger receives progress and tool diagnostics.
	Logger *slog.Logger
}

func (c *Converter) runner() Runner {
	if c.Runner == nil {
		return ExecRunner{}
	}
	return c.Runner
}

func (c *Converter) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// ModelSchema returns the decoded DataModelSchema JSON of the report at input.
// The extraction folder next to input and any temporary files are removed
// before returning.
func (c *Converter) ModelSchema(ctx context.Context, input string) ([]byte, error) {
	log := c.logger()

	folder, err := ExtractionFolder(input)
	if err != nil {
		return nil, err
	}
	if info, err := os.Lstat(folder); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrUnsafeInput, folder)
		}
		log.Debug("removing stale extraction folder", "folder", folder)
		if err := os.RemoveAll(folder); err != nil {
			return nil, fmt.Errorf("remove stale extraction folder: %w", err)
		}
	}
	defer removeDir(log, folder)

	log.Info("running pbi-tools extract", "input", input)
	if err := c.run(ctx, c.ExtractTool, "extract", input, "-modelSerialization", "Raw"); err != nil {
		return nil, err
	}
	if _, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("extraction folder %s missing after extract: %w", filepath.Base(folder), err)
	}

	if found, err := findFile(folder, parser.DataModelSchemaEntry); err != nil {
		return nil, err
	} else if found != "" {
		log.Debug("DataModelSchema found in raw extraction", "path", found)
		data, _, err := parser.ReadJSONFile(found)
		return data, err
	}

	return c.compileSchema(ctx, input, folder)
}

// compileSchema compiles the extraction folder to a .pbit template and
// reads its DataModelSchema entry.
func (c *Converter) compileSchema(ctx context.Context, input, folder string) ([]byte, error) {
	log := c.logger()

	entries, err := os.ReadDir(filepath.Join(folder, "Model"))
	if err != nil || len(entries) == 0 {
		return nil, ErrNoModel
	}

	tmp, err := os.MkdirTemp("", "pbiextract-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	pbit := filepath.Join(tmp, name+".pbit")

	log.Info("running pbi-tools.core compile", "output", filepath.Base(pbit))
	if err := c.run(ctx, c.CompileTool, "compile", folder, pbit, "PBIT", "True"); err != nil {
		return nil, err
	}
	if _, err := os.Stat(pbit); err != nil {
		return nil, fmt.Errorf("compiled template not created: %w", err)
	}

	raw, err := parser.ReadEntry(pbit, parser.DataModelSchemaEntry)
	if err != nil {
		return nil, err
	}
	data, _, err := parser.DecodeJSONText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", parser.DataModelSchemaEntry, err)
	}
	return data, nil
}

func (c *Converter) run(ctx context.Context, tool string, args ...string) error {
	log := c.logger()

	stdout, stderr, err := c.runner().Run(ctx, tool, args...)
	errText := strings.TrimSpace(string(stderr))
	if err != nil {
		runErr := &RunError{Tool: tool, ExitCode: -1, Stderr: errText, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			runErr.ExitCode = exitErr.ExitCode()
		}
		log.Error("tool failed",
			"tool", filepath.Base(tool),
			"code", runErr.ExitCode,
			"stdout", strings.TrimSpace(string(stdout)),
			"stderr", errText)
		return runErr
	}
	if errText != "" {
		log.Warn("tool wrote to stderr", "tool", filepath.Base(tool), "stderr", errText)
	}
	return nil
}

// ExtractionFolder returns the sibling folder pbi-tools extracts input
// into: the input path without its extension.
func ExtractionFolder(input string) (string, error) {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	switch {
	case ext == "", stem == "", stem == ".", stem == "..":
		return "", fmt.Errorf("%w: %s", ErrUnsafeInput, input)
	}
	folder := filepath.Join(filepath.Dir(input), stem)
	if folder == filepath.Clean(input) || filepath.Dir(folder) != filepath.Dir(input) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeInput, input)
	}
	return folder, nil
}

// removeDir removes dir only when it is a directory.
func removeDir(log *slog.Logger, dir string) {
	info, err := os.Lstat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("failed to remove extraction folder", "folder", dir, "error", err)
	}
}

// findFile returns the first regular file named name below root, or "".
func findFile(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search extraction folder: %w", err)
	}
	return found, nil
}
