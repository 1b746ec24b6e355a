package pbiextract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSONArtifact re-indents a JSON document with four spaces and writes
// it atomically, so a failure never leaves a partial file at path.
func writeJSONArtifact(path string, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return fmt.Errorf("indent %s: %w", filepath.Base(path), err)
	}
	buf.WriteByte('\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// removeOutputs deletes artifacts left by a previous run.
func removeOutputs(paths ...string) ([]string, error) {
	var removed []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case os.IsNotExist(err):
		default:
			return removed, fmt.Errorf("remove previous output: %w", err)
		}
	}
	return removed, nil
}
