package parser

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
)

// ErrNotArchive indicates the container is not a readable zip archive.
var ErrNotArchive = errors.New("not a valid zip archive")

// ErrEntryNotFound indicates the archive has no entry with the requested name.
var ErrEntryNotFound = errors.New("entry not found in archive")

// Entry names inside .pbix/.pbit containers.
const (
	LayoutEntry          = "Layout"
	DataModelSchemaEntry = "DataModelSchema"
)

// ReadEntry returns the contents of the first archive entry whose base name
// is name (e.g. "Report/Layout" matches "Layout").
func ReadEntry(archivePath, name string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path.Base(archivePath), ErrNotArchive, err)
	}
	defer r.Close()

	data, err := readZipEntry(&r.Reader, name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%q in %s: %w", name, path.Base(archivePath), ErrEntryNotFound)
	}
	return data, nil
}

// readZipEntry returns nil, nil when no entry matches.
func readZipEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}
