package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "pbiextract dev\n", out)
}

func TestRequiresOneArgument(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
}

func TestMissingInputFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "-o", filepath.Join(dir, "out"), filepath.Join(dir, "missing.pbix"))
	require.ErrorIs(t, err, errNoSpreadsheet)
	require.ErrorIs(t, err, pbiextract.ErrFileNotFound)
	require.Contains(t, out, "Extraction summary")
}

func TestExtractTemplate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := filepath.Join(dir, "report.pbit")
	f, err := os.Create(input)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	entries := map[string]string{
		"Report/Layout":   `{"sections": []}`,
		"DataModelSchema": `{"name": "M", "model": {"tables": [{"name": "Sales", "columns": [{"name": "Amount"}]}]}}`,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")
	out, err := execute(t, "--output-dir", outDir, "--search-dir", filepath.Join(dir, "none"), input)
	require.NoError(t, err)
	require.Contains(t, out, "structured workbook")

	for _, name := range []string{pbiextract.StructuredFile, pbiextract.ExtractedFile} {
		_, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
	}
}
