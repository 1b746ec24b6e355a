package pbiextract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/output"
)

const modelJSON = `{
  "name": "Sales Model",
  "model": {
    "tables": [
      {"name": "Sales", "columns": [{"name": "Amount"}, {"name": "Région"}],
       "measures": [{"name": "Total Sales", "expression": "SUM(Sales[Amount])"}]},
      {"name": "Helper", "isHidden": true, "columns": [{"name": "Key"}]}
    ]
  }
}`

func layoutJSON(t *testing.T) string {
	t.Helper()
	config, err := json.Marshal(map[string]any{
		"singleVisual": map[string]any{
			"visualType":  "card",
			"projections": map[string]any{"Values": []any{map[string]any{"queryRef": "Sales.Total Sales"}}},
		},
	})
	require.NoError(t, err)
	transforms, err := json.Marshal(map[string]any{
		"selects": []any{map[string]any{
			"queryName": "Sales.Total Sales", "displayName": "Total", "expr": map[string]any{"Measure": map[string]any{}},
		}},
	})
	require.NoError(t, err)
	layout, err := json.Marshal(map[string]any{
		"sections": []any{map[string]any{
			"displayName":      "Overview",
			"visualContainers": []any{map[string]any{"config": string(config), "dataTransforms": string(transforms)}},
		}},
	})
	require.NoError(t, err)
	return string(layout)
}

func utf16LE(t *testing.T, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func writeContainer(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newExtractor(t *testing.T, opts Options) (*Extractor, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	return &Extractor{Options: opts, Clock: clock}, clock
}

func statuses(r *Report) map[Stage]Status {
	out := make(map[Stage]Status, len(r.Stages))
	for _, s := range r.Stages {
		out[s.Stage] = s.Status
	}
	return out
}

func TestExtractTemplate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbit")
	writeContainer(t, input, map[string][]byte{
		"Report/Layout":   utf16LE(t, layoutJSON(t)),
		"DataModelSchema": utf16LE(t, modelJSON),
	})

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.CatalogPath = filepath.Join(dir, "out", "catalog.db")
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)
	require.NoError(t, report.Err())
	require.True(t, report.WroteSpreadsheet())
	for stage, status := range statuses(report) {
		require.Equal(t, StatusOK, status, stage)
	}

	schema, err := os.ReadFile(opts.Path(SchemaFile))
	require.NoError(t, err)
	require.True(t, json.Valid(schema))
	require.Contains(t, string(schema), "\n    \"name\": \"Sales Model\"")
	require.Contains(t, string(schema), "Région")

	granular, err := output.ReadSheet(opts.Path(ExtractedFile), "Granular Data")
	require.NoError(t, err)
	require.Len(t, granular.Rows, 2)
	require.Equal(t, []string{"Sales", "Région"}, granular.Rows[1].Values)

	kpis, err := output.ReadSheet(opts.Path(ExtractedFile), "KPIs")
	require.NoError(t, err)
	require.Len(t, kpis.Rows, 1)
	k := kpis.Rows[0].Values
	require.Equal(t, "SUM(Sales[Amount])", k[kpis.Column("Formula")])
	require.Equal(t, "Visual (Overview) and Model", k[kpis.Column("Source")])

	structured, err := output.ReadStructured(opts.Path(StructuredFile))
	require.NoError(t, err)
	require.NotEmpty(t, structured)
	require.Equal(t, "Tables", structured[0].Title)

	_, err = os.Stat(opts.CatalogPath)
	require.NoError(t, err)
}

func TestExtractIncludeHidden(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbit")
	writeContainer(t, input, map[string][]byte{
		"Report/Layout":   []byte(layoutJSON(t)),
		"DataModelSchema": []byte(modelJSON),
	})

	include := true
	opts := DefaultOptions(dir)
	opts.IncludeHidden = &include
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)
	res, ok := report.Stage(StageExtracted)
	require.True(t, ok)
	require.Equal(t, 4, res.Count)
}

func TestExtractWithTools(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbix")
	writeContainer(t, input, map[string][]byte{"Report/Layout": utf16LE(t, layoutJSON(t))})

	toolDir := filepath.Join(dir, "tools")
	require.NoError(t, os.MkdirAll(toolDir, 0o755))
	for _, name := range []string{"pbi-tools.exe", "pbi-tools.core.exe"} {
		require.NoError(t, os.WriteFile(filepath.Join(toolDir, name), nil, 0o755))
	}

	var calls []string
	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{toolDir}
	e, _ := newExtractor(t, opts)
	e.Runner = runnerFunc(func(name string, args []string) ([]byte, error) {
		calls = append(calls, filepath.Base(name)+" "+args[0])
		folder := filepath.Join(dir, "report")
		require.NoError(t, os.MkdirAll(folder, 0o755))
		return nil, os.WriteFile(filepath.Join(folder, "DataModelSchema"), []byte(modelJSON), 0o644)
	})

	report := e.Extract(context.Background(), input)
	require.NoError(t, report.Err())
	require.Equal(t, []string{"pbi-tools.exe extract"}, calls)
	require.True(t, report.Succeeded(StageModel))
	require.True(t, report.Succeeded(StageStructured))
}

func TestExtractMissingTools(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbix")
	writeContainer(t, input, map[string][]byte{"Report/Layout": []byte(layoutJSON(t))})

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{filepath.Join(dir, "empty")}
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)

	model, _ := report.Stage(StageModel)
	require.Equal(t, StatusFailed, model.Status)
	require.ErrorIs(t, model.Err, ErrToolNotFound)
	var stageErr *StageError
	require.ErrorAs(t, model.Err, &stageErr)
	require.Equal(t, StageModel, stageErr.Stage)

	got := statuses(report)
	require.Equal(t, StatusOK, got[StageLayout])
	require.Equal(t, StatusSkipped, got[StageSchema])
	require.Equal(t, StatusSkipped, got[StageStructured])
	require.Equal(t, StatusOK, got[StageKPIs])
	require.Equal(t, StatusOK, got[StageExtracted])
	require.True(t, report.WroteSpreadsheet())

	_, err := os.Stat(opts.Path(SchemaFile))
	require.True(t, os.IsNotExist(err))
}

func TestExtractInputWithoutExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report")
	writeContainer(t, input, map[string][]byte{"Report/Layout": []byte(layoutJSON(t))})

	toolDir := filepath.Join(dir, "tools")
	require.NoError(t, os.MkdirAll(toolDir, 0o755))
	for _, name := range []string{"pbi-tools.exe", "pbi-tools.core.exe"} {
		require.NoError(t, os.WriteFile(filepath.Join(toolDir, name), nil, 0o755))
	}

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{toolDir}
	e, _ := newExtractor(t, opts)
	e.Runner = runnerFunc(func(string, []string) ([]byte, error) {
		t.Error("conversion tool must not run")
		return nil, nil
	})

	report := e.Extract(context.Background(), input)
	model, _ := report.Stage(StageModel)
	require.Equal(t, StatusFailed, model.Status)
	require.ErrorIs(t, model.Err, ErrUnsafeInput)
	require.True(t, report.Succeeded(StageLayout))

	_, err := os.Stat(input)
	require.NoError(t, err)
}

func TestExtractEmptyModel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.pbit")
	writeContainer(t, input, map[string][]byte{
		"Report/Layout":   []byte(`{"sections": []}`),
		"DataModelSchema": []byte(`{"name": "Empty", "model": {}}`),
	})

	e, _ := newExtractor(t, DefaultOptions(filepath.Join(dir, "out")))
	report := e.Extract(context.Background(), input)

	got := statuses(report)
	require.Equal(t, StatusEmpty, got[StageSchema])
	require.Equal(t, StatusEmpty, got[StageKPIs])
	require.Equal(t, StatusOK, got[StageStructured])
	require.Equal(t, StatusSkipped, got[StageExtracted])
}

func TestExtractContainerWithoutArtifacts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbix")
	writeContainer(t, input, map[string][]byte{"Report/Other": []byte("{}")})

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{filepath.Join(dir, "none")}
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)
	layout, _ := report.Stage(StageLayout)
	require.Equal(t, StatusFailed, layout.Status)
	require.ErrorIs(t, layout.Err, ErrArtifactNotFound)
	require.False(t, report.WroteSpreadsheet())

	entries, err := os.ReadDir(filepath.Join(opts.OutputDir, JSONDir))
	require.NoError(t, err)
	require.Empty(t, entries, "no partial artifact expected")
	for _, name := range []string{StructuredFile, ExtractedFile} {
		_, err := os.Stat(opts.Path(name))
		require.True(t, os.IsNotExist(err), name)
	}
}

func TestExtractInvalidContainer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbix")
	require.NoError(t, os.WriteFile(input, []byte("not a zip"), 0o644))

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{filepath.Join(dir, "none")}
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)
	layout, _ := report.Stage(StageLayout)
	require.ErrorIs(t, layout.Err, ErrInvalidContainer)
}

func TestExtractMissingInput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e, _ := newExtractor(t, DefaultOptions(dir))

	report := e.Extract(context.Background(), filepath.Join(dir, "missing.pbix"))
	require.ErrorIs(t, report.Err(), ErrFileNotFound)
	require.False(t, report.WroteSpreadsheet())

	got := statuses(report)
	require.Equal(t, StatusFailed, got[StageInput])
	require.Equal(t, StatusSkipped, got[StageLayout])
	_, hasCatalog := got[StageCatalog]
	require.False(t, hasCatalog)
}

func TestExtractRemovesPreviousOutputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.pbix")
	writeContainer(t, input, map[string][]byte{"Other": []byte("{}")})

	opts := DefaultOptions(filepath.Join(dir, "out"))
	opts.SearchDirs = []string{filepath.Join(dir, "none")}
	require.NoError(t, os.MkdirAll(filepath.Join(opts.OutputDir, JSONDir), 0o755))
	for _, name := range []string{LayoutFile, SchemaFile, StructuredFile, ExtractedFile} {
		require.NoError(t, os.WriteFile(opts.Path(name), []byte("stale"), 0o644))
	}
	e, _ := newExtractor(t, opts)

	report := e.Extract(context.Background(), input)
	clean, _ := report.Stage(StageClean)
	require.Equal(t, 4, clean.Count)
	for _, name := range []string{LayoutFile, SchemaFile, StructuredFile, ExtractedFile} {
		_, err := os.Stat(opts.Path(name))
		require.True(t, os.IsNotExist(err), name)
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()
	e, clock := newExtractor(t, DefaultOptions(t.TempDir()))
	report := &Report{Input: "/data/report.pbix", StartedAt: clock.Now(), FinishedAt: clock.Now()}
	report.add(StageResult{Stage: StageLayout, Status: StatusOK, Output: "Layout.json"})
	report.add(e.finish(failed(StageModel, ErrToolNotFound)))
	report.add(skipped(StageSchema, ErrMissingInput))

	var buf bytes.Buffer
	report.WriteSummary(&buf)
	out := buf.String()

	require.Contains(t, out, "Extraction summary (09:30 +0000, 01/03/2024): report.pbix")
	require.Contains(t, out, markOK)
	require.Contains(t, out, markFail)
	require.Contains(t, out, "Layout.json")
	require.Contains(t, out, "model schema stage: conversion tool not found")
	require.True(t, strings.Contains(out, "pbi-tools.core.exe"))
}

func TestJSONArtifactFailureLeavesNoFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.json")
	err := writeJSONArtifact(path, []byte(`{"a":`))
	require.Error(t, err)
	_, statErr := os.Stat(path)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

type runnerFunc func(name string, args []string) ([]byte, error)

func (f runnerFunc) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	stderr, err := f(name, args)
	return nil, stderr, err
}
