package pbiextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/catalog"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/output"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/parser"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/tools"
)

// Extractor runs the extraction pipeline.
type Extractor struct {
	Options Options
	Logger  *slog.Logger
	Clock   clockwork.Clock
	// Runner runs the conversion tools. Defaults to tools.ExecRunner.
	Runner tools.Runner
}

// New creates an Extractor with a real clock.
func New(opts Options, logger *slog.Logger) *Extractor {
	return &Extractor{Options: opts, Logger: logger, Clock: clockwork.NewRealClock()}
}

func (e *Extractor) log() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Extractor) clock() clockwork.Clock {
	if e.Clock == nil {
		return clockwork.NewRealClock()
	}
	return e.Clock
}

// run carries intermediate data between stages.
type run struct {
	input    string
	layout   []byte
	model    []byte
	schema   *models.Schema
	kpis     *models.RecordSet
	granular *models.RecordSet
}

// Extract runs every stage on input. Stages degrade independently: a
// failed stage is recorded and downstream stages run on whatever was
// produced. The returned report is never nil.
func (e *Extractor) Extract(ctx context.Context, input string) *Report {
	report := &Report{Input: input, StartedAt: e.clock().Now()}
	defer func() { report.FinishedAt = e.clock().Now() }()

	if res := report.add(e.checkInput(input)); !res.OK() {
		rest := []Stage{StageClean, StageLayout, StageModel, StageSchema, StageKPIs, StageStructured, StageExtracted}
		if e.Options.CatalogPath != "" {
			rest = append(rest, StageCatalog)
		}
		e.skip(report, res.Err, rest...)
		return report
	}

	r := &run{input: input}
	report.add(e.clean())
	report.add(e.extractLayout(r))
	report.add(e.extractModel(ctx, r))
	report.add(e.flatten(r))
	report.add(e.extractKPIs(r))
	report.add(e.writeStructured(r))
	report.add(e.writeExtracted(r))
	if e.Options.CatalogPath != "" {
		report.add(e.exportCatalog(ctx, r))
	}
	return report
}

func (e *Extractor) skip(report *Report, cause error, stages ...Stage) {
	for _, s := range stages {
		report.add(StageResult{Stage: s, Status: StatusSkipped, Err: cause})
	}
}

// finish logs a stage outcome and wraps its error.
func (e *Extractor) finish(res StageResult) StageResult {
	log := e.log().With("stage", string(res.Stage))
	switch res.Status {
	case StatusFailed:
		res.Err = NewStageError(res.Stage, res.Err)
		log.Error("stage failed", "error", res.Err)
	case StatusSkipped:
		log.Warn("stage skipped", "reason", res.Err)
	case StatusEmpty:
		log.Warn("stage produced no data")
	default:
		log.Info("stage complete", "output", res.Output, "count", res.Count)
	}
	return res
}

func failed(stage Stage, err error) StageResult {
	return StageResult{Stage: stage, Status: StatusFailed, Err: err}
}

func skipped(stage Stage, err error) StageResult {
	return StageResult{Stage: stage, Status: StatusSkipped, Err: err}
}

func (e *Extractor) checkInput(input string) StageResult {
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return e.finish(failed(StageInput, fmt.Errorf("%w: %s", ErrFileNotFound, input)))
	}
	dir := filepath.Join(e.Options.OutputDir, JSONDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return e.finish(failed(StageInput, fmt.Errorf("create output directory: %w", err)))
	}
	return e.finish(StageResult{Stage: StageInput, Status: StatusOK, Output: input})
}

func (e *Extractor) clean() StageResult {
	o := e.Options
	removed, err := removeOutputs(
		o.Path(StructuredFile), o.Path(ExtractedFile),
		o.Path(LayoutFile), o.Path(SchemaFile), o.CatalogPath)
	for _, p := range removed {
		e.log().Debug("removed previous output", "path", p)
	}
	if err != nil {
		return e.finish(failed(StageClean, err))
	}
	return e.finish(StageResult{Stage: StageClean, Status: StatusOK, Count: len(removed)})
}

func (e *Extractor) extractLayout(r *run) StageResult {
	raw, err := parser.ReadEntry(r.input, parser.LayoutEntry)
	if err != nil {
		return e.finish(failed(StageLayout, err))
	}
	data, enc, err := parser.DecodeJSONText(raw)
	if err != nil {
		return e.finish(failed(StageLayout, fmt.Errorf("decode %s: %w", parser.LayoutEntry, err)))
	}
	e.log().Debug("decoded layout", "encoding", enc, "bytes", len(data))

	path := e.Options.Path(LayoutFile)
	if err := writeJSONArtifact(path, data); err != nil {
		return e.finish(failed(StageLayout, err))
	}
	r.layout = data
	return e.finish(StageResult{Stage: StageLayout, Status: StatusOK, Output: path})
}

// extractModel reads the DataModelSchema payload directly when the
// container carries one (.pbit templates) and otherwise converts the
// report with the external tools.
func (e *Extractor) extractModel(ctx context.Context, r *run) StageResult {
	data, err := e.embeddedModel(r.input)
	if err != nil {
		return e.finish(failed(StageModel, err))
	}
	if data == nil {
		data, err = e.convertModel(ctx, r.input)
		if err != nil {
			return e.finish(failed(StageModel, err))
		}
	}

	path := e.Options.Path(SchemaFile)
	if err := writeJSONArtifact(path, data); err != nil {
		return e.finish(failed(StageModel, err))
	}
	r.model = data
	return e.finish(StageResult{Stage: StageModel, Status: StatusOK, Output: path})
}

// embeddedModel returns nil, nil when the container has no schema entry.
func (e *Extractor) embeddedModel(input string) ([]byte, error) {
	raw, err := parser.ReadEntry(input, parser.DataModelSchemaEntry)
	switch {
	case errors.Is(err, parser.ErrEntryNotFound), errors.Is(err, parser.ErrNotArchive):
		return nil, nil
	case err != nil:
		return nil, err
	}
	e.log().Debug("using DataModelSchema embedded in container")
	data, _, err := parser.DecodeJSONText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", parser.DataModelSchemaEntry, err)
	}
	return data, nil
}

func (e *Extractor) convertModel(ctx context.Context, input string) ([]byte, error) {
	dirs := e.Options.ToolSearchDirs()
	extract, err := tools.Locate(e.Options.ExtractTool, dirs)
	if err != nil {
		return nil, err
	}
	compile, err := tools.Locate(e.Options.CompileTool, dirs)
	if err != nil {
		return nil, err
	}

	c := &tools.Converter{
		ExtractTool: extract,
		CompileTool: compile,
		Runner:      e.Runner,
		Logger:      e.log(),
	}
	return c.ModelSchema(ctx, input)
}

func (e *Extractor) flatten(r *run) StageResult {
	if r.model == nil {
		return e.finish(skipped(StageSchema, ErrMissingInput))
	}
	schema, err := parser.FlattenSchema(r.model)
	if err != nil {
		return e.finish(failed(StageSchema, err))
	}
	r.schema = schema
	r.granular = models.GranularRecordSet(schema.VisibleColumns(e.Options.ShouldIncludeHidden()))

	if schema.IsEmpty() {
		return e.finish(StageResult{Stage: StageSchema, Status: StatusEmpty})
	}
	count := 0
	for _, rs := range schema.RecordSets() {
		count += rs.Len()
	}
	return e.finish(StageResult{Stage: StageSchema, Status: StatusOK, Count: count})
}

func (e *Extractor) extractKPIs(r *run) StageResult {
	if r.layout == nil {
		return e.finish(skipped(StageKPIs, ErrMissingInput))
	}
	var measures []models.Measure
	if r.schema != nil {
		measures = r.schema.Measures
	}
	kpis, err := parser.ExtractKPIs(r.layout, measures)
	if err != nil {
		return e.finish(failed(StageKPIs, err))
	}
	r.kpis = models.KPIRecordSet(kpis)
	if len(kpis) == 0 {
		return e.finish(StageResult{Stage: StageKPIs, Status: StatusEmpty})
	}
	return e.finish(StageResult{Stage: StageKPIs, Status: StatusOK, Count: len(kpis)})
}

func (e *Extractor) writeStructured(r *run) StageResult {
	if r.schema == nil {
		return e.finish(skipped(StageStructured, ErrMissingInput))
	}
	sets := r.schema.RecordSets()
	path := e.Options.Path(StructuredFile)
	if err := output.WriteStructured(path, sets, e.log()); err != nil {
		return e.finish(failed(StageStructured, err))
	}
	return e.finish(StageResult{Stage: StageStructured, Status: StatusOK, Output: path, Count: len(sets)})
}

func (e *Extractor) writeExtracted(r *run) StageResult {
	if r.granular.Len() == 0 && r.kpis.Len() == 0 {
		return e.finish(skipped(StageExtracted, ErrMissingInput))
	}
	path := e.Options.Path(ExtractedFile)
	if err := output.WriteExtracted(path, r.granular, r.kpis, e.log()); err != nil {
		return e.finish(failed(StageExtracted, err))
	}
	return e.finish(StageResult{
		Stage:  StageExtracted,
		Status: StatusOK,
		Output: path,
		Count:  r.granular.Len() + r.kpis.Len(),
	})
}

func (e *Extractor) exportCatalog(ctx context.Context, r *run) StageResult {
	var sets []models.RecordSet
	if r.schema != nil {
		sets = r.schema.RecordSets()
	}
	for _, rs := range []*models.RecordSet{r.granular, r.kpis} {
		if rs.Len() > 0 {
			sets = append(sets, *rs)
		}
	}
	if len(sets) == 0 {
		return e.finish(skipped(StageCatalog, ErrMissingInput))
	}
	if err := catalog.Export(ctx, e.Options.CatalogPath, sets); err != nil {
		return e.finish(failed(StageCatalog, err))
	}
	return e.finish(StageResult{Stage: StageCatalog, Status: StatusOK, Output: e.Options.CatalogPath, Count: len(sets)})
}
