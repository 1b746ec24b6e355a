package pbiextract

import (
	"errors"
	"time"
)

// Stage names a pipeline step.
type Stage string

const (
	StageInput      Stage = "input"
	StageClean      Stage = "clean"
	StageLayout     Stage = "layout"
	StageModel      Stage = "model schema"
	StageSchema     Stage = "schema"
	StageKPIs       Stage = "kpis"
	StageStructured Stage = "structured workbook"
	StageExtracted  Stage = "extracted workbook"
	StageCatalog    Stage = "catalog"
)

// Status is the outcome of a stage.
type Status string

const (
	// StatusOK means the stage produced output.
	StatusOK Status = "ok"
	// StatusEmpty means the stage ran but found nothing.
	StatusEmpty Status = "empty"
	// StatusFailed means the stage returned an error.
	StatusFailed Status = "failed"
	// StatusSkipped means the stage was not attempted.
	StatusSkipped Status = "skipped"
)

// StageResult is the outcome of one stage.
type StageResult struct {
	Stage  Stage
	Status Status
	// Output is the file written by the stage, if any.
	Output string
	// Count is the number of records produced.
	Count int
	// Err is set when Status is StatusFailed or StatusSkipped.
	Err error
}

// OK reports whether the stage produced output.
func (r StageResult) OK() bool {
	return r.Status == StatusOK
}

// Report collects the stage results of one run.
type Report struct {
	Input      string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageResult
}

func (r *Report) add(res StageResult) StageResult {
	r.Stages = append(r.Stages, res)
	return res
}

// Stage returns the result of the named stage.
func (r *Report) Stage(name Stage) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Succeeded reports whether the named stage ran and produced output.
func (r *Report) Succeeded(name Stage) bool {
	s, ok := r.Stage(name)
	return ok && s.OK()
}

// WroteSpreadsheet reports whether at least one workbook was produced.
func (r *Report) WroteSpreadsheet() bool {
	return r.Succeeded(StageStructured) || r.Succeeded(StageExtracted)
}

// Err joins the errors of every failed stage.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Stages {
		if s.Status == StatusFailed && s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}
