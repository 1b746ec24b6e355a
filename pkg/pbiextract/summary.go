package pbiextract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary markers.
const (
	markOK   = "✔"
	markFail = "✘"
	markSkip = "-"
)

// SummaryTimeLayout formats the run timestamp in the summary title.
const SummaryTimeLayout = "15:04 -0700, 02/01/2006"

// WriteSummary renders the per-stage outcome of a run as a table.
func (r *Report) WriteSummary(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Extraction summary (%s): %s\n",
		r.FinishedAt.Format(SummaryTimeLayout), filepath.Base(r.Input))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Stage", "Status", "Records", "Detail"})

	for _, s := range r.Stages {
		t.AppendRow(table.Row{mark(s.Status), string(s.Stage), string(s.Status), count(s), detail(s)})
	}
	t.Render()

	if hint := toolHint(r); hint != "" {
		_, _ = fmt.Fprintln(w, hint)
	}
}

func mark(s Status) string {
	switch s {
	case StatusOK, StatusEmpty:
		return markOK
	case StatusFailed:
		return markFail
	default:
		return markSkip
	}
}

func count(s StageResult) string {
	if s.Count == 0 {
		return ""
	}
	return fmt.Sprint(s.Count)
}

func detail(s StageResult) string {
	switch {
	case s.Status == StatusFailed && s.Err != nil:
		return s.Err.Error()
	case s.Output != "":
		return s.Output
	default:
		return ""
	}
}

// toolHint explains how to fix a missing conversion tool.
func toolHint(r *Report) string {
	s, ok := r.Stage(StageModel)
	if !ok || s.Status != StatusFailed || !errors.Is(s.Err, ErrToolNotFound) {
		return ""
	}
	return "Download pbi-tools and place pbi-tools.exe and pbi-tools.core.exe in one of the search directories (see --search-dir)."
}
