// Package pbiextract extracts model and report metadata from Power BI
// containers and renders it as spreadsheets.
package pbiextract

import (
	"path/filepath"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/tools"
)

// Output file names inside Options.OutputDir.
const (
	JSONDir        = "JSON Files"
	LayoutFile     = "Layout.json"
	SchemaFile     = "DataModelSchema.json"
	StructuredFile = "Data_Structure.xlsx"
	ExtractedFile  = "Extracted_Data.xlsx"
)

// Options configures a run.
type Options struct {
	// OutputDir receives every artifact.
	OutputDir string
	// SearchDirs are walked, in order, to find the conversion tools.
	// If empty, the user's Downloads and Desktop folders and OutputDir are used.
	SearchDirs []string
	// ExtractTool is the file name of the pbi-tools executable.
	ExtractTool string
	// CompileTool is the file name of the pbi-tools.core executable.
	CompileTool string
	// CatalogPath, when set, receives a SQLite copy of every record set.
	CatalogPath string
	// IncludeHidden specifies whether hidden tables appear in the granular view.
	// If nil, defaults to false.
	IncludeHidden *bool
}

// DefaultOptions returns default run options writing to outputDir.
func DefaultOptions(outputDir string) Options {
	return Options{
		OutputDir:   outputDir,
		ExtractTool: tools.DefaultExtractTool,
		CompileTool: tools.DefaultCompileTool,
	}
}

// ShouldIncludeHidden returns whether hidden tables are listed in the granular view.
func (o Options) ShouldIncludeHidden() bool {
	if o.IncludeHidden != nil {
		return *o.IncludeHidden
	}
	return false
}

// ToolSearchDirs returns SearchDirs or the default search path.
func (o Options) ToolSearchDirs() []string {
	if len(o.SearchDirs) > 0 {
		return o.SearchDirs
	}
	return tools.DefaultSearchDirs(o.OutputDir)
}

// Path returns the location of an output file.
func (o Options) Path(name string) string {
	switch name {
	case LayoutFile, SchemaFile:
		return filepath.Join(o.OutputDir, JSONDir, name)
	default:
		return filepath.Join(o.OutputDir, name)
	}
}
