package pbiextract

import (
	"errors"
	"fmt"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/parser"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/tools"
)

// ErrFileNotFound indicates the input report does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidContainer indicates the input is not a readable report container.
var ErrInvalidContainer = parser.ErrNotArchive

// ErrArtifactNotFound indicates the container lacks an expected payload.
var ErrArtifactNotFound = parser.ErrEntryNotFound

// ErrToolNotFound indicates a conversion executable could not be located.
var ErrToolNotFound = tools.ErrToolNotFound

// ErrUnsafeInput indicates the input path cannot be converted without
// touching files other than its own extraction folder.
var ErrUnsafeInput = tools.ErrUnsafeInput

// ErrNoDecodableText indicates no supported encoding produced valid JSON.
var ErrNoDecodableText = parser.ErrNoDecodableText

// ErrMissingInput indicates a stage could not run because an upstream
// stage produced nothing.
var ErrMissingInput = errors.New("upstream stage produced no data")

// StageError represents a failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{
		Stage: stage,
		Err:   err,
	}
}
