package pipeline

import (
	"fmt"
	"strings"

	oerrors "github.com/opmodel/usbuild/internal/errors"
)

// ChunkError records a failure to assemble one chunk. The remaining chunks
// are still processed.
type ChunkError struct {
	// FileName is the chunk that failed.
	FileName string

	// Step names what was being done when it failed.
	Step string

	// Err is the underlying error.
	Err error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %q: %s: %v", e.FileName, e.Step, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// WriteError summarizes the chunks that failed during WriteBundle.
type WriteError struct {
	Chunks []*ChunkError
}

func (e *WriteError) Error() string {
	names := make([]string, len(e.Chunks))
	for i, c := range e.Chunks {
		names[i] = c.FileName
	}
	return fmt.Sprintf("%d chunk(s) failed: %s", len(e.Chunks), strings.Join(names, ", "))
}

// Unwrap exposes ErrBuild and every chunk failure to errors.Is and errors.As.
func (e *WriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Chunks)+1)
	errs = append(errs, oerrors.ErrBuild)
	for _, c := range e.Chunks {
		errs = append(errs, c)
	}
	return errs
}
