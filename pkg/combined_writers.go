package pkg

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all of its writers, e.g. stdout
// and the rotated log file. A failing writer does not stop the others.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.writers = append(cw.writers, w)
		}
	}
	return cw
}

func (cw *CombinedWriter) Len() int {
	return len(cw.writers)
}

// Write reports len(p) when at least one writer took the whole buffer,
// together with the combined errors of the writers that failed.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		errs    error
		written bool
	)
	for i, w := range cw.writers {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("writer #%d: %w", i, err))
			continue
		}
		written = true
	}
	if !written {
		return 0, errs
	}
	return len(p), errs
}
