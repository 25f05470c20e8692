package errors

import (
	"fmt"
	"io"
	"os"
)

// LogHandler is a Handler that writes diagnostics to a stream, one line
// per error, prefixed with the error's kind.
type LogHandler struct {
	// Out is the destination stream. Nil means os.Stderr.
	Out io.Writer
}

// HandleDiagnostic writes the diagnostic line.
func (h *LogHandler) HandleDiagnostic(err error) {
	if err == nil {
		return
	}
	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "[scenic %s] %v\n", KindOf(err), err)
}
