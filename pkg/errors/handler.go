package errors

import "sync"

// Handler receives non-fatal diagnostics the reconciler collects but does
// not surface as return values: unknown properties, best-effort disposal
// failures, and errors from deferred commits that have no caller left to
// return to.
type Handler interface {
	// HandleDiagnostic is called once per reported error.
	HandleDiagnostic(err error)
}

var (
	handlerMu sync.RWMutex

	// defaultHandler is the global diagnostic handler. It defaults to
	// LogHandler writing to stderr.
	defaultHandler Handler = &LogHandler{}
)

// SetHandler configures the global diagnostic handler. Pass nil to
// restore the default LogHandler. It returns the previous handler so
// tests can restore it.
func SetHandler(h Handler) Handler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := defaultHandler
	if h == nil {
		defaultHandler = &LogHandler{}
	} else {
		defaultHandler = h
	}
	return prev
}

// Report sends an error to the global diagnostic handler. Nil errors are
// ignored.
func Report(err error) {
	if err == nil {
		return
	}
	handlerMu.RLock()
	h := defaultHandler
	handlerMu.RUnlock()
	if h != nil {
		h.HandleDiagnostic(err)
	}
}
