package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every debug-level Emit and written by tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("WORTHIT_TRACE") != "")
}

// TraceEnabled reports whether WORTHIT_TRACE is set. Debug-level events are
// dropped before serialization unless it is.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
