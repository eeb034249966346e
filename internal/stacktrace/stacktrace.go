// Package stacktrace captures failure stack traces and prunes them down to
// the span between the module-invocation boundary and the point of failure,
// so user-facing diagnostics start at "the module that was invoked" instead
// of host-runtime internals.
package stacktrace

import "runtime"

// Frame is one captured stack frame. Frame lists are ordered innermost
// (failure point) first.
type Frame struct {
	Function string
	File     string
	Line     int
}

// maxDepth bounds a single capture. Module call chains are shallow; the
// limit only guards against runaway recursion in the host.
const maxDepth = 128

// Capture records the calling goroutine's current stack, innermost frame
// first. skip counts additional frames to omit above Capture itself: 0
// starts at Capture's caller.
func Capture(skip int) []Frame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return out
}
