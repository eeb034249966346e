package stacktrace

// Pruner trims host scaffolding from a captured frame list. The boundary
// predicate identifies the well-known frame every module execution passes
// through; everything outside it is noise to the module author.
type Pruner struct {
	boundary func(Frame) bool
}

// NewPruner returns a Pruner using the given boundary predicate.
func NewPruner(boundary func(Frame) bool) *Pruner {
	if boundary == nil {
		panic("stacktrace: boundary predicate must not be nil")
	}
	return &Pruner{boundary: boundary}
}

// Prune scans from the outermost frame inward, discarding frames until the
// boundary frame is reached, and keeps the boundary frame and everything
// from it inward to the failure point. If no frame satisfies the boundary
// predicate the input is returned unchanged — the pruner fails open and
// never produces an empty trace from a non-empty one.
func (p *Pruner) Prune(frames []Frame) []Frame {
	for i := len(frames) - 1; i >= 0; i-- {
		if p.boundary(frames[i]) {
			return frames[:i+1]
		}
	}
	return frames
}
