package conftree

// Clone returns a deep copy of v. Mappings and sequences are duplicated
// recursively; scalars are returned as-is. After a clone, mutating any
// container reachable from the result never affects the source.
//
// Trees are assumed acyclic: pipeline configuration is built from decoded
// HCL values and cannot reference itself. Clone does not detect cycles.
func Clone(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}
