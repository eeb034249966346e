package conftree

// Merge overlays overlay onto base, key by key, and returns base.
//
// The rule set is a mapping-aware overwrite, not a generic deep merge:
// recursion happens only when both sides hold a mapping at the same key.
// Any other overlay value replaces the base value wholesale — sequences
// included, they are never concatenated or merged element-wise. A
// non-mapping base is treated as an empty mapping before merging; a
// non-mapping overlay is returned as-is and replaces base entirely.
//
// Merge mutates base (when it is a mapping) and has no error conditions;
// malformed inputs degrade to "overlay wins".
func Merge(base, overlay any) any {
	overlayMap, ok := overlay.(map[string]any)
	if !ok {
		return overlay
	}
	baseMap, ok := base.(map[string]any)
	if !ok {
		baseMap = make(map[string]any, len(overlayMap))
	}
	for k, ov := range overlayMap {
		if ovMap, ok := ov.(map[string]any); ok {
			if bvMap, ok := baseMap[k].(map[string]any); ok {
				baseMap[k] = Merge(bvMap, ovMap)
				continue
			}
		}
		baseMap[k] = ov
	}
	return baseMap
}
