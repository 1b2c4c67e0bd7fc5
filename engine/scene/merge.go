package scene

// deepMerge merges override onto base: object keys recurse, a null
// override preserves the base, and any other shape mismatch replaces
// the base outright.
func deepMerge(base, override interface{}) interface{} {
	if override == nil {
		return base
	}
	baseObj, baseIsObj := asObject(base)
	overrideObj, overrideIsObj := asObject(override)
	if baseIsObj && overrideIsObj {
		out := make(map[string]interface{}, len(baseObj)+len(overrideObj))
		for k, v := range baseObj {
			out[k] = v
		}
		for k, v := range overrideObj {
			if existing, ok := out[k]; ok {
				out[k] = deepMerge(existing, v)
			} else {
				out[k] = v
			}
		}
		return out
	}
	return override
}

// selectOverrideForPass implements the per-pass override selection
// rule. overrides is the full override list carried by one object-effect
// entry; cursor is the running position across all of that entry's
// effect-passes; materialPassCount is how many base-material passes the
// current effect-pass's material resolves to; effectPassIdx is this
// effect-pass's index within the entry.
//
// It returns, for each material pass index in [0, materialPassCount),
// the override to deep-merge onto that base pass (nil if none applies),
// the advanced cursor, and whether the positional fallback had to be
// used (a divergence worth noting).
func selectOverridesForEffectPass(overrides []interface{}, cursor, effectPassIdx, materialPassCount int) (selected []interface{}, nextCursor int, usedFallback bool) {
	selected = make([]interface{}, materialPassCount)

	if cursor+materialPassCount <= len(overrides) {
		for i := 0; i < materialPassCount; i++ {
			selected[i] = overrides[cursor+i]
		}
		return selected, cursor + materialPassCount, false
	}

	usedFallback = true
	if effectPassIdx < len(overrides) {
		if entry, ok := asObject(overrides[effectPassIdx]); ok {
			if passes, ok := asArray(entry["passes"]); ok {
				for i := 0; i < materialPassCount && i < len(passes); i++ {
					selected[i] = passes[i]
				}
				return selected, cursor, usedFallback
			}
		}
		if materialPassCount > 0 {
			selected[0] = overrides[effectPassIdx]
		}
	}
	return selected, cursor, usedFallback
}
