package settings

// Merge combines a repo-local settings document with the process-wide
// defaults. Keys present in local always win; defaults only fill gaps.
// Nested mappings are merged recursively, everything else is taken
// wholesale from whichever side wins.
//
// The result is a new map: neither input is mutated, so the shared default
// document stays safe for concurrent reads. Merging the same defaults in
// twice yields the same result.
func Merge(local, defaults map[string]any) map[string]any {
	merged := make(map[string]any, len(local)+len(defaults))
	for key, value := range local {
		merged[key] = value
	}

	for key, defaultValue := range defaults {
		localValue, exists := merged[key]
		if !exists {
			merged[key] = defaultValue
			continue
		}

		localMap, localIsMap := asMap(localValue)
		defaultMap, defaultIsMap := asMap(defaultValue)
		if localIsMap && defaultIsMap {
			merged[key] = Merge(localMap, defaultMap)
		}
		// local scalar (or type mismatch): local wins, nothing to do
	}

	return merged
}

// asMap normalizes the two mapping shapes YAML and JSON decoding produce.
func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		normalized := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			normalized[key] = v
		}
		return normalized, true
	default:
		return nil, false
	}
}
