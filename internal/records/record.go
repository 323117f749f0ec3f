package records

// Record is one row returned by the record store. Field sets vary per
// collection, so it stays map-backed with typed accessors.
type Record map[string]any

func (r Record) ID() string {
	return r.GetString("id")
}

func (r Record) GetString(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Record) GetFloat(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (r Record) GetInt(key string) int {
	return int(r.GetFloat(key))
}

func (r Record) GetBool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// GetStringMap reads a JSON-object field whose values are strings,
// e.g. a SKU specs map. Non-string values are skipped.
func (r Record) GetStringMap(key string) map[string]string {
	raw, ok := r[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// GetStringSlice reads a JSON-array field of strings, e.g. tag or
// image lists. Non-string elements are skipped.
func (r Record) GetStringSlice(key string) []string {
	raw, ok := r[key].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Expand returns the expanded relation record for the given field, or
// nil when the relation was not expanded or is empty.
func (r Record) Expand(field string) Record {
	exp, ok := r["expand"].(map[string]any)
	if !ok {
		return nil
	}

	switch v := exp[field].(type) {
	case map[string]any:
		return Record(v)
	case []any:
		// Multi-relation expand; single-relation callers take the first.
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				return Record(m)
			}
		}
	}
	return nil
}

// ExpandAll returns every expanded record of a multi-relation field.
func (r Record) ExpandAll(field string) []Record {
	exp, ok := r["expand"].(map[string]any)
	if !ok {
		return nil
	}

	raw, ok := exp[field].([]any)
	if !ok {
		return nil
	}

	out := make([]Record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
