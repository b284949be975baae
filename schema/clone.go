package schema

// builtinClone is the default cloner used when a field declares no custom
// one. Scalars, strings, handles and the fixed-size vector types copy by
// value; slices and maps are deep-copied so two components never share
// mutable state through a default.
func builtinClone(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []float32:
		out := make([]float32, len(val))
		copy(out, val)
		return out, nil
	case []int32:
		out := make([]int32, len(val))
		copy(out, val)
		return out, nil
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			c, err := builtinClone(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case Bag:
		out := make(Bag, len(val))
		for k, e := range val {
			c, err := builtinClone(e)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			c, err := builtinClone(e)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	default:
		// Everything else (numbers, bools, strings, handles, VecN) is a
		// value type as stored.
		return v, nil
	}
}

func cloner(f Field) CloneFunc {
	if f.Clone != nil {
		return f.Clone
	}
	return builtinClone
}

// absent implements the "falsy" test used by required-field validation:
// nil, false, numeric zero, empty string, empty collection, and the null
// handle sentinel all count as absent.
func absent(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case int:
		return val == 0
	case int32:
		return val == 0
	case int64:
		return val == 0
	case uint32:
		return val == 0
	case float32:
		return val == 0
	case float64:
		return val == 0
	case string:
		return val == ""
	case []float32:
		return len(val) == 0
	case []int32:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case Bag:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		if h, ok := asLocal(v); ok {
			return h < 0
		}
		return false
	}
}
