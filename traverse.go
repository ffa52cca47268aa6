package kvfile

import "fmt"

// getPath performs the generic structured traversal spec §4.6 describes for
// get-in: descend through value by the path components, via mapping key
// lookup or sequence index at each step, yielding (nil, false) as soon as
// any intermediate component is absent.
func getPath(value any, path []any) (any, bool) {
	cur := value
	for _, step := range path {
		next, ok := descend(cur, step)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func descend(cur any, step any) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[toMapKey(step)]
		return v, ok
	case []any:
		idx, ok := toIndex(step)
		if !ok || idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

func toMapKey(step any) string {
	if s, ok := step.(string); ok {
		return s
	}
	return fmt.Sprint(step)
}

func toIndex(step any) (int, bool) {
	switch v := step.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// updateSub is the conventional nested update spec §4.6 calls update-sub:
// it applies f to the value located at path within root, creating missing
// intermediate mappings on the way down. An empty path applies f to root
// itself, which is what makes update-in's "sub-empty ? f(old-value) :
// update-sub(...)" collapse into a single call in kv.go.
//
// Only mappings auto-vivify on a missing intermediate step; sequences are
// never implicitly grown, matching the conventional assoc-in semantics
// this is modeled on.
func updateSub(root any, path []any, f func(any) any) any {
	if len(path) == 0 {
		return f(root)
	}

	step := path[0]
	rest := path[1:]

	switch r := root.(type) {
	case map[string]any:
		key := toMapKey(step)
		r[key] = updateSub(r[key], rest, f)
		return r
	case []any:
		if idx, ok := toIndex(step); ok && idx >= 0 && idx < len(r) {
			r[idx] = updateSub(r[idx], rest, f)
			return r
		}
		return map[string]any{toMapKey(step): updateSub(nil, rest, f)}
	default:
		return map[string]any{toMapKey(step): updateSub(nil, rest, f)}
	}
}
