// FILE: lixenwraith/topl/walk.go
package topl

import "sort"

// stringLeaf is an in-place rewrite handle for one string value inside a
// nested document. Exactly one of mapParent/seqParent is set; reading
// through the handle always observes the current value at that location.
type stringLeaf struct {
	mapParent map[string]any
	seqParent []any
	key       string
	index     int
}

func (l stringLeaf) value() string {
	if l.mapParent != nil {
		return l.mapParent[l.key].(string)
	}
	return l.seqParent[l.index].(string)
}

func (l stringLeaf) set(s string) {
	if l.mapParent != nil {
		l.mapParent[l.key] = s
		return
	}
	l.seqParent[l.index] = s
}

// walkStrings visits every string leaf in node, depth-first. Map keys
// are visited in sorted order so traversal is deterministic; sequence
// elements are visited in index order. The walker itself never mutates
// anything; callers rewrite through the supplied handle. A traversal
// must be restarted after a round of mutation, which is exactly how the
// resolution passes use it.
func walkStrings(node any, visit func(stringLeaf)) {
	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := n[k].(type) {
			case string:
				visit(stringLeaf{mapParent: n, key: k})
			case map[string]any, []any, []map[string]any:
				walkStrings(v, visit)
			}
		}
	case []any:
		for i, v := range n {
			switch v.(type) {
			case string:
				visit(stringLeaf{seqParent: n, index: i})
			case map[string]any, []any, []map[string]any:
				walkStrings(v, visit)
			}
		}
	case []map[string]any:
		// BurntSushi/toml decodes arrays of tables into this shape.
		for _, m := range n {
			walkStrings(m, visit)
		}
	}
}

// deepCopyTree returns an independent copy of a nested document. Maps
// and slices are cloned recursively; scalar leaves are shared, which is
// safe because resolution only ever replaces leaves, never mutates them.
func deepCopyTree(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = deepCopyTree(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = deepCopyTree(v)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(n))
		for i, m := range n {
			out[i] = deepCopyTree(m).(map[string]any)
		}
		return out
	default:
		return n
	}
}
