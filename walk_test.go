// FILE: lixenwraith/topl/walk_test.go
package topl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWalkStringsOrder verifies deterministic depth-first traversal:
// sorted keys for maps, index order for sequences
func TestWalkStringsOrder(t *testing.T) {
	doc := map[string]any{
		"b": map[string]any{"c": "second"},
		"a": "first",
		"d": []any{"third", "fourth"},
	}

	var visited []string
	walkStrings(doc, func(leaf stringLeaf) {
		visited = append(visited, leaf.value())
	})

	assert.Equal(t, []string{"first", "second", "third", "fourth"}, visited)
}

// TestWalkStringsNesting tests traversal through mixed map/sequence nesting
func TestWalkStringsNesting(t *testing.T) {
	doc := map[string]any{
		"outer": []any{
			map[string]any{"inner": "a"},
			[]any{"b", []any{"c"}},
			"d",
		},
	}

	var visited []string
	walkStrings(doc, func(leaf stringLeaf) {
		visited = append(visited, leaf.value())
	})

	assert.Equal(t, []string{"a", "b", "c", "d"}, visited)
}

// TestWalkStringsSkipsNonStrings verifies only string leaves are visited
func TestWalkStringsSkipsNonStrings(t *testing.T) {
	doc := map[string]any{
		"str":   "yes",
		"num":   int64(1),
		"float": 1.5,
		"bool":  true,
		"nil":   nil,
		"nums":  []any{int64(1), int64(2)},
	}

	count := 0
	walkStrings(doc, func(leaf stringLeaf) {
		count++
		assert.Equal(t, "yes", leaf.value())
	})
	assert.Equal(t, 1, count)
}

// TestLeafRewrite verifies in-place rewriting through the handle, and
// that a re-read through the same handle observes the new value
func TestLeafRewrite(t *testing.T) {
	doc := map[string]any{
		"key":  "old",
		"list": []any{"old"},
	}

	var leaves []stringLeaf
	walkStrings(doc, func(leaf stringLeaf) {
		leaves = append(leaves, leaf)
	})
	require.Len(t, leaves, 2)

	for _, leaf := range leaves {
		leaf.set("new")
		assert.Equal(t, "new", leaf.value())
	}

	assert.Equal(t, "new", doc["key"])
	assert.Equal(t, "new", doc["list"].([]any)[0])
}

// TestDeepCopyTree verifies copies are fully independent of the original
func TestDeepCopyTree(t *testing.T) {
	original := map[string]any{
		"scalar": "value",
		"table":  map[string]any{"k": "v"},
		"list":   []any{"x", map[string]any{"y": "z"}},
	}

	copied := deepCopyTree(original).(map[string]any)
	require.Equal(t, original, copied)

	// Mutate every level of the copy
	copied["scalar"] = "changed"
	copied["table"].(map[string]any)["k"] = "changed"
	copied["list"].([]any)[0] = "changed"
	copied["list"].([]any)[1].(map[string]any)["y"] = "changed"

	assert.Equal(t, "value", original["scalar"])
	assert.Equal(t, "v", original["table"].(map[string]any)["k"])
	assert.Equal(t, "x", original["list"].([]any)[0])
	assert.Equal(t, "z", original["list"].([]any)[1].(map[string]any)["y"])
}
