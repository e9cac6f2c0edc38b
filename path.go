// FILE: lixenwraith/topl/path.go
package topl

import "strings"

// Lookup returns the value at the dot-separated path inside root.
// The second return value reports whether the path exists. Every
// intermediate segment must name a map; a missing key, a non-map value
// mid-traversal, or an empty/whitespace-only path all yield (nil, false).
// Absence is a normal outcome, never an error.
func Lookup(root map[string]any, dottedPath string) (any, bool) {
	if strings.TrimSpace(dottedPath) == "" {
		return nil, false
	}

	var current any = root
	for _, segment := range strings.Split(dottedPath, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, exists := m[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}
