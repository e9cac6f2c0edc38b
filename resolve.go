// FILE: lixenwraith/topl/resolve.go
package topl

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxPasses bounds the internal resolution loop. Ten passes cover
// reference chains ten levels deep; legitimately deeper chains are rare
// and callers can raise the cap through Options. The cap exists to turn
// non-termination (reference cycles) into a detectable condition, not to
// express a nesting limit.
const DefaultMaxPasses = 10

// placeholderPattern matches {{content}} where content contains no brace
// characters. Group 1 captures the content, which is trimmed before
// interpretation as a dotted path (internal phase) or a parameter name
// (external phase).
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Options configures a resolution call.
type Options struct {
	// MaxPasses caps the internal resolution loop. Zero or negative
	// selects DefaultMaxPasses.
	MaxPasses int
}

// DefaultOptions returns the standard resolution options.
func DefaultOptions() Options {
	return Options{MaxPasses: DefaultMaxPasses}
}

// Resolve performs two-phase placeholder resolution over data and
// returns the result wrapped in a *Config. The input document is never
// mutated; resolution operates on a deep copy.
//
// params supplies the external phase; it may be nil. If internal
// resolution does not stabilize within the default pass cap, the
// partially resolved *Config is returned together with an error wrapping
// ErrCircularReference.
func Resolve(data map[string]any, params map[string]string) (*Config, error) {
	return ResolveWithOptions(data, params, DefaultOptions())
}

// ResolveWithOptions is Resolve with an explicit pass cap.
func ResolveWithOptions(data map[string]any, params map[string]string, opts Options) (*Config, error) {
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	working, _ := deepCopyTree(data).(map[string]any)
	if working == nil {
		working = make(map[string]any)
	}

	// Phase 1: internal references, iterated to a fixed point. A pass
	// that changes no leaf ends the loop.
	stable := false
	passes := 0
	for pass := 0; pass < maxPasses; pass++ {
		passes++
		changed := false
		walkStrings(working, func(leaf stringLeaf) {
			original := leaf.value()
			if resolved := resolveInternalOnce(original, working); resolved != original {
				leaf.set(resolved)
				changed = true
			}
		})
		if !changed {
			stable = true
			break
		}
	}

	// A pure reference cycle such as a = "{{b}}", b = "{{a}}" does not
	// necessarily exhaust the cap: substitution can collapse it to a
	// self-referential token ({{a}} whose path holds the literal string
	// "{{a}}") that is textually stable. At a fixed point, a remaining
	// token whose path still resolves to a scalar can only be such a
	// self-reference, so scan for those too.
	circular := !stable
	if stable {
		walkStrings(working, func(leaf stringLeaf) {
			for _, token := range placeholderPattern.FindAllString(leaf.value(), -1) {
				path := strings.TrimSpace(token[2 : len(token)-2])
				if value, found := Lookup(working, path); found {
					if _, scalar := renderScalar(value); scalar {
						circular = true
					}
				}
			}
		})
	}

	// Phase 2: external parameters, single pass.
	if len(params) > 0 {
		walkStrings(working, func(leaf stringLeaf) {
			original := leaf.value()
			if resolved := resolveExternal(original, params); resolved != original {
				leaf.set(resolved)
			}
		})
	}

	// Phase 3: collect residual tokens, deduplicated and sorted.
	seen := make(map[string]bool)
	var unresolved []string
	walkStrings(working, func(leaf stringLeaf) {
		for _, token := range placeholderPattern.FindAllString(leaf.value(), -1) {
			if !seen[token] {
				seen[token] = true
				unresolved = append(unresolved, token)
			}
		}
	})
	sort.Strings(unresolved)

	cfg := &Config{data: working, unresolved: unresolved}
	if circular {
		if !stable {
			return cfg, fmt.Errorf("%w: no fixed point after %d passes", ErrCircularReference, passes)
		}
		return cfg, fmt.Errorf("%w: self-referential placeholders remain", ErrCircularReference)
	}
	return cfg, nil
}

// resolveInternalOnce substitutes one pass of internal references in s.
// A token is internal when its trimmed content, read as a dotted path,
// names a scalar value in root. Misses and non-scalar hits leave the
// token untouched, braces included. Replacements are not re-scanned;
// multi-hop chains converge across passes, not within one.
func resolveInternalOnce(s string, root map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		path := strings.TrimSpace(token[2 : len(token)-2])
		value, found := Lookup(root, path)
		if !found {
			return token
		}
		text, scalar := renderScalar(value)
		if !scalar {
			return token
		}
		return text
	})
}

// resolveExternal substitutes external parameters in s. Lookup is a flat
// name match, no path traversal. Substitution is single-pass over the
// original text: values containing brace characters are inserted
// verbatim and never re-scanned, so parameter values cannot smuggle in
// new placeholders.
func resolveExternal(s string, params map[string]string) string {
	if len(params) == 0 {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := strings.TrimSpace(token[2 : len(token)-2])
		if value, ok := params[name]; ok {
			return value
		}
		return token
	})
}

// renderScalar returns the canonical textual form of a scalar leaf
// value. The second return value is false for tables, arrays, and nil;
// those are not meaningfully stringifiable and their tokens stay
// unresolved.
func renderScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case time.Time:
		return v.Format(time.RFC3339), true
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(value).Float(), 'f', -1, 64), true
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(value).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(value).Uint(), 10), true
	default:
		return "", false
	}
}
