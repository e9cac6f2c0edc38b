// FILE: lixenwraith/topl/doc.go

// Package topl resolves {{placeholder}} tokens embedded in the string
// values of parsed TOML (or JSON/YAML) configuration data.
//
// Resolution runs in two phases over a deep copy of the input document:
//  1. Internal phase: tokens whose content, read as a dot-separated path,
//     names a scalar value elsewhere in the same document are replaced by
//     that value. The phase iterates until a pass changes nothing, or
//     until the pass cap is reached.
//  2. External phase: remaining tokens are matched against a flat
//     caller-supplied parameter map in a single pass.
//
// Tokens still present after both phases are collected, deduplicated and
// sorted into the result's unresolved list. Unresolved placeholders are
// never an error by themselves; "resolve what you can and report the
// rest" is the designed failure mode.
//
// Quick Start:
//
//	data, err := topl.LoadFile("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := topl.Resolve(data, map[string]string{"env": "prod"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	url, _ := cfg.String("database.url")
//	if cfg.HasUnresolved() {
//	    log.Printf("unresolved: %v", cfg.Unresolved())
//	}
//
// Or with the builder:
//
//	cfg, err := topl.NewBuilder().
//	    WithFile("config.toml").
//	    WithParamsFromEnv("TOPL_").
//	    WithParam("region", "eu-west-1").
//	    Build()
//
// Circular references:
//
// Internal resolution that fails to stabilize within the pass cap
// (default 10, see DefaultMaxPasses) almost always indicates a reference
// cycle such as a = "{{b}}", b = "{{a}}". Resolve then returns the
// partially resolved *Config together with ErrCircularReference; callers
// decide whether that is fatal. Builder.WithStrict(true) and the topl
// CLI treat it as a hard error.
//
// Placeholder syntax is exactly {{content}} where content contains no
// brace characters; content is trimmed of surrounding whitespace before
// interpretation. A placeholder whose path names a table or an array is
// left untouched rather than stringified. Substituted parameter values
// are never re-scanned for new tokens, so brace characters inside values
// cannot trigger recursive expansion.
//
// The input document is never mutated: resolution operates on a deep
// copy, which makes concurrent Resolve calls over a shared document safe
// without locking.
package topl
