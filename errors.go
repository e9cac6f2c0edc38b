// FILE: lixenwraith/topl/errors.go
package topl

import "errors"

var (
	// ErrCircularReference is returned (wrapped) when internal resolution
	// does not reach a fixed point within the pass cap. The partially
	// resolved *Config is still returned alongside it; use errors.Is to
	// detect the condition and decide whether it is fatal.
	ErrCircularReference = errors.New("circular placeholder reference detected")

	// ErrConfigNotFound is returned when a configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrUnresolved is returned by strict-mode builds when placeholders
	// remain after both resolution phases.
	ErrUnresolved = errors.New("unresolved placeholders remain")

	// ErrNotTable is returned when a dotted path used for Scan refers to
	// a value that is not a table (map).
	ErrNotTable = errors.New("path does not refer to a table")
)
