// FILE: lixenwraith/topl/builder.go
package topl

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ValidatorFunc validates a resolved Config. It receives the fully
// resolved *Config and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for loading and resolving
// configuration.
type Builder struct {
	data       map[string]any
	params     map[string]string
	file       string
	opts       Options
	strict     bool
	validators []ValidatorFunc
	err        error
}

// NewBuilder creates a new resolution builder.
func NewBuilder() *Builder {
	return &Builder{
		params:     make(map[string]string),
		opts:       DefaultOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the configuration file to load.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithData sets an already-parsed document instead of a file. When both
// a file and data are supplied, data wins.
func (b *Builder) WithData(data map[string]any) *Builder {
	b.data = data
	return b
}

// WithParams merges a map of external parameters.
func (b *Builder) WithParams(params map[string]string) *Builder {
	for k, v := range params {
		b.params[k] = v
	}
	return b
}

// WithParam sets a single external parameter.
func (b *Builder) WithParam(name, value string) *Builder {
	b.params[name] = value
	return b
}

// WithParamsFromEnv collects external parameters from environment
// variables carrying the given prefix. The prefix is stripped and the
// remainder lowercased, so with prefix "TOPL_" the variable
// TOPL_REGION=eu supplies the parameter {{region}}. Explicitly set
// parameters take precedence over environment-derived ones.
func (b *Builder) WithParamsFromEnv(prefix string) *Builder {
	if prefix == "" {
		return b
	}
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		param := strings.ToLower(strings.TrimPrefix(name, prefix))
		if param == "" {
			continue
		}
		if _, explicit := b.params[param]; !explicit {
			b.params[param] = value
		}
	}
	return b
}

// WithMaxPasses overrides the internal resolution pass cap.
func (b *Builder) WithMaxPasses(n int) *Builder {
	b.opts.MaxPasses = n
	return b
}

// WithStrict controls failure policy. In strict mode a circular
// reference or any residual unresolved placeholder fails the build; in
// the default mode both are reported through the returned error and
// Config.Unresolved without discarding the partial result.
func (b *Builder) WithStrict(strict bool) *Builder {
	b.strict = strict
	return b
}

// WithValidator adds a validation function that runs after resolution.
// Multiple validators can be added and are executed in the order they
// are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build loads, resolves, and validates the configuration.
//
// In non-strict mode the *Config is returned even when the error wraps
// ErrCircularReference, so callers can treat the condition as a warning.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	data := b.data
	if data == nil {
		if b.file == "" {
			return nil, fmt.Errorf("no configuration source: call WithFile or WithData")
		}
		loaded, err := LoadFile(b.file)
		if err != nil {
			return nil, err
		}
		data = loaded
	}

	cfg, err := ResolveWithOptions(data, b.params, b.opts)
	if err != nil {
		if b.strict {
			return nil, err
		}
		// Non-fatal: hand back the partial result with the condition.
		return cfg, err
	}

	if b.strict && cfg.HasUnresolved() {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, strings.Join(cfg.Unresolved(), ", "))
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error. A circular reference is
// fatal here only in strict mode.
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil && cfg == nil {
		panic(fmt.Sprintf("topl build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and decodes the resolved configuration into the
// provided target struct pointer.
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrCircularReference) {
		return err
	}
	if cfg == nil {
		return err
	}

	if scanErr := cfg.Scan("", target); scanErr != nil {
		return fmt.Errorf("failed to scan resolved config into target: %w", scanErr)
	}

	// ErrCircularReference or nil
	return err
}
