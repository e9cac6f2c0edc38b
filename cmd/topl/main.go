// FILE: lixenwraith/topl/cmd/topl/main.go

// Command topl resolves {{placeholder}} tokens in a TOML (or JSON/YAML)
// configuration file and prints the resolved document as TOML.
//
// Usage:
//
//	topl [flags] <file>
//	topl config.toml -p name=world -p env=prod
//	TOPL_NAME=world topl --env-prefix TOPL_ config.toml
//
// The resolved document goes to stdout (or --output, written atomically).
// Exit status is 1 when loading fails, when a circular reference is
// detected, or when unresolved placeholders remain after resolution.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/lixenwraith/topl"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("topl", pflag.ContinueOnError)
	paramFlags := flags.StringArrayP("param", "p", nil, "external parameter as name=value (repeatable)")
	envPrefix := flags.String("env-prefix", "", "collect external parameters from environment variables with this prefix")
	output := flags.StringP("output", "o", "", "write resolved TOML to a file instead of stdout")
	strict := flags.Bool("strict", false, "fail without printing when placeholders remain unresolved")
	verbose := flags.BoolP("verbose", "v", false, "enable debug logging")
	maxPasses := flags.Int("max-passes", topl.DefaultMaxPasses, "internal resolution pass cap")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: topl [flags] <file>\n\nFlags:\n%s", flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	file := flags.Arg(0)
	if file == "" {
		file = topl.DiscoverFile(topl.DefaultDiscoveryOptions("topl"), args)
		if file == "" {
			flags.Usage()
			return 2
		}
		logger.Debug("discovered config file", "path", file)
	}

	params, err := parseParams(*paramFlags)
	if err != nil {
		logger.Error("invalid parameter", "error", err)
		return 2
	}

	builder := topl.NewBuilder().
		WithFile(file).
		WithParams(params).
		WithMaxPasses(*maxPasses)
	if *envPrefix != "" {
		builder = builder.WithParamsFromEnv(*envPrefix)
	}

	logger.Debug("resolving", "file", file, "params", len(params))

	cfg, err := builder.Build()
	if err != nil {
		if cfg == nil {
			logger.Error("resolution failed", "error", err)
			return 1
		}
		if errors.Is(err, topl.ErrCircularReference) {
			logger.Error("circular reference detected", "error", err)
			return 1
		}
	}

	if *strict && cfg.HasUnresolved() {
		logger.Error("unresolved placeholders", "tokens", strings.Join(cfg.Unresolved(), ", "))
		return 1
	}

	if *output != "" {
		if err := cfg.Save(*output); err != nil {
			logger.Error("failed to write output", "path", *output, "error", err)
			return 1
		}
	} else if err := cfg.Dump(); err != nil {
		logger.Error("failed to write output", "error", err)
		return 1
	}

	if cfg.HasUnresolved() {
		logger.Warn("unresolved placeholders", "tokens", strings.Join(cfg.Unresolved(), ", "))
		return 1
	}

	logger.Debug("all placeholders resolved")
	return 0
}

// parseParams converts repeated name=value flags into a parameter map.
func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", entry)
		}
		params[name] = value
	}
	return params, nil
}
