package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	html2docbook "github.com/avrile/go-html2docbook"

	"github.com/avrile/go-html2docbook/internal/config"
)

// envConfig holds configuration read from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // HTML2DOCBOOK_CONFIG: config file name or path
	InputDir   string // HTML2DOCBOOK_INPUT_DIR: default input directory
	OutputDir  string // HTML2DOCBOOK_OUTPUT_DIR: default output directory
	Format     string // HTML2DOCBOOK_FORMAT: docbook or markdown
	Indent     string // HTML2DOCBOOK_INDENT: indent unit
	Workers    int    // HTML2DOCBOOK_WORKERS: parallel workers
}

// knownEnvVars is the set warnUnknownEnvVars checks prefixed names
// against, so a typoed variable gets flagged instead of ignored.
var knownEnvVars = map[string]bool{
	"HTML2DOCBOOK_CONFIG":     true,
	"HTML2DOCBOOK_INPUT_DIR":  true,
	"HTML2DOCBOOK_OUTPUT_DIR": true,
	"HTML2DOCBOOK_FORMAT":     true,
	"HTML2DOCBOOK_INDENT":     true,
	"HTML2DOCBOOK_WORKERS":    true,
}

// loadEnvConfig snapshots the recognized variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HTML2DOCBOOK_CONFIG"),
		InputDir:   os.Getenv("HTML2DOCBOOK_INPUT_DIR"),
		OutputDir:  os.Getenv("HTML2DOCBOOK_OUTPUT_DIR"),
		Format:     os.Getenv("HTML2DOCBOOK_FORMAT"),
		Indent:     os.Getenv("HTML2DOCBOOK_INDENT"),
	}

	// Malformed or out-of-range values are ignored rather than fatal, so
	// a stale CI variable cannot break every conversion.
	if workers := os.Getenv("HTML2DOCBOOK_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 && w <= html2docbook.MaxPoolSize {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized HTML2DOCBOOK_*
// variable so typos do not silently do nothing.
func warnUnknownEnvVars(logger *logrus.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "HTML2DOCBOOK_") {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			logger.Warnf("unknown environment variable %s", name)
		}
	}
}

// applyEnvConfig fills fields that neither flags nor the config file set.
// Environment values rank below both and above the built-in defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	fill := func(dst *string, val string) {
		if val != "" && *dst == "" {
			*dst = val
		}
	}
	fill(&cfg.Input.DefaultDir, env.InputDir)
	fill(&cfg.Output.DefaultDir, env.OutputDir)
	fill(&cfg.Output.Format, env.Format)
	fill(&cfg.Convert.Indent, env.Indent)
}
