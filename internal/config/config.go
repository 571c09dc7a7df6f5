package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avrile/go-html2docbook/internal/fileutil"
	"github.com/avrile/go-html2docbook/internal/yamlutil"
)

var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Output format names.
const (
	FormatDocBook  = "docbook"
	FormatMarkdown = "markdown"
)

// Field length caps. Directories get PATH_MAX; the short fields get a
// limit that no legitimate value comes near.
const (
	MaxDirLength       = 4096
	MaxIndentLength    = 16
	MaxExtensionLength = 16

	// MaxInputSizeLimit caps convert.maxInputSize at 256 MiB.
	MaxInputSizeLimit = 256 << 20
)

// Config holds all configuration for conversion runs.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
	Debug   DebugConfig   `yaml:"debug"`
}

// InputConfig selects where inputs come from.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // used when no input argument is given
}

// OutputConfig selects where converted documents go and their format.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty places outputs next to inputs
	Format     string `yaml:"format"`     // "docbook" (default) or "markdown"
	Extension  string `yaml:"extension"`  // override with leading dot, e.g. ".dbk"
}

// ConvertConfig tunes the conversion pipeline.
type ConvertConfig struct {
	Indent         string `yaml:"indent"`         // spaces and tabs only (default: two spaces)
	DetectLanguage bool   `yaml:"detectLanguage"` // infer code block languages
	MaxInputSize   int    `yaml:"maxInputSize"`   // bytes, 0 = library default
}

// DebugConfig exposes pipeline internals.
type DebugConfig struct {
	StageDir string `yaml:"stageDir"` // dump per-stage trees here (empty = disabled)
}

// Validate checks field lengths and value ranges. LoadConfig runs it on
// every loaded file; callers that build a Config by hand can run it
// themselves.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		limit int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxDirLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxDirLength},
		{"output.extension", c.Output.Extension, MaxExtensionLength},
		{"convert.indent", c.Convert.Indent, MaxIndentLength},
		{"debug.stageDir", c.Debug.StageDir, MaxDirLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.limit); err != nil {
			return err
		}
	}

	if c.Output.Format != "" {
		switch strings.ToLower(c.Output.Format) {
		case FormatDocBook, FormatMarkdown:
		default:
			return fmt.Errorf("output.format: invalid value %q (must be docbook or markdown)", c.Output.Format)
		}
	}

	if c.Output.Extension != "" && !strings.HasPrefix(c.Output.Extension, ".") {
		return fmt.Errorf("output.extension: must start with a dot, got %q", c.Output.Extension)
	}

	if strings.Trim(c.Convert.Indent, " \t") != "" {
		return fmt.Errorf("convert.indent: must contain only spaces and tabs")
	}

	if c.Convert.MaxInputSize < 0 {
		return fmt.Errorf("convert.maxInputSize: must be >= 0, got %d", c.Convert.MaxInputSize)
	}
	if c.Convert.MaxInputSize > MaxInputSizeLimit {
		return fmt.Errorf("convert.maxInputSize: must be at most %d, got %d", MaxInputSizeLimit, c.Convert.MaxInputSize)
	}

	return nil
}

func validateFieldLength(field, value string, limit int) error {
	if len(value) > limit {
		return fmt.Errorf("%w: %s is %d chars (limit %d)", ErrFieldTooLong, field, len(value), limit)
	}
	return nil
}

// DefaultConfig returns a neutral configuration. Unset convert fields fall
// back to library defaults at service construction.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a config file. A name containing a path separator is
// used as-is; a bare name is resolved against the working directory and
// the user config directory. A file that cannot be found is an error,
// never a silent fallback to defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	data, err := os.ReadFile(path) // #nosec G304 -- the user names the config file
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bare config names resolve with these extensions, .yaml before .yml.
var configExtensions = []string{".yaml", ".yml"}

// resolveConfigPath turns a bare name into a path, checking the working
// directory and then os.UserConfigDir()/go-html2docbook.
func resolveConfigPath(name string) (string, error) {
	var candidates []string
	for _, ext := range configExtensions {
		candidates = append(candidates, name+ext)
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range configExtensions {
			candidates = append(candidates, filepath.Join(userDir, "go-html2docbook", name+ext))
		}
	}

	for _, path := range candidates {
		if fileutil.FileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}
