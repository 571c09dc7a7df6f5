package html2docbook

import (
	"strings"

	"github.com/avrile/go-html2docbook/internal/pipeline"
)

// DefaultMaxInputSize bounds input size when none is configured.
const DefaultMaxInputSize = 8 << 20 // 8 MiB

// DefaultIndent is the indent unit for formatted output.
const DefaultIndent = pipeline.DefaultIndent

// Stage names reported to stage observers, in pipeline order.
const (
	StageSanitize  = "sanitize"
	StageLists     = "lists"
	StageTables    = "tables"
	StageNormalize = "normalize"
)

// Input contains conversion parameters. Exactly one of HTML or Markdown
// must be set.
type Input struct {
	HTML     string // HTML content, typically a word-processor clipboard dump
	Markdown string // Markdown content, rendered to HTML before the pipeline
}

// Validate checks that exactly one content field is set.
func (in Input) Validate() error {
	hasHTML := strings.TrimSpace(in.HTML) != ""
	hasMarkdown := strings.TrimSpace(in.Markdown) != ""
	switch {
	case hasHTML && hasMarkdown:
		return ErrAmbiguousInput
	case !hasHTML && !hasMarkdown:
		return ErrEmptyInput
	}
	return nil
}

// StageObserver receives the serialized document after each pipeline stage.
// Used by debugging tools to dump intermediate trees.
type StageObserver func(stage string, content string)

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	indent         string
	maxInputSize   int
	detectLanguage bool
	observer       StageObserver
}

// WithIndent sets the indent unit for formatted output.
func WithIndent(indent string) Option {
	return func(s *Service) {
		s.cfg.indent = indent
	}
}

// WithMaxInputSize sets the input size limit in bytes.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxInputSize(n int) Option {
	if n <= 0 {
		panic("html2docbook: WithMaxInputSize limit must be positive")
	}
	return func(s *Service) {
		s.cfg.maxInputSize = n
	}
}

// WithLanguageDetection toggles content-based language detection for
// code blocks that carry no language class.
func WithLanguageDetection(enabled bool) Option {
	return func(s *Service) {
		s.cfg.detectLanguage = enabled
	}
}

// WithStageObserver registers a callback invoked after each pipeline stage
// with the stage name and the serialized document body.
func WithStageObserver(fn StageObserver) Option {
	return func(s *Service) {
		s.cfg.observer = fn
	}
}
