package html2docbook

import (
	"context"
	"fmt"

	"github.com/avrile/go-html2docbook/internal/markup"
	"github.com/avrile/go-html2docbook/internal/pipeline"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.Stage   = (*pipeline.Sanitizer)(nil)
	_ pipeline.Stage   = (*pipeline.ListReconstructor)(nil)
	_ pipeline.Stage   = (*pipeline.TableTransformer)(nil)
	_ pipeline.Stage   = (*pipeline.StructuralNormalizer)(nil)
	_ markdownRenderer = (*goldmarkRenderer)(nil)
	_ markdownExporter = (*htmlToMarkdownExporter)(nil)
)

// Service orchestrates the HTML cleanup pipeline.
type Service struct {
	cfg        serviceConfig
	renderer   markdownRenderer
	exporter   markdownExporter
	sanitizer  pipeline.Stage
	lists      pipeline.Stage
	tables     pipeline.Stage
	normalizer pipeline.Stage
	formatter  *pipeline.Formatter
}

// namedStage pairs a stage with the name reported to observers.
type namedStage struct {
	name  string
	stage pipeline.Stage
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithIndent).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			indent:         DefaultIndent,
			maxInputSize:   DefaultMaxInputSize,
			detectLanguage: true,
		},
		renderer:  newGoldmarkRenderer(),
		exporter:  &htmlToMarkdownExporter{},
		sanitizer: &pipeline.Sanitizer{},
		lists:     &pipeline.ListReconstructor{},
		tables:    &pipeline.TableTransformer{},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Stages that depend on configuration are created after options apply.
	s.normalizer = pipeline.NewStructuralNormalizer(s.cfg.detectLanguage)
	s.formatter = pipeline.NewFormatter(s.cfg.indent)

	return s
}

// Convert runs the full pipeline and returns the formatted structured
// markup. The context is used for cancellation.
func (s *Service) Convert(ctx context.Context, input Input) (string, error) {
	doc, err := s.prepare(ctx, input)
	if err != nil {
		return "", err
	}

	for _, st := range s.stages() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.runStage(ctx, st, doc)
	}

	return s.formatter.Format(doc), nil
}

// ConvertToMarkdown cleans up the input and returns it as markdown rather
// than structured markup. Only the repair stages run: the markdown
// renderer consumes native tables, headings, and emphasis directly, and
// has no mapping for the structured output vocabulary.
func (s *Service) ConvertToMarkdown(ctx context.Context, input Input) (string, error) {
	doc, err := s.prepare(ctx, input)
	if err != nil {
		return "", err
	}

	for _, st := range s.repairStages() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.runStage(ctx, st, doc)
	}

	body := doc.Body()
	if body == nil {
		return "", nil
	}
	return s.exporter.ToMarkdown(ctx, markup.RenderChildren(body))
}

// prepare validates input, renders markdown input to HTML when needed,
// and parses the content into a document tree.
func (s *Service) prepare(ctx context.Context, input Input) (*markup.Document, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	content := input.HTML
	if input.Markdown != "" {
		var err error
		content, err = s.renderer.ToHTML(ctx, input.Markdown)
		if err != nil {
			return nil, fmt.Errorf("converting markdown: %w", err)
		}
	}

	doc, err := markup.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// repairStages are the passes that fix paste damage while staying in the
// native HTML vocabulary.
func (s *Service) repairStages() []namedStage {
	return []namedStage{
		{StageSanitize, s.sanitizer},
		{StageLists, s.lists},
	}
}

// stages is the full pipeline in fixed order.
func (s *Service) stages() []namedStage {
	return append(s.repairStages(),
		namedStage{StageTables, s.tables},
		namedStage{StageNormalize, s.normalizer},
	)
}

// runStage applies one stage to the document. A stage that fails, whether
// by error or by panic, leaves the document exactly as the stage found it.
func (s *Service) runStage(ctx context.Context, st namedStage, doc *markup.Document) {
	backup := doc.Clone()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("stage %s: internal error: %v", st.name, r)
			}
		}()
		return st.stage.Transform(ctx, doc)
	}()
	if err != nil {
		doc.Root = backup.Root
	}

	s.observe(st.name, doc)
}

// observe reports the post-stage document body to the registered observer.
func (s *Service) observe(stage string, doc *markup.Document) {
	if s.cfg.observer == nil {
		return
	}
	body := doc.Body()
	if body == nil {
		return
	}
	s.cfg.observer(stage, markup.RenderChildren(body))
}

// validateInput checks content presence and size limits.
//
// This is the trust boundary for library users who build Input manually.
// Stages past this point never reject input; they degrade to their own
// input on failure instead.
func (s *Service) validateInput(input Input) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if len(input.HTML) > s.cfg.maxInputSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(input.HTML), s.cfg.maxInputSize)
	}
	if len(input.Markdown) > s.cfg.maxInputSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(input.Markdown), s.cfg.maxInputSize)
	}
	return nil
}
