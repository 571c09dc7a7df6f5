package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	html2docbook "github.com/avrile/go-html2docbook"

	"github.com/avrile/go-html2docbook/internal/config"
)

// Sentinel errors for convert orchestration.
var (
	ErrNoInput       = errors.New("no input specified and no default input directory configured")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrStdoutBatch   = errors.New("--stdout requires a single input file")
)

// conversionParams groups the resolved settings shared by every file in
// a batch.
type conversionParams struct {
	markdown bool   // emit markdown instead of structured markup
	stageDir string // dump the tree after each pass here (empty = disabled)
	stdout   bool
	opts     []html2docbook.Option
}

// runConvert drives a conversion run end to end: settle the effective
// configuration, discover inputs, convert the batch, report the outcome.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, newPool poolFactory, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Logger)

	cfg, err := loadEffectiveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	mergeFlags(flags, cfg)
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	markdown, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	outputDir := resolveOutputDir(flags.output.dir, cfg)
	outExt := outputExtension(cfg, markdown)

	files, err := discoverFiles(inputPath, outputDir, outExt, flags.fromMarkdown)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found in %s", inputPath)
	}
	if flags.output.stdout && len(files) > 1 {
		return fmt.Errorf("%w: found %d files", ErrStdoutBatch, len(files))
	}

	params := &conversionParams{
		markdown: markdown,
		stageDir: cfg.Debug.StageDir,
		stdout:   flags.output.stdout,
		opts:     serviceOptions(cfg),
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := html2docbook.ResolvePoolSize(workers)
	env.Logger.Debugf("converting %d file(s) with %d worker(s)", len(files), poolSize)

	pool := newPool(poolSize, params.opts...)
	results := convertBatch(ctx, pool, files, params)

	failed := printResults(results, flags.common, params.stdout, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed", failed)
	}
	return nil
}

// loadEffectiveConfig loads the config file named by the flag, or by the
// environment when the flag is empty. Without either, defaults apply.
func loadEffectiveConfig(flagPath string, envCfg *envConfig) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = envCfg.ConfigPath
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags lays explicitly-set CLI values over the loaded config.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output.format != "" {
		cfg.Output.Format = flags.output.format
	}
	if flags.output.extension != "" {
		cfg.Output.Extension = flags.output.extension
	}
	if flags.pipeline.indent != "" {
		cfg.Convert.Indent = flags.pipeline.indent
	}
	if flags.pipeline.detectLanguage {
		cfg.Convert.DetectLanguage = true
	}
	if flags.pipeline.maxInputSize > 0 {
		cfg.Convert.MaxInputSize = flags.pipeline.maxInputSize
	}
	if flags.debug.dumpStages != "" {
		cfg.Debug.StageDir = flags.debug.dumpStages
	}
}

// serviceOptions maps resolved configuration to library options.
func serviceOptions(cfg *config.Config) []html2docbook.Option {
	var opts []html2docbook.Option
	if cfg.Convert.Indent != "" {
		opts = append(opts, html2docbook.WithIndent(cfg.Convert.Indent))
	}
	opts = append(opts, html2docbook.WithLanguageDetection(cfg.Convert.DetectLanguage))
	if cfg.Convert.MaxInputSize > 0 {
		opts = append(opts, html2docbook.WithMaxInputSize(cfg.Convert.MaxInputSize))
	}
	return opts
}

// resolveFormat maps the configured output format to the export switch.
func resolveFormat(cfg *config.Config) (markdown bool, err error) {
	switch strings.ToLower(cfg.Output.Format) {
	case "", config.FormatDocBook:
		return false, nil
	case config.FormatMarkdown:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidFormat, cfg.Output.Format)
	}
}

// resolveInputPath picks the input path, positional argument first, then
// the configured default directory.
func resolveInputPath(positional []string, cfg *config.Config) (string, error) {
	if len(positional) > 0 {
		return positional[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir picks the output directory, flag first, then config.
// Empty means each output lands next to its input.
func resolveOutputDir(flagDir string, cfg *config.Config) string {
	if flagDir != "" {
		return flagDir
	}
	return cfg.Output.DefaultDir
}

// outputExtension picks the output file extension for the run.
func outputExtension(cfg *config.Config, markdown bool) string {
	if cfg.Output.Extension != "" {
		return cfg.Output.Extension
	}
	if markdown {
		return ".md"
	}
	return ".xml"
}
