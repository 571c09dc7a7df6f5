package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	html2docbook "github.com/avrile/go-html2docbook"
)

// Permissions for created output directories and files.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// I/O failures during a batch run, matched by exit code mapping.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// ConversionResult records how one file fared.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Output     string // formatted result, populated only for --stdout
	Err        error
	Duration   time.Duration
}

// convertBatch fans files out across the service pool and collects one
// result per input, positioned to match discovery order.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))

	queue := make(chan int, len(files))
	for i := range files {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for range min(pool.Size(), len(files)) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			for i := range queue {
				if err := ctx.Err(); err != nil {
					// After cancellation, remaining files are marked
					// rather than converted.
					results[i] = ConversionResult{
						InputPath:  files[i].InputPath,
						OutputPath: files[i].OutputPath,
						Err:        err,
					}
					continue
				}
				results[i] = convertFile(ctx, svc, files[i], params)
			}
		}()
	}
	wg.Wait()

	return results
}

// convertFile runs one file through the service and records the outcome,
// writing the converted document unless stdout capture was requested.
// The named return lets the deferred timing land on every exit path.
func convertFile(ctx context.Context, svc Converter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	start := time.Now()
	result = ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = time.Since(start) }()

	content, err := readInputFile(f)
	if err != nil {
		result.Err = err
		return result
	}

	input := html2docbook.Input{HTML: content}
	if f.Markdown {
		input = html2docbook.Input{Markdown: content}
	}

	// Dumping intermediate trees needs a per-file observer, so it runs
	// on a dedicated service instead of a pooled one.
	if params.stageDir != "" {
		svc = newDumpingService(params, f.InputPath)
	}

	var out string
	if params.markdown {
		out, err = svc.ConvertToMarkdown(ctx, input)
	} else {
		out, err = svc.Convert(ctx, input)
	}
	if err != nil {
		result.Err = err
		return result
	}

	if params.stdout {
		result.Output = out
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		return result
	}
	// #nosec G306 -- converted documents are meant to be world-readable
	if err := os.WriteFile(f.OutputPath, []byte(out), filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
		return result
	}

	return result
}

// readInputFile reads an input file, decoding legacy charsets for HTML.
// Word exports frequently arrive as windows-1252 rather than UTF-8, with
// the charset declared in a meta tag.
func readInputFile(f FileToConvert) (string, error) {
	raw, err := os.ReadFile(f.InputPath) // #nosec G304 -- path comes from discovery
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	if f.Markdown {
		return string(raw), nil
	}

	r, err := charset.NewReader(bytes.NewReader(raw), "text/html")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(decoded), nil
}

// newDumpingService builds a service whose observer writes the tree after
// each cleanup pass to <stageDir>/<base>.<pass>.html.
func newDumpingService(params *conversionParams, inputPath string) *html2docbook.Service {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := params.stageDir

	observer := func(stage, content string) {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return
		}
		name := fmt.Sprintf("%s.%s.html", base, stage)
		// #nosec G306 -- debug dumps are meant to be readable
		_ = os.WriteFile(filepath.Join(dir, name), []byte(content), filePermissions)
	}

	opts := append([]html2docbook.Option{}, params.opts...)
	opts = append(opts, html2docbook.WithStageObserver(observer))
	return html2docbook.New(opts...)
}

// printResults writes per-file outcomes and a summary, returning the
// number of failures.
func printResults(results []ConversionResult, flags commonFlags, stdout bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, errorHint(r.Err))
			continue
		}

		succeeded++

		switch {
		case stdout:
			fmt.Fprint(env.Stdout, r.Output)
		case flags.quiet:
		case flags.verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !flags.quiet && !stdout && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
