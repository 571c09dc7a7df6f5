package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	html2docbook "github.com/avrile/go-html2docbook"
)

// Errors surfaced while assembling the conversion batch.
var (
	ErrInvalidExtension   = errors.New("unsupported input file extension")
	ErrInvalidWorkerCount = errors.New("worker count out of range")
)

// Input extensions accepted per input kind.
var (
	htmlExtensions     = map[string]bool{".html": true, ".htm": true, ".xhtml": true}
	markdownExtensions = map[string]bool{".md": true, ".markdown": true}
)

// FileToConvert pairs an input file with its resolved destination.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Markdown   bool // input is markdown rather than HTML
}

// discoverFiles finds all input files to convert. A file input must carry
// an accepted extension; a directory input is walked recursively and
// non-matching files are skipped.
func discoverFiles(inputPath, outputDir, outExt string, fromMarkdown bool) ([]FileToConvert, error) {
	accepted := htmlExtensions
	if fromMarkdown {
		accepted = markdownExtensions
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("accessing input: %w", err)
	}

	if !info.IsDir() {
		if err := validateInputExtension(inputPath, accepted); err != nil {
			return nil, err
		}
		out := resolveOutputPath(inputPath, outputDir, "", outExt)
		return []FileToConvert{{InputPath: inputPath, OutputPath: out, Markdown: fromMarkdown}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !accepted[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		out := resolveOutputPath(path, outputDir, inputPath, outExt)
		files = append(files, FileToConvert{InputPath: path, OutputPath: out, Markdown: fromMarkdown})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the output path for an input file.
// An empty outputDir places the output next to the input. When outputDir
// already ends with the output extension it is taken as an explicit file
// path. Directory structure under baseInputDir is mirrored into outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir, outExt string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+outExt)
	}

	if strings.HasSuffix(outputDir, outExt) {
		return outputDir
	}

	if baseInputDir != "" {
		rel, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), base+outExt)
		}
	}

	return filepath.Join(outputDir, base+outExt)
}

// validateInputExtension checks a file against the accepted extension set.
func validateInputExtension(path string, accepted map[string]bool) error {
	if !accepted[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers rejects counts the pool cannot honor.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > html2docbook.MaxPoolSize {
		return fmt.Errorf("%w: %d (ceiling is %d)", ErrInvalidWorkerCount, n, html2docbook.MaxPoolSize)
	}
	return nil
}
