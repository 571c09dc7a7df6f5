package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	html2docbook "github.com/avrile/go-html2docbook"

	"github.com/avrile/go-html2docbook/internal/config"
	"github.com/avrile/go-html2docbook/internal/hints"
)

// Exit codes follow Unix convention: 0 success, 1 general failure,
// 2 usage or validation, 3 I/O.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitIO      = 3
)

// Sentinels that classify a failure for exit purposes. Matching goes
// through errors.Is, so callers must wrap with %w for a failure to
// stay classifiable.
var (
	ioErrors = []error{
		os.ErrNotExist,
		os.ErrPermission,
		ErrReadInput,
		ErrWriteOutput,
	}

	usageErrors = []error{
		config.ErrConfigNotFound,
		config.ErrConfigParse,
		config.ErrFieldTooLong,
		config.ErrEmptyConfigName,
		html2docbook.ErrEmptyInput,
		html2docbook.ErrAmbiguousInput,
		html2docbook.ErrInputTooLarge,
		ErrNoInput,
		ErrInvalidExtension,
		ErrInvalidWorkerCount,
		ErrInvalidFormat,
		ErrStdoutBatch,
	}
)

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case isAny(err, ioErrors):
		return ExitIO
	case isAny(err, usageErrors):
		return ExitUsage
	default:
		return ExitGeneral
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorHint returns an actionable hint for known failures, or "".
func errorHint(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, config.ErrConfigParse):
		return hints.ForConfigParse()
	case errors.Is(err, ErrInvalidExtension):
		return hints.ForInputExtension()
	case errors.Is(err, ErrInvalidWorkerCount):
		return hints.ForWorkerCount()
	case errors.Is(err, html2docbook.ErrInputTooLarge):
		return hints.ForInputTooLarge()
	case errors.Is(err, ErrStdoutBatch):
		return hints.ForStdoutBatch()
	}
	return ""
}

// printError writes an error message with any applicable hint appended.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, err.Error()+errorHint(err))
}
