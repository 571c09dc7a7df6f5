package html2docbook

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput      = errors.New("input content cannot be empty")
	ErrAmbiguousInput  = errors.New("input cannot carry both HTML and markdown")
	ErrInputTooLarge   = errors.New("input exceeds maximum size")
	ErrParse           = errors.New("HTML parsing failed")
	ErrMarkdownConvert = errors.New("markdown conversion failed")
	ErrMarkdownExport  = errors.New("markdown export failed")
)
