// Package hints suggests next steps for common CLI failures. A hint
// renders as "\n  hint: <text>" so it can sit under an error line.
package hints

// ForConfigNotFound points at --config and the user config location.
func ForConfigNotFound() string {
	return render("use --config /path/to/file.yaml, or create the file under ~/.config/go-html2docbook/")
}

// ForConfigParse suggests printing the expected config layout.
func ForConfigParse() string {
	return render("run 'html2docbook config' to see the expected layout")
}

// ForInputExtension lists the accepted input extensions.
func ForInputExtension() string {
	return render("accepted extensions: .html, .htm, .xhtml (or .md, .markdown with --from-markdown)")
}

// ForWorkerCount covers worker counts the pool cannot honor.
func ForWorkerCount() string {
	return render("use --workers 0 to size the pool from available CPUs")
}

// ForInputTooLarge covers documents over the size limit.
func ForInputTooLarge() string {
	return render("raise the limit with --max-input-size")
}

// ForStdoutBatch covers --stdout used with multiple inputs.
func ForStdoutBatch() string {
	return render("pass a single file, or drop --stdout to write output files")
}

// render indents a hint for appending after an error message.
func render(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
