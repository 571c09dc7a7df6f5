package main

import (
	"fmt"
	"io"
)

const mainUsage = `Usage: html2docbook <command> [flags] [args]

Commands:
  convert    Turn exported HTML into clean structured markup
  config     Print the effective configuration
  version    Show version information
  help       Show help for a command

Running with an input path runs the convert command directly.
Run 'html2docbook help <command>' for details on a specific command.
`

const convertUsage = `Usage: html2docbook convert <input> [flags]

Turn word-processor HTML exports into clean structured markup.

Arguments:
  input    HTML file or directory (optional when config sets input.defaultDir)

Input/Output:
  -o, --output <path>        Destination file or directory
  -c, --config <name>        Config name or file path
  -w, --workers <n>          Number of parallel workers (0 = auto)
  -f, --format <s>           Output format (docbook or markdown)
      --extension <s>        Extension for output files (default: .xml or .md)
      --stdout               Print the result to stdout (single input only)
  -m, --from-markdown        Read inputs as markdown instead of HTML

Pipeline:
      --indent <s>           Indentation unit for the emitted markup
      --detect-language      Infer code block languages
      --max-input-size <n>   Max input bytes

Debugging:
      --dump-stages <dir>    Write the tree after each pass into this directory

Output Control:
  -q, --quiet                Report errors only
  -v, --verbose              Per-file timing detail

Examples:
  html2docbook convert page.html
  html2docbook convert exports/ -o clean/ -w 4
  html2docbook convert page.html --format markdown --stdout
`

// printUsage writes the top-level command summary.
func printUsage(w io.Writer) {
	fmt.Fprint(w, mainUsage)
}

// printConvertUsage writes the convert command's flag reference.
func printConvertUsage(w io.Writer) {
	fmt.Fprint(w, convertUsage)
}

// runHelp routes a help topic to its usage text.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "config":
		fmt.Fprint(env.Stdout, `Usage: html2docbook config [-c <name>]

Print the effective configuration as YAML, after the config file and
environment overrides are applied.
`)
	case "version":
		fmt.Fprint(env.Stdout, "Usage: html2docbook version\n\nShow version information.\n")
	case "help":
		fmt.Fprint(env.Stdout, "Usage: html2docbook help [command]\n\nShow help for a command.\n")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
