package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags are the config and verbosity selectors every command takes.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags pick where converted documents land and in which format.
type outputFlags struct {
	dir       string
	format    string
	extension string
	stdout    bool
}

// pipelineFlags tune the conversion pipeline itself.
type pipelineFlags struct {
	indent         string
	detectLanguage bool
	maxInputSize   int
}

// debugFlags expose the pipeline's intermediate trees.
type debugFlags struct {
	dumpStages string
}

// convertFlags is everything the convert command accepts.
type convertFlags struct {
	common       commonFlags
	output       outputFlags
	pipeline     pipelineFlags
	debug        debugFlags
	workers      int
	fromMarkdown bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "report errors only")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "per-file timing detail")
}

func (f *outputFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.dir, "output", "o", "", "destination file or directory")
	fs.StringVarP(&f.format, "format", "f", "", "output format (docbook or markdown)")
	fs.StringVar(&f.extension, "extension", "", "extension for output files (defaults per format)")
	fs.BoolVar(&f.stdout, "stdout", false, "print the result to stdout (single input only)")
}

func (f *pipelineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.indent, "indent", "", "indentation unit for the emitted markup")
	fs.BoolVar(&f.detectLanguage, "detect-language", false, "infer code block languages")
	fs.IntVar(&f.maxInputSize, "max-input-size", 0, "max input bytes (0 = built-in limit)")
}

func (f *debugFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.dumpStages, "dump-stages", "", "write the tree after each pass into this directory")
}

// parseConvertFlags parses the convert command line, returning the parsed
// flags and the positional arguments that remain.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.Usage = func() { printConvertUsage(os.Stderr) }

	f.common.register(fs)
	f.output.register(fs)
	f.pipeline.register(fs)
	f.debug.register(fs)
	fs.IntVarP(&f.workers, "workers", "w", 0, "number of parallel workers (0 = auto)")
	fs.BoolVarP(&f.fromMarkdown, "from-markdown", "m", false, "read inputs as markdown instead of HTML")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
