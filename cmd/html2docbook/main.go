package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()
	os.Exit(run(os.Args[1:], env))
}

// run dispatches commands and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(env.Stdout, "html2docbook %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(args[1:], env)
		return ExitSuccess
	case "config":
		if err := runConfigCmd(args[1:], env); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return ExitSuccess
			}
			printError(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "convert":
		args = args[1:]
	}

	// Anything else is treated as convert input.
	return runConvertCommand(args, env)
}

// runConvertCommand parses convert flags and runs the conversion.
func runConvertCommand(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	configureLogger(env.Logger, flags.common)

	// Configure GOMAXPROCS for container CPU limits.
	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS env
	// value, in which case runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(env.Logger.Debugf))

	ctx, stop := interruptContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, defaultPoolFactory, env); err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
