package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Environment holds the injectable dependencies of the CLI. Tests swap
// the writers and logger for buffers.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *logrus.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// configureLogger applies verbosity flags to the logger. Results go to
// stdout via printResults; the logger carries diagnostics only.
func configureLogger(logger *logrus.Logger, flags commonFlags) {
	switch {
	case flags.quiet:
		logger.SetLevel(logrus.ErrorLevel)
	case flags.verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
}
