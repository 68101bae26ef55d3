package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/exptosource/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("exptosource", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
exptosource - Regroup multi-slit exposures into per-source files.

Usage:
  exptosource [options] PATH...

Arguments:
  PATH
    Exposure .hcl file, or a directory searched recursively for .hcl files.
    Exposures are read in the order given.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputFlag := flagSet.String("output-dir", "", "Directory for the source_<id>.hcl files. Defaults to the current directory.")
	oFlag := flagSet.String("o", "", "Directory for the source files (shorthand).")
	policyFlag := flagSet.String("merge-policy", "incoming", "Leaf conflicts between exposure and slit metadata. Options: 'incoming' (exposure wins) or 'existing' (slit wins).")
	listFlag := flagSet.Bool("list", false, "Print the sources and their slits instead of writing files.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No exposure paths provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outputDir := *outputFlag
	if outputDir == "" {
		outputDir = *oFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Paths:       flagSet.Args(),
		OutputDir:   outputDir,
		MergePolicy: *policyFlag,
		List:        *listFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
