package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dlc/internal/driver"
	"dlc/internal/oracle"
)

const (
	exitSourceErrors = 1
	exitUsage        = 2
	exitToolchain    = 3
)

// usageError marks bad flags, arguments or configuration.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// exitCode classifies err.
func exitCode(err error) int {
	var ue usageError
	switch {
	case oracle.IsToolchain(err):
		return exitToolchain
	case errors.As(err, &ue):
		return exitUsage
	// cobra reports unknown subcommands as plain errors
	case strings.HasPrefix(err.Error(), "unknown command"):
		return exitUsage
	default:
		return exitSourceErrors
	}
}

// reportError prints err and returns the exit status. Source errors were
// already rendered as diagnostics.
func reportError(w io.Writer, err error) int {
	code := exitCode(err)
	switch {
	case code == exitToolchain:
		fmt.Fprintf(w, "toolchain error: %v\n", err)
	case errors.Is(err, driver.ErrSourceErrors):
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return code
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("accepts %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs reporting a usage error.
func minArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("requires at least %d arg(s), only received %d", n, len(args))
		}
		return nil
	}
}
