package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dlc/internal/version"
)

// newRootCmd assembles the command tree. Cleanup hooks registered by the
// persistent pre-run are collected in *cleanups.
func newRootCmd(cleanups *[]func()) *cobra.Command {
	root := &cobra.Command{
		Use:           "dlc",
		Short:         "Dataflow language compiler",
		Long:          `dlc compiles DFL programs into DIS instruction listings for the dataflow virtual machine`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			stopTrace, err := setupTracing(cmd)
			if err != nil {
				return usageErrorf("%v", err)
			}
			*cleanups = append(*cleanups, stopTrace)
			stopProf, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			*cleanups = append(*cleanups, stopProf)
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	pf.String("config", "", "path to dlc.toml (default: search upwards from the input)")
	pf.String("engine", "", "evaluation engine override (native|dvm)")
	pf.Bool("no-opt", false, "skip the optimizer")
	pf.String("passes", "", "comma separated optimizer passes, or \"none\"")
	pf.String("entry", "", "entry function override")
	pf.Bool("verify", false, "validate the graph before lowering")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson|chrome)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for ring mode")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newCompileCmd(), newBuildCmd(), newRunCmd(), newVersionCmd())
	return root
}

// main builds the command tree, executes it and maps the result to an exit
// status: 1 for source errors, 2 for usage errors, 3 for toolchain errors.
func main() {
	var cleanups []func()
	root := newRootCmd(&cleanups)
	err := root.ExecuteContext(context.Background())
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	if err != nil {
		os.Exit(reportError(root.ErrOrStderr(), err))
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
