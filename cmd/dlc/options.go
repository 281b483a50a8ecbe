package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dlc/internal/config"
	"dlc/internal/diagfmt"
	"dlc/internal/driver"
)

// commonOptions collects the persistent flags shared by every command.
type commonOptions struct {
	configPath     string
	engine         string
	noOpt          bool
	passes         string
	passesSet      bool
	entry          string
	verify         bool
	maxDiagnostics int
	diagFormat     string
	color          bool
	timings        bool
}

func readCommonOptions(cmd *cobra.Command) (commonOptions, error) {
	var (
		o   commonOptions
		err error
	)
	flags := cmd.Root().PersistentFlags()
	if o.configPath, err = flags.GetString("config"); err != nil {
		return o, fmt.Errorf("failed to get config flag: %w", err)
	}
	if o.engine, err = flags.GetString("engine"); err != nil {
		return o, fmt.Errorf("failed to get engine flag: %w", err)
	}
	if o.noOpt, err = flags.GetBool("no-opt"); err != nil {
		return o, fmt.Errorf("failed to get no-opt flag: %w", err)
	}
	if o.passes, err = flags.GetString("passes"); err != nil {
		return o, fmt.Errorf("failed to get passes flag: %w", err)
	}
	o.passesSet = flags.Changed("passes")
	if o.entry, err = flags.GetString("entry"); err != nil {
		return o, fmt.Errorf("failed to get entry flag: %w", err)
	}
	if o.verify, err = flags.GetBool("verify"); err != nil {
		return o, fmt.Errorf("failed to get verify flag: %w", err)
	}
	if o.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return o, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if o.timings, err = flags.GetBool("timings"); err != nil {
		return o, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if o.diagFormat, err = flags.GetString("diag-format"); err != nil {
		return o, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	switch o.diagFormat = strings.ToLower(o.diagFormat); o.diagFormat {
	case "pretty", "short", "json":
	default:
		return o, usageErrorf("unknown diagnostics format %q (expected pretty|short|json)", o.diagFormat)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return o, fmt.Errorf("failed to get color flag: %w", err)
	}
	if o.color, err = colorEnabled(colorFlag, os.Stderr); err != nil {
		return o, err
	}
	return o, nil
}

// configFor loads the configuration governing input and applies the
// command line overrides.
func (o commonOptions) configFor(input string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.Discover(filepath.Dir(input))
	}
	if err != nil {
		return cfg, usageError{err: err}
	}

	if o.engine != "" {
		cfg.Oracle.Engine = strings.ToLower(o.engine)
	}
	if o.entry != "" {
		cfg.Compile.Entry = o.entry
	}
	if o.passesSet {
		cfg.Optimize.Passes = splitPasses(o.passes)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, usageError{err: err}
	}
	return cfg, nil
}

func splitPasses(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (o commonOptions) driverOptions(cfg config.Config) driver.Options {
	return driver.Options{
		Config:         cfg,
		NoOpt:          o.noOpt,
		Verify:         o.verify,
		MaxDiagnostics: o.maxDiagnostics,
	}
}

// printDiagnostics renders the bag of res in the selected format.
func (o commonOptions) printDiagnostics(w io.Writer, res *driver.Result) error {
	if res == nil || res.Bag == nil || res.Bag.Len() == 0 {
		return nil
	}
	res.Bag.Sort()
	switch o.diagFormat {
	case "short":
		diagfmt.Short(w, res.Bag, res.FileSet, true)
	case "json":
		return diagfmt.JSON(w, res.Bag, res.FileSet, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	default:
		diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: o.color, ShowNotes: true})
	}
	return nil
}

func (o commonOptions) printTimings(w io.Writer, res *driver.Result) {
	if !o.timings || res == nil || res.File == nil || len(res.Timings.Phases) == 0 {
		return
	}
	_ = res.Timings.Render(w, res.File.DisplayPath())
}

// stdinInput names standard input in place of a source path.
const stdinInput = "-"

// compileInput compiles a source path, or standard input for "-".
func compileInput(cmd *cobra.Command, input string, opts *driver.Options) (*driver.Result, error) {
	if input != stdinInput {
		return driver.Compile(cmd.Context(), input, opts)
	}
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	return driver.CompileSource(cmd.Context(), "<stdin>", src, opts)
}
