package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dlc/internal/buildpipeline"
	"dlc/internal/config"
	"dlc/internal/driver"
	"dlc/internal/oracle"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] <file|directory>...",
		Short: "Compile many source files concurrently",
		Long: `Compile every given file, and every *.dfl file below the given directories,
writing each listing next to its source. Each file uses the nearest dlc.toml.`,
		Args: minArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().Int("jobs", 0, "max parallel compilations (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("no-write", false, "compile without writing listings")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	common, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	noWrite, err := cmd.Flags().GetBool("no-write")
	if err != nil {
		return fmt.Errorf("failed to get no-write flag: %w", err)
	}

	files, err := buildpipeline.ExpandInputs(args)
	if err != nil {
		return usageError{err: err}
	}
	if len(files) == 0 {
		return usageErrorf("no source files found")
	}

	baseDir := ""
	if len(args) == 1 {
		baseDir = args[0]
		if filepath.Ext(baseDir) != "" {
			baseDir = filepath.Dir(baseDir)
		}
	}

	req := &buildpipeline.BuildRequest{
		Files:   files,
		BaseDir: baseDir,
		Jobs:    jobs,
		Options: common.driverOptions(config.Config{}),
		Config:  common.configFor,
		NoWrite: noWrite,
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(mode) {
		res, err = runBuildWithUI(cmd.Context(), "dlc build", buildpipeline.ProgressFiles(files, baseDir), req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		return err
	}
	return reportBuild(cmd.OutOrStdout(), cmd.ErrOrStderr(), common, res)
}

// reportBuild prints per-file outcomes and returns the most severe failure:
// a toolchain error first, then a usage error, then source errors.
func reportBuild(out, errOut io.Writer, common commonOptions, res buildpipeline.BuildResult) error {
	var toolchain, usage error
	failed := 0
	for _, f := range res.Files {
		if perr := common.printDiagnostics(errOut, f.Result); perr != nil {
			return perr
		}
		common.printTimings(errOut, f.Result)
		switch {
		case f.Err == nil:
			if f.OutputPath != "" {
				fmt.Fprintf(out, "%s -> %s\n", f.Display, f.OutputPath)
			} else {
				fmt.Fprintf(out, "%s ok\n", f.Display)
			}
			continue
		case oracle.IsToolchain(f.Err):
			toolchain = firstErr(toolchain, fmt.Errorf("%s: %w", f.Display, f.Err))
		case exitCode(f.Err) == exitUsage:
			usage = firstErr(usage, fmt.Errorf("%s: %w", f.Display, f.Err))
		case !errors.Is(f.Err, driver.ErrSourceErrors):
			fmt.Fprintf(errOut, "error: %s: %v\n", f.Display, f.Err)
		}
		failed++
	}
	fmt.Fprintf(out, "%d compiled, %d failed in %s\n", len(res.Files)-failed, failed, res.Elapsed.Round(time.Millisecond))
	switch {
	case toolchain != nil:
		return toolchain
	case usage != nil:
		return usage
	case failed > 0:
		return fmt.Errorf("%d of %d files failed: %w", failed, len(res.Files), driver.ErrSourceErrors)
	}
	return nil
}

func firstErr(first, next error) error {
	if first != nil {
		return first
	}
	return next
}
