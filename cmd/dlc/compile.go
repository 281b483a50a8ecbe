package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dlc/internal/driver"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] <file|->",
		Short: "Compile one source file to a DIS listing",
		Long: `Compile a DFL source file. The listing is written next to the source
with the configured extension, or to the path given by --output ("-" for stdout).
A "-" input reads the program from standard input; its listing goes to stdout
unless --output is set.`,
		Args: exactArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().StringP("output", "o", "", "output path (- for stdout)")
	cmd.Flags().String("dot", "", "write the graph before optimization as Graphviz (- for stdout)")
	cmd.Flags().String("dot-after", "", "write the graph after optimization as Graphviz (- for stdout)")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	input := args[0]
	common, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	dotBefore, err := cmd.Flags().GetString("dot")
	if err != nil {
		return fmt.Errorf("failed to get dot flag: %w", err)
	}
	dotAfter, err := cmd.Flags().GetString("dot-after")
	if err != nil {
		return fmt.Errorf("failed to get dot-after flag: %w", err)
	}

	cfg, err := common.configFor(input)
	if err != nil {
		return err
	}
	opts := common.driverOptions(cfg)

	var closers []func() error
	defer func() {
		for _, c := range closers {
			if cerr := c(); cerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to close dot output: %v\n", cerr)
			}
		}
	}()
	if opts.DotBefore, err = openDot(cmd, dotBefore, &closers); err != nil {
		return err
	}
	if opts.DotAfter, err = openDot(cmd, dotAfter, &closers); err != nil {
		return err
	}

	res, err := compileInput(cmd, input, &opts)
	if perr := common.printDiagnostics(cmd.ErrOrStderr(), res); perr != nil {
		return perr
	}
	common.printTimings(cmd.ErrOrStderr(), res)
	if err != nil {
		return err
	}

	if output == "" && input == stdinInput {
		output = "-"
	}
	switch output {
	case "-":
		_, err = io.WriteString(cmd.OutOrStdout(), res.Lowered.Text)
		if err == nil && len(res.Lowered.Text) > 0 && res.Lowered.Text[len(res.Lowered.Text)-1] != '\n' {
			_, err = io.WriteString(cmd.OutOrStdout(), "\n")
		}
		return err
	case "":
		output = driver.OutputPath(input, cfg.Compile.Extension)
	}
	return driver.WriteOutput(output, res)
}

// openDot resolves a --dot style flag: "" disables, "-" is stdout.
func openDot(cmd *cobra.Command, path string, closers *[]func() error) (io.Writer, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return cmd.OutOrStdout(), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, usageError{err: fmt.Errorf("failed to create %q: %w", path, err)}
	}
	bw := bufio.NewWriter(f)
	*closers = append(*closers, func() error {
		return errors.Join(bw.Flush(), f.Close())
	})
	return bw, nil
}
