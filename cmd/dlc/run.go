package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dlc/internal/driver"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [flags] <file|-> [inputs...]",
		Short: "Compile and execute a program",
		Long: `Compile a DFL source file and call its entry function on the given inputs.
The native engine interprets the optimized graph; the dvm engine runs the
lowered listing on the external virtual machine.`,
		Args: minArgs(1),
		RunE: runExecution,
	}
}

func runExecution(cmd *cobra.Command, args []string) error {
	input := args[0]
	common, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := common.configFor(input)
	if err != nil {
		return err
	}
	inputs, err := driver.ParseArgs(args[1:])
	if err != nil {
		return usageError{err: err}
	}

	opts := common.driverOptions(cfg)
	res, err := compileInput(cmd, input, &opts)
	if perr := common.printDiagnostics(cmd.ErrOrStderr(), res); perr != nil {
		return perr
	}
	common.printTimings(cmd.ErrOrStderr(), res)
	if err != nil {
		return err
	}

	v, err := driver.Run(cmd.Context(), res, cfg, nil, inputs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
	return err
}
