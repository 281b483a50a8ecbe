package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dlc/internal/prof"
)

// setupProfiling starts the profilers requested by the persistent flags.
// The returned cleanup reports write failures to stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()
	var opts prof.Options
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"cpu-profile", &opts.CPU},
		{"mem-profile", &opts.Mem},
		{"runtime-trace", &opts.Trace},
	} {
		v, err := pf.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	errOut := cmd.ErrOrStderr()
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(errOut, "profiling: %v\n", err)
		}
	}, nil
}
