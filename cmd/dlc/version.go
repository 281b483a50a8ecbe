package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dlc/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show dlc build fingerprints",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			full, err := cmd.Flags().GetBool("full")
			if err != nil {
				return fmt.Errorf("failed to get full flag: %w", err)
			}
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout(), full)
			case "pretty":
				colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
				if err != nil {
					return fmt.Errorf("failed to get color flag: %w", err)
				}
				if colorFlag == "on" || colorFlag == "off" {
					color.NoColor = colorFlag == "off"
				}
				renderVersionPretty(cmd.OutOrStdout(), full)
				return nil
			default:
				return usageErrorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("full", false, "include commit and build date")
	return cmd
}

func renderVersionPretty(out io.Writer, full bool) {
	fmt.Fprintf(out, "dlc %s\n", version.Colored())
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{Tool: "dlc", Version: version.Version}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
