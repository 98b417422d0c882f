// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/discover"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

func newSidecarsCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "sidecars [root]",
		Short: "Check every sidecar under a directory for the required keys",
		Long: "Scans root (default: current directory) with the configured sidecar patterns\n" +
			"(default **/*.json) and checks vault_id, glyphsig, version and checksum_sha256.",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			root := defaultRoot
			if len(args) == 1 {
				root = args[0]
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			paths, err := discover.Finder{Include: cfg.SidecarPatterns, Exclude: cfg.Exclude}.Dir(root)
			if err != nil {
				return err
			}

			v := g.validator(cmd, cfg)
			sum := verify.Batch(cmd.Context(), paths, cfg.Workers, v.ValidateSidecar)

			out := cmd.OutOrStdout()
			if format == formatJSON {
				data, err := report.FormatJSON(sum)
				if err != nil {
					return err
				}
				fmt.Fprint(out, data)
			} else {
				for _, verdict := range sum.Verdicts {
					for _, msg := range verdict.ErrorStrings() {
						fmt.Fprintf(out, "ERROR  %s  %s\n", verdict.Artifact, msg)
					}
				}
				if sum.Passed() {
					fmt.Fprintf(out, "Reflective compliance passed ⟡ (%d sidecars)\n", sum.Total)
				}
			}
			if !sum.Passed() {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json)")
	return cmd
}
