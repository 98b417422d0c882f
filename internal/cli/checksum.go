// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/discover"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

func newChecksumCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksum",
		Short: "Compute or verify self-referential sidecar checksums",
		Long: "The checksum_sha256 field holds the SHA-256 of the record serialized canonically\n" +
			"(sorted keys, compact separators, literal unicode) with the field itself blanked.\n" +
			"Works on JSON sidecars and on Markdown front matter.",
	}
	cmd.AddCommand(
		newChecksumActionCmd(g, "write", "Compute checksums and write them in place"),
		newChecksumActionCmd(g, "verify", "Verify checksums without writing; exit 1 on any mismatch"),
	)
	return cmd
}

func newChecksumActionCmd(g *globalOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <file|glob>...",
		Short: short,
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			finder := discover.Finder{Include: cfg.SidecarPatterns, Exclude: cfg.Exclude}
			paths, err := finder.Paths(args)
			if err != nil {
				return err
			}
			v := g.validator(cmd, cfg)
			if !runChecksums(cmd, v, action, paths) {
				return errFailed
			}
			return nil
		},
	}
}

// runChecksums processes every path and reports whether all succeeded.
func runChecksums(cmd *cobra.Command, v *verify.Validator, action string, paths []string) bool {
	out := cmd.OutOrStdout()
	okAll := true
	for _, path := range paths {
		var (
			stamp verify.Stamp
			err   error
		)
		if action == "write" {
			stamp, err = v.WriteChecksum(path)
		} else {
			stamp, err = v.VerifyChecksum(path)
		}

		switch {
		case err != nil:
			okAll = false
			fmt.Fprintf(out, "ERROR  %s  %v\n", path, err)
		case !stamp.OK:
			okAll = false
			fmt.Fprintf(out, "FAIL   %s  Checksum mismatch. expected=%s actual=%s\n", path, stamp.Digest, stamp.Declared)
		case action == "write":
			fmt.Fprintf(out, "WROTE  %s  sha256=%s\n", path, stamp.Digest)
		default:
			fmt.Fprintf(out, "OK     %s  sha256=%s\n", path, stamp.Digest)
		}
	}
	return okAll
}
