// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newFrontMatterCmd(g *globalOptions) *cobra.Command {
	var verifyDigest bool
	cmd := &cobra.Command{
		Use:   "frontmatter <file>",
		Short: "Validate a document's inline front matter",
		Long: "Checks the '---' delimited front matter for the required keys and a well-formed\n" +
			"checksum_sha256, inferring a missing version from a vX.Y[.Z] title suffix.\n" +
			"On success prints the version and title as JSON.",
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verify-digest") {
				cfg.VerifyDigest = verifyDigest
			}
			doc := g.validator(cmd, cfg).ValidateDocument(args[0])

			out := cmd.OutOrStdout()
			for _, note := range doc.Verdict.Warnings {
				fmt.Fprintln(out, note)
			}
			if !doc.Verdict.Valid() {
				for _, msg := range doc.Verdict.ErrorStrings() {
					fmt.Fprintln(out, "Error:", msg)
				}
				return errFailed
			}

			fmt.Fprintln(out, "Validation passed.")
			summary := struct {
				Version string `json:"version"`
				Title   any    `json:"title"`
			}{Version: doc.Version(), Title: doc.Record["title"]}
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			if err := enc.Encode(summary); err != nil {
				return err
			}
			fmt.Fprint(out, buf.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&verifyDigest, "verify-digest", false, "Also verify checksum_sha256 against the front matter")
	return cmd
}
