// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
)

func newTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List compliance tiers and the capabilities each adds",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, t := range tier.All {
				names := make([]string, 0, 3)
				for _, c := range tier.Introduced(t) {
					names = append(names, string(c))
				}
				prefix := ""
				if t > tier.L1 {
					prefix = "+ "
				}
				note := ""
				if t > tier.Enforced {
					note = "  (declared only)"
				}
				fmt.Fprintf(out, "%s  %s%s%s\n", t, prefix, strings.Join(names, ", "), note)
			}
		},
	}
}
