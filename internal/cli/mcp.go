// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tool"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP tool server on stdio",
		Long: "Runs mirrordna as an MCP (Model Context Protocol) server over stdio.\n" +
			"Exposes tools: validate_artifact, compute_checksum, parse_front_matter.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.ErrOrStderr(), "mirrordna MCP server running on stdio")
			return tool.Serve(ctx, version)
		},
	}
}
