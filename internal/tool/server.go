// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer returns an MCP server with every mirrordna tool registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "mirrordna", Version: version}, nil)
	mcp.AddTool(server, MetadataValidateArtifact, ValidateArtifact)
	mcp.AddTool(server, MetadataComputeChecksum, ComputeChecksum)
	mcp.AddTool(server, MetadataParseFrontMatter, ParseFrontMatter)
	return server
}

// Serve runs the server on stdio until ctx is cancelled or the client disconnects.
func Serve(ctx context.Context, version string) error {
	return NewServer(version).Run(ctx, &mcp.StdioTransport{})
}
