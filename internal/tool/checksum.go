// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
)

// MetadataComputeChecksum describes the compute_checksum tool.
var MetadataComputeChecksum = &mcp.Tool{
	Name: "compute_checksum",
	Description: "Compute the self-referential SHA-256 digest of a JSON sidecar. " +
		"The record is serialized canonically (sorted keys, no whitespace, literal unicode) with the " +
		"digest field set to the empty string, so any implementation of the convention reproduces the " +
		"same value. Also reports whether the declared digest matches. " +
		"With content instead of a sidecar, returns the plain SHA-256 of the text as used by artifact_checksum.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"sidecar": map[string]interface{}{
				"type":        "string",
				"description": "Sidecar JSON document.",
			},
			"field": map[string]interface{}{
				"type":        "string",
				"description": "Self-referential digest field. Defaults to checksum_sha256.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw artifact text to hash instead of a sidecar.",
			},
		},
	},
}

// InputComputeChecksum is the input for the ComputeChecksum tool.
type InputComputeChecksum struct {
	Sidecar string `json:"sidecar"`
	Field   string `json:"field"`
	Content string `json:"content"`
}

// OutputComputeChecksum is the output for the ComputeChecksum tool.
type OutputComputeChecksum struct {
	// Digest is the bare lowercase hex digest.
	Digest string `json:"digest"`
	// Prefixed is Digest in "sha256:" form.
	Prefixed string `json:"prefixed"`
	// Declared is the value found in the digest field, if any.
	Declared string `json:"declared,omitempty"`
	// Matches reports whether Declared equals Digest. Always false for content.
	Matches bool `json:"matches"`
}

// ComputeChecksum hashes a sidecar record or raw content.
func ComputeChecksum(_ context.Context, _ *mcp.CallToolRequest, input InputComputeChecksum) (*mcp.CallToolResult, OutputComputeChecksum, error) {
	if input.Sidecar == "" {
		if input.Content == "" {
			return nil, OutputComputeChecksum{}, fmt.Errorf("sidecar or content is required")
		}
		digest := checksum.Content([]byte(input.Content))
		return nil, OutputComputeChecksum{Digest: digest, Prefixed: checksum.Prefixed(digest)}, nil
	}

	field := input.Field
	if field == "" {
		field = checksum.SelfField
	}
	rec, err := sidecar.Decode([]byte(input.Sidecar))
	if err != nil {
		return nil, OutputComputeChecksum{}, err
	}
	digest, err := checksum.Compute(rec, field)
	if err != nil {
		return nil, OutputComputeChecksum{}, err
	}
	matches, err := checksum.Verify(rec, field)
	if err != nil {
		return nil, OutputComputeChecksum{}, err
	}
	return nil, OutputComputeChecksum{
		Digest:   digest,
		Prefixed: checksum.Prefixed(digest),
		Declared: rec.String(field),
		Matches:  matches,
	}, nil
}
