// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

// MetadataParseFrontMatter describes the parse_front_matter tool.
var MetadataParseFrontMatter = &mcp.Tool{
	Name: "parse_front_matter",
	Description: "Extract and validate the '---' delimited front matter of a Markdown document. " +
		"Returns the parsed fields, the parser that produced them (yaml, or the scalar line fallback), " +
		"the declared or inferred version, and any missing-key or checksum-format errors.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Full document text starting with '---'.",
			},
			"verify_digest": map[string]interface{}{
				"type":        "boolean",
				"description": "Also check checksum_sha256 against the canonical digest of the front matter.",
			},
		},
	},
}

// InputParseFrontMatter is the input for the ParseFrontMatter tool.
type InputParseFrontMatter struct {
	Content      string `json:"content"`
	VerifyDigest bool   `json:"verify_digest"`
}

// OutputParseFrontMatter is the output for the ParseFrontMatter tool.
type OutputParseFrontMatter struct {
	Fields     artifact.Record `json:"fields"`
	ParserUsed string          `json:"parser_used"`
	Version    string          `json:"version"`
	Valid      bool            `json:"valid"`
	Authentic  bool            `json:"authentic"`
	Errors     []string        `json:"errors"`
	Notes      []string        `json:"notes"`
	// Parsers lists the front-matter parsers available on this server, in preference order.
	Parsers []string `json:"parsers"`
}

// ParseFrontMatter parses and validates front matter held in memory.
func ParseFrontMatter(_ context.Context, _ *mcp.CallToolRequest, input InputParseFrontMatter) (*mcp.CallToolResult, OutputParseFrontMatter, error) {
	if input.Content == "" {
		return nil, OutputParseFrontMatter{}, fmt.Errorf("content is required")
	}

	v := verify.New(verify.Options{VerifyDigest: input.VerifyDigest})
	doc := v.ValidateFrontMatter("inline", input.Content)
	if doc.Record == nil {
		// Split failed; nothing to return but the error.
		return nil, OutputParseFrontMatter{}, doc.Verdict.Errors[0]
	}

	notes := doc.Verdict.Warnings
	if notes == nil {
		notes = []string{}
	}
	return nil, OutputParseFrontMatter{
		Fields:     doc.Record,
		ParserUsed: doc.ParserUsed,
		Version:    doc.Version(),
		Valid:      doc.Verdict.Valid(),
		Authentic:  doc.Verdict.Authentic,
		Errors:     doc.Verdict.ErrorStrings(),
		Notes:      notes,
		Parsers:    v.Extractor().RegisteredParsers(),
	}, nil
}
