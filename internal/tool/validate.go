// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/glyphsig"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

// MetadataValidateArtifact describes the validate_artifact tool.
var MetadataValidateArtifact = &mcp.Tool{
	Name: "validate_artifact",
	Description: "Validate a reflective artifact and its JSON sidecar. " +
		"Checks glyph markers (reflection seal, balanced ⟦ ⟧ frames, consent gates, ORIGIN lineage), " +
		"the sidecar's required fields and checksums, and the declared compliance tier against a target. " +
		"Pass either a file path readable by the server, or the artifact content together with its sidecar JSON.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the artifact on the server. The sidecar is resolved next to it.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Artifact text. Used when path is omitted.",
			},
			"sidecar": map[string]interface{}{
				"type":        "string",
				"description": "Sidecar JSON document. Required with content.",
			},
			"tier": map[string]interface{}{
				"type":        "string",
				"description": "Target compliance tier. Defaults to L1.",
				"enum":        []string{"L1", "L2", "L3", "L4"},
			},
			"strict_tier": map[string]interface{}{
				"type":        "boolean",
				"description": "Report a declared tier below the target as an error instead of a warning.",
			},
		},
	},
}

// InputValidateArtifact is the input for the ValidateArtifact tool.
type InputValidateArtifact struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	Sidecar    string `json:"sidecar"`
	Tier       string `json:"tier"`
	StrictTier bool   `json:"strict_tier"`
}

// OutputValidateArtifact is the output for the ValidateArtifact tool.
type OutputValidateArtifact struct {
	Artifact  string   `json:"artifact"`
	Valid     bool     `json:"valid"`
	Authentic bool     `json:"authentic"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	// Tier is the target tier the artifact was checked against.
	Tier string `json:"tier"`
	// Markers counts each glyph, consent gate and lineage marker found in the body.
	Markers map[string]int    `json:"markers"`
	Origins []glyphsig.Origin `json:"origins"`
}

func toOutput(v artifact.Verdict, target string, content []byte) OutputValidateArtifact {
	j := report.ToJSON(v)
	out := OutputValidateArtifact{
		Artifact:  j.Artifact,
		Valid:     j.Valid,
		Authentic: j.Authentic,
		Errors:    j.Errors,
		Warnings:  j.Warnings,
		Tier:      target,
		Markers:   map[string]int{},
		Origins:   []glyphsig.Origin{},
	}
	if len(content) == 0 {
		return out
	}
	text := string(content)
	for _, c := range glyphsig.CountMarkers(text) {
		out.Markers[c.Marker] = c.N
	}
	if origins := glyphsig.ParseOrigins(text); len(origins) > 0 {
		out.Origins = origins
	}
	return out
}

// ValidateArtifact runs full artifact validation. Defects are reported in the output,
// not as tool errors; only unusable input fails the call.
func ValidateArtifact(_ context.Context, _ *mcp.CallToolRequest, input InputValidateArtifact) (*mcp.CallToolResult, OutputValidateArtifact, error) {
	target := input.Tier
	if target == "" {
		target = tier.L1.String()
	}
	if _, err := tier.Parse(target); err != nil {
		return nil, OutputValidateArtifact{}, err
	}

	mode := tier.Permissive
	if input.StrictTier {
		mode = tier.Strict
	}
	v := verify.New(verify.Options{Tier: target, TierMode: mode})

	if input.Path != "" {
		verdict := v.ValidateArtifact(input.Path)
		// An unreadable artifact is already reported in the verdict.
		content, _ := os.ReadFile(input.Path)
		return nil, toOutput(verdict, target, content), nil
	}

	if input.Content == "" {
		return nil, OutputValidateArtifact{}, fmt.Errorf("path or content is required")
	}
	if input.Sidecar == "" {
		return nil, OutputValidateArtifact{}, fmt.Errorf("sidecar is required when content is given")
	}
	rec, err := sidecar.Decode([]byte(input.Sidecar))
	if err != nil {
		return nil, OutputValidateArtifact{}, err
	}

	verdict := v.ValidateContent("inline", []byte(input.Content), rec)
	return nil, toOutput(verdict, target, []byte(input.Content)), nil
}
