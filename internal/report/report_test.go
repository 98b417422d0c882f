// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

var plain = report.NewStyles(false)

func failing() artifact.Verdict {
	return artifact.Verdict{
		Artifact: "notes/a.md",
		Errors:   []error{artifact.Issuef(artifact.ErrMarkerImbalance, "Mismatched enclosure frames: 1 open, 0 close")},
		Warnings: []string{"No ORIGIN marker found - lineage tracking recommended"},
	}
}

func TestFormatText(t *testing.T) {
	t.Run("failing verdict", func(t *testing.T) {
		want := "Artifact: notes/a.md\n" +
			"ERRORS:\n" +
			"   • Mismatched enclosure frames: 1 open, 0 close\n" +
			"WARNINGS:\n" +
			"   • No ORIGIN marker found - lineage tracking recommended\n" +
			"⟡ VERIFIED REFLECTIVE: False\n"
		assert.Equal(t, want, report.FormatText(failing(), plain))
	})

	t.Run("clean verdict", func(t *testing.T) {
		got := report.FormatText(artifact.Verdict{Artifact: "b.md", Authentic: true}, plain)
		assert.Equal(t, "Artifact: b.md\n⟡ VERIFIED REFLECTIVE: True\n", got)
	})
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t,
		"SUMMARY: 2/2 artifacts verified reflective\nAll artifacts comply with MirrorDNA Standard\n",
		report.FormatSummary(verify.Summary{Valid: 2, Total: 2}, plain))
	assert.Equal(t,
		"SUMMARY: 1/2 artifacts verified reflective\nFix errors and warnings, then re-validate\n",
		report.FormatSummary(verify.Summary{Valid: 1, Total: 2}, plain))
}

func TestFormatBatch(t *testing.T) {
	sum := verify.Summary{Verdicts: []artifact.Verdict{failing()}, Valid: 0, Total: 1}
	got := report.FormatBatch(sum, plain)
	assert.Contains(t, got, "Artifact: notes/a.md\n")
	assert.Contains(t, got, "SUMMARY: 0/1 artifacts verified reflective\n")
}

func TestFormatJSON(t *testing.T) {
	sum := verify.Summary{
		Verdicts: []artifact.Verdict{failing(), {Artifact: "b.md", Authentic: true}},
		Valid:    1,
		Total:    2,
	}
	out, err := report.FormatJSON(sum)
	require.NoError(t, err)

	var decoded report.SummaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.False(t, decoded.Passed)
	assert.Equal(t, 2, decoded.Total)
	require.Len(t, decoded.Verdicts, 2)
	assert.Equal(t, []string{"Mismatched enclosure frames: 1 open, 0 close"}, decoded.Verdicts[0].Errors)
	assert.True(t, decoded.Verdicts[1].Authentic)
	assert.Contains(t, out, `"errors": []`)
}

func TestColoredStylesKeepText(t *testing.T) {
	got := report.FormatText(failing(), report.NewStyles(true))
	assert.Contains(t, got, "notes/a.md")
	assert.Contains(t, got, "Mismatched enclosure frames")
}
