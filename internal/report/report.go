// SPDX-License-Identifier: Apache-2.0

// Package report renders verdicts for terminals and tooling.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

// Styles colors report labels. The zero value renders plain text.
type Styles struct {
	enabled bool
	pass    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	heading lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false.
func NewStyles(color bool) Styles {
	if !color {
		return Styles{}
	}
	return Styles{
		enabled: true,
		pass:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")),
		fail:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
	}
}

// ColorEnabled honours the NO_COLOR convention.
func ColorEnabled() bool {
	return os.Getenv("NO_COLOR") == ""
}

func (s Styles) paint(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// FormatText renders one verdict.
func FormatText(v artifact.Verdict, s Styles) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", s.paint(s.heading, "Artifact:"), v.Artifact)
	if len(v.Errors) > 0 {
		fmt.Fprintln(&b, s.paint(s.fail, "ERRORS:"))
		for _, err := range v.Errors {
			fmt.Fprintf(&b, "   • %s\n", err)
		}
	}
	if len(v.Warnings) > 0 {
		fmt.Fprintln(&b, s.paint(s.warn, "WARNINGS:"))
		for _, w := range v.Warnings {
			fmt.Fprintf(&b, "   • %s\n", w)
		}
	}
	if v.Valid() {
		fmt.Fprintf(&b, "%s\n", s.paint(s.pass, "⟡ VERIFIED REFLECTIVE: True"))
	} else {
		fmt.Fprintf(&b, "%s\n", s.paint(s.fail, "⟡ VERIFIED REFLECTIVE: False"))
	}
	return b.String()
}

// FormatSummary renders the batch totals line and the closing verdict.
func FormatSummary(sum verify.Summary, s Styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d artifacts verified reflective\n", s.paint(s.heading, "SUMMARY:"), sum.Valid, sum.Total)
	if sum.Passed() {
		fmt.Fprintln(&b, s.paint(s.pass, "All artifacts comply with MirrorDNA Standard"))
	} else {
		fmt.Fprintln(&b, s.paint(s.fail, "Fix errors and warnings, then re-validate"))
	}
	return b.String()
}

// FormatBatch renders every verdict followed by the summary, blank-line separated.
func FormatBatch(sum verify.Summary, s Styles) string {
	var b strings.Builder
	for _, v := range sum.Verdicts {
		b.WriteString(FormatText(v, s))
		b.WriteString("\n")
	}
	b.WriteString(FormatSummary(sum, s))
	return b.String()
}

// VerdictJSON is the machine-readable form of a verdict.
type VerdictJSON struct {
	Artifact  string   `json:"artifact"`
	Valid     bool     `json:"valid"`
	Authentic bool     `json:"authentic"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// SummaryJSON is the machine-readable form of a batch.
type SummaryJSON struct {
	Valid    int           `json:"valid"`
	Total    int           `json:"total"`
	Passed   bool          `json:"passed"`
	Verdicts []VerdictJSON `json:"verdicts"`
}

// ToJSON converts a verdict. Empty lists encode as [] rather than null.
func ToJSON(v artifact.Verdict) VerdictJSON {
	warnings := v.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return VerdictJSON{
		Artifact:  v.Artifact,
		Valid:     v.Valid(),
		Authentic: v.Authentic,
		Errors:    v.ErrorStrings(),
		Warnings:  warnings,
	}
}

// FormatJSON renders a batch as indented JSON.
func FormatJSON(sum verify.Summary) (string, error) {
	out := SummaryJSON{
		Valid:    sum.Valid,
		Total:    sum.Total,
		Passed:   sum.Passed(),
		Verdicts: make([]VerdictJSON, 0, len(sum.Verdicts)),
	}
	for _, v := range sum.Verdicts {
		out.Verdicts = append(out.Verdicts, ToJSON(v))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal: %w", err)
	}
	return string(data) + "\n", nil
}
