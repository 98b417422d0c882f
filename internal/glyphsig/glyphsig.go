// SPDX-License-Identifier: Apache-2.0

// Package glyphsig checks the structural glyph markers of a reflective document body:
// the reflection seal, enclosure-frame balance, consent-gate regions and lineage
// markers. Every check returns its own Result; nothing is accumulated on shared state.
package glyphsig

import (
	"regexp"
	"sort"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Glyphsig vocabulary.
const (
	Seal       = "⟡"
	Bridge     = "⸻"
	FrameOpen  = "⟦"
	FrameClose = "⟧"
	Temporal   = "⧖"
	Link       = "↔"
)

// MetaGlyphs maps each meta glyph to its name.
var MetaGlyphs = map[string]string{
	Seal:       "Reflection Seal",
	Bridge:     "Continuity Bridge",
	FrameOpen:  "Enclosure Frame Start",
	FrameClose: "Enclosure Frame End",
	Temporal:   "Temporal Marker",
	Link:       "Bidirectional Link",
}

var (
	ConsentGates   = []string{"PRIV:", "LOCK:", "OPEN:"}
	LineageMarkers = []string{"ORIGIN:", "SUCCESSOR:", "BRANCH:"}
)

// Result holds the defects found by one check.
type Result struct {
	Errors   []error
	Warnings []string
}

// Merge appends other to r and returns the combined result.
func (r Result) Merge(other Result) Result {
	return Result{
		Errors:   append(append([]error(nil), r.Errors...), other.Errors...),
		Warnings: append(append([]string(nil), r.Warnings...), other.Warnings...),
	}
}

// Check runs every body check and concatenates their results. No check short-circuits
// another.
func Check(text string) Result {
	res := CheckSeal(text)
	_, balance := CheckBalance(text, FrameOpen, FrameClose)
	_, gates := CheckTaggedRegions(text, ConsentGateRegions)
	_, lineage := CheckLineage(text)
	return res.Merge(balance).Merge(gates).Merge(lineage)
}

// CheckSeal warns when the reflection seal is absent. The seal is recommended, not
// required.
func CheckSeal(text string) Result {
	if strings.Contains(text, Seal) {
		return Result{}
	}
	return Result{Warnings: []string{"No reflection seal (" + Seal + ") found - recommended for verification"}}
}

// CheckBalance compares the number of open and close symbols. It checks cardinality
// only: "⟧ ... ⟦" is balanced.
func CheckBalance(text, openSym, closeSym string) (bool, Result) {
	opens := strings.Count(text, openSym)
	closes := strings.Count(text, closeSym)
	if opens == closes {
		return true, Result{}
	}
	return false, Result{Errors: []error{
		artifact.Issuef(artifact.ErrMarkerImbalance, "Mismatched enclosure frames: %d open, %d close", opens, closes),
	}}
}

// RegionSet describes a family of tagged regions closed by a shared symbol.
type RegionSet struct {
	Label    string
	Prefixes []string
	Close    string
	// Absent is the warning emitted when no prefix occurs at all.
	Absent string
}

// ConsentGateRegions are the consent gates, each closed by the enclosure frame.
var ConsentGateRegions = RegionSet{
	Label:    "consent gate",
	Prefixes: ConsentGates,
	Close:    FrameClose,
	Absent:   "No consent gates found - consider adding access permissions",
}

type occurrence struct {
	pos    int
	prefix string
}

// CheckTaggedRegions requires every prefix occurrence to be followed by the close
// symbol before the next prefix occurrence or the end of text.
func CheckTaggedRegions(text string, set RegionSet) (bool, Result) {
	occs := findAll(text, set.Prefixes)
	if len(occs) == 0 {
		if set.Absent == "" {
			return true, Result{}
		}
		return true, Result{Warnings: []string{set.Absent}}
	}

	var res Result
	reported := map[string]bool{}
	for i, oc := range occs {
		start := oc.pos + len(oc.prefix)
		end := len(text)
		if i+1 < len(occs) {
			end = occs[i+1].pos
		}
		if end < start {
			end = start
		}
		if strings.Contains(text[start:end], set.Close) || reported[oc.prefix] {
			continue
		}
		reported[oc.prefix] = true
		res.Errors = append(res.Errors, artifact.Issuef(artifact.ErrMalformedRegion,
			"Malformed %s: %s not properly enclosed", set.Label, oc.prefix))
	}
	return len(res.Errors) == 0, res
}

func findAll(text string, prefixes []string) []occurrence {
	var occs []occurrence
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		for from := 0; from < len(text); {
			idx := strings.Index(text[from:], p)
			if idx < 0 {
				break
			}
			occs = append(occs, occurrence{pos: from + idx, prefix: p})
			from += idx + len(p)
		}
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].pos < occs[j].pos })
	return occs
}

// originLine matches the remainder of an ORIGIN: line.
var originLine = regexp.MustCompile(`^\s*([^|\s][^|]*)\|\s*([^|\s][^|]*)\|\s*(\S+)`)

// CheckLineage validates every ORIGIN marker against
// "ORIGIN: <timestamp> | <author> | <checksum>" and warns when none is present.
func CheckLineage(text string) (bool, Result) {
	origins := findAll(text, []string{"ORIGIN:"})
	if len(origins) == 0 {
		return true, Result{Warnings: []string{"No ORIGIN marker found - lineage tracking recommended"}}
	}
	for _, oc := range origins {
		rest := text[oc.pos+len(oc.prefix):]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		if !originLine.MatchString(rest) {
			return false, Result{Errors: []error{
				artifact.Issuef(artifact.ErrFormat, "ORIGIN marker malformed - expected: timestamp | author | checksum"),
			}}
		}
	}
	return true, Result{}
}

// Origin is a parsed ORIGIN marker.
type Origin struct {
	Timestamp string `json:"timestamp"`
	Author    string `json:"author"`
	Checksum  string `json:"checksum"`
}

// ParseOrigins returns every well-formed ORIGIN marker in text.
func ParseOrigins(text string) []Origin {
	var out []Origin
	for _, oc := range findAll(text, []string{"ORIGIN:"}) {
		rest := text[oc.pos+len(oc.prefix):]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		m := originLine.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		out = append(out, Origin{
			Timestamp: strings.TrimSpace(m[1]),
			Author:    strings.TrimSpace(m[2]),
			Checksum:  m[3],
		})
	}
	return out
}

// Count is the number of occurrences of one marker in a body.
type Count struct {
	Marker string
	Name   string
	N      int
}

// metaOrder fixes the reporting order of MetaGlyphs.
var metaOrder = []string{Seal, Bridge, FrameOpen, FrameClose, Temporal, Link}

// CountMarkers counts the meta glyphs, consent gates and lineage markers present in
// text, in vocabulary order. Markers that do not occur are omitted.
func CountMarkers(text string) []Count {
	var out []Count
	add := func(marker, name string) {
		if n := strings.Count(text, marker); n > 0 {
			out = append(out, Count{Marker: marker, Name: name, N: n})
		}
	}
	for _, g := range metaOrder {
		add(g, MetaGlyphs[g])
	}
	for _, p := range ConsentGates {
		add(p, strings.TrimSuffix(p, ":")+" consent gate")
	}
	for _, p := range LineageMarkers {
		add(p, strings.TrimSuffix(p, ":")+" lineage marker")
	}
	return out
}
