// SPDX-License-Identifier: Apache-2.0

// Package tier models the cumulative compliance ladder L1 ⊂ L2 ⊂ L3 ⊂ L4 and checks
// a declared tier against a validation target.
package tier

import (
	"fmt"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Tier is a compliance level. Higher rank means more capabilities required.
type Tier int

const (
	Unknown Tier = 0
	L1      Tier = 1
	L2      Tier = 2
	L3      Tier = 3
	L4      Tier = 4
)

// All lists the known tiers in ascending rank.
var All = []Tier{L1, L2, L3, L4}

// Enforced is the highest tier whose requirements are checked mechanically.
const Enforced = L2

func (t Tier) String() string {
	if t >= L1 && t <= L4 {
		return fmt.Sprintf("L%d", int(t))
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Parse maps "L1".."L4" (case-insensitive, surrounding space ignored) to a Tier.
func Parse(name string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "L1":
		return L1, nil
	case "L2":
		return L2, nil
	case "L3":
		return L3, nil
	case "L4":
		return L4, nil
	}
	return Unknown, artifact.Issuef(artifact.ErrUnknownTier, "Unknown compliance tier: %s", name)
}

// Capability is one requirement introduced by a tier.
type Capability string

const (
	GlyphsigSyntax    Capability = "glyphsig_syntax"
	ConsentGates      Capability = "consent_gates"
	BasicSidecar      Capability = "basic_sidecar"
	FullLineage       Capability = "full_lineage"
	ChangeHistory     Capability = "change_history"
	PlatformAgnostic  Capability = "platform_agnostic"
	PortableEncoding  Capability = "portable_encoding"
	MetaGlyphSupport  Capability = "meta_glyph_support"
	SemanticEvolution Capability = "semantic_evolution"
)

var introduced = map[Tier][]Capability{
	L1: {GlyphsigSyntax, ConsentGates, BasicSidecar},
	L2: {FullLineage, ChangeHistory},
	L3: {PlatformAgnostic, PortableEncoding},
	L4: {MetaGlyphSupport, SemanticEvolution},
}

// Introduced returns only the capabilities t adds over the tier below it.
func Introduced(t Tier) []Capability {
	return append([]Capability(nil), introduced[t]...)
}

// Requirements returns every capability t requires, lower tiers first.
func Requirements(t Tier) []Capability {
	var out []Capability
	for _, lower := range All {
		if lower > t {
			break
		}
		out = append(out, introduced[lower]...)
	}
	return out
}
