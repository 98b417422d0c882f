// SPDX-License-Identifier: Apache-2.0

package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
)

func TestParse(t *testing.T) {
	for _, name := range []string{"L1", "l2", " L3 ", "L4"} {
		got, err := tier.Parse(name)
		require.NoError(t, err, name)
		assert.NotEqual(t, tier.Unknown, got)
	}

	_, err := tier.Parse("L5")
	require.Error(t, err)
	assert.ErrorIs(t, err, artifact.ErrUnknownTier)
	assert.Equal(t, "Unknown compliance tier: L5", err.Error())
}

func TestOrderingIsByRank(t *testing.T) {
	assert.Less(t, tier.L1, tier.L2)
	assert.Less(t, tier.L3, tier.L4)
	assert.Equal(t, "L4", tier.L4.String())
}

func TestRequirements_Cumulative(t *testing.T) {
	assert.Equal(t, []tier.Capability{
		tier.GlyphsigSyntax, tier.ConsentGates, tier.BasicSidecar,
	}, tier.Requirements(tier.L1))

	l2 := tier.Requirements(tier.L2)
	assert.Len(t, l2, 5)
	assert.Subset(t, l2, tier.Requirements(tier.L1))

	l4 := tier.Requirements(tier.L4)
	assert.Len(t, l4, 9)
	assert.Subset(t, l4, tier.Requirements(tier.L3))
	assert.Equal(t, []tier.Capability{tier.MetaGlyphSupport, tier.SemanticEvolution}, tier.Introduced(tier.L4))
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name         string
		mode         tier.Mode
		declared     string
		target       string
		wantOK       bool
		wantWarnings []string
		wantErrKind  error
	}{
		{name: "equal tiers", declared: "L2", target: "L2", wantOK: true},
		{name: "declared above target", declared: "L3", target: "L1", wantOK: true},
		{name: "missing declared defaults to L1", declared: "", target: "L1", wantOK: true},
		{
			name:         "downgrade is a warning when permissive",
			declared:     "L1",
			target:       "L2",
			wantOK:       true,
			wantWarnings: []string{"Declared tier L1 below target L2"},
		},
		{
			name:        "downgrade is an error when strict",
			mode:        tier.Strict,
			declared:    "L1",
			target:      "L2",
			wantOK:      false,
			wantErrKind: artifact.ErrSchema,
		},
		{
			name:         "unknown declared tier treated as L1",
			declared:     "gold",
			target:       "L1",
			wantOK:       true,
			wantWarnings: []string{"Unknown compliance tier: gold (treated as L1)"},
		},
		{
			name:        "unknown target",
			declared:    "L1",
			target:      "L7",
			wantOK:      false,
			wantErrKind: artifact.ErrUnknownTier,
		},
		{
			name:     "unenforced target adds a note",
			declared: "L4",
			target:   "L3",
			wantOK:   true,
			wantWarnings: []string{
				"Tier L3 capabilities are declared but not mechanically enforced",
			},
		},
		{
			name:     "rank not string order",
			declared: "L10",
			target:   "L2",
			wantOK:   true,
			wantWarnings: []string{
				"Unknown compliance tier: L10 (treated as L1)",
				"Declared tier L1 below target L2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, res := tier.Checker{Mode: tt.mode}.Check(tt.declared, tt.target)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantWarnings, res.Warnings)
			if tt.wantErrKind == nil {
				assert.Empty(t, res.Errors)
				return
			}
			require.Len(t, res.Errors, 1)
			assert.ErrorIs(t, res.Errors[0], tt.wantErrKind)
		})
	}
}
