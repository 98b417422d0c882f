// SPDX-License-Identifier: Apache-2.0

package tier

import (
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Mode selects how a declared tier below the target is reported.
type Mode int

const (
	// Permissive reports a downgrade as a warning.
	Permissive Mode = iota
	// Strict reports a downgrade as an error.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// Result holds the findings of one tier check.
type Result struct {
	Errors   []error
	Warnings []string
}

// Checker compares the tier a sidecar declares with the tier a run targets.
type Checker struct {
	Mode Mode
}

// Check validates declared against target. An empty declared tier means L1. The
// boolean is false only when Errors is non-empty.
func (c Checker) Check(declared, target string) (bool, Result) {
	var res Result

	want, err := Parse(target)
	if err != nil {
		res.Errors = append(res.Errors, err)
		return false, res
	}

	have := L1
	if declared != "" {
		parsed, err := Parse(declared)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error()+" (treated as L1)")
		} else {
			have = parsed
		}
	}

	if have < want {
		msg := "Declared tier " + have.String() + " below target " + want.String()
		if c.Mode == Strict {
			res.Errors = append(res.Errors, artifact.Issuef(artifact.ErrSchema, "%s", msg))
		} else {
			res.Warnings = append(res.Warnings, msg)
		}
	}

	if want > Enforced {
		res.Warnings = append(res.Warnings,
			"Tier "+want.String()+" capabilities are declared but not mechanically enforced")
	}

	return len(res.Errors) == 0, res
}
