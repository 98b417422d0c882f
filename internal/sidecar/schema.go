// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
)

//go:embed schema.cue
var schemaSource string

// Schema validates extended sidecars against the embedded CUE definition.
type Schema struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewSchema compiles the embedded definition.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	compiled := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("sidecar: compile schema: %w", err)
	}
	def := compiled.LookupPath(cue.ParsePath("#Sidecar"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("sidecar: lookup #Sidecar: %w", err)
	}
	return &Schema{ctx: ctx, def: def}, nil
}

// Validate checks rec against the extended schema and compares artifact_checksum with
// the SHA-256 of content. Schema violations, a missing default consent gate and a
// digest mismatch are all reported; none stops the others.
func (s *Schema) Validate(rec artifact.Record, content []byte) ([]error, []string) {
	var errs []error
	var warnings []string

	errs = append(errs, s.conform(rec)...)

	if gates, ok := rec["consent_gates"].(map[string]any); ok {
		if _, ok := gates["default"]; !ok {
			warnings = append(warnings, "No default consent gate specified")
		}
	}

	if declared, ok := rec["artifact_checksum"].(string); ok && checksum.IsHex64(checksum.Normalize(declared)) {
		declared = checksum.Normalize(declared)
		actual := checksum.Content(content)
		if declared != actual {
			errs = append(errs, artifact.Issuef(artifact.ErrChecksumMismatch,
				"Checksum mismatch: declared %s..., actual %s...", checksum.Short(declared), checksum.Short(actual)))
		}
	}
	return errs, warnings
}

func (s *Schema) conform(rec artifact.Record) []error {
	data, err := json.Marshal(rec)
	if err != nil {
		return []error{artifact.Issuef(artifact.ErrIO, "Sidecar JSON error: %v", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.ctx.CompileBytes(data, cue.Filename("sidecar.json"))
	if err := value.Err(); err != nil {
		return []error{artifact.Issuef(artifact.ErrIO, "Sidecar JSON error: %v", err)}
	}
	unified := s.def.Unify(value)
	verr := unified.Validate(cue.Concrete(true))
	if verr == nil {
		return nil
	}

	seen := map[string]bool{}
	var out []error
	for _, e := range cueerrors.Errors(verr) {
		field := fieldPath(e.Path())
		var issue error
		if isMissing(e.Error()) {
			issue = artifact.Issuef(artifact.ErrSchema, "Missing required sidecar field: %s", field)
		} else {
			issue = artifact.Issuef(artifact.ErrFormat, "Invalid sidecar field: %s", field)
		}
		if seen[issue.Error()] {
			continue
		}
		seen[issue.Error()] = true
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Error() < out[j].Error() })
	return out
}

func isMissing(msg string) bool {
	return strings.Contains(msg, "required but not present") || strings.Contains(msg, "incomplete value")
}

// fieldPath drops definition selectors such as "#Sidecar" from a CUE error path.
func fieldPath(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if strings.HasPrefix(p, "#") {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "(root)"
	}
	return strings.Join(parts, ".")
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// ValidateExtended validates rec with the embedded schema compiled once per process.
func ValidateExtended(rec artifact.Record, content []byte) ([]error, []string) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = NewSchema()
	})
	if defaultSchemaErr != nil {
		return []error{artifact.Issuef(artifact.ErrIO, "Sidecar schema unavailable: %v", defaultSchemaErr)}, nil
	}
	return defaultSchema.Validate(rec, content)
}
