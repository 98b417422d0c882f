// SPDX-License-Identifier: Apache-2.0

// Package fields checks a parsed record against a required-key list and the format
// constraints of checksum-shaped fields.
package fields

import (
	"regexp"
	"sort"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
)

// formatRule binds a key predicate to a value constraint.
type formatRule struct {
	applies func(key string) bool
	valid   func(value string) bool
	message string
}

// formatRules are evaluated in order; the first rule that applies to a key wins.
var formatRules = []formatRule{
	{
		applies: IsChecksumKey,
		valid: func(value string) bool {
			return checksum.IsHex64(strings.TrimPrefix(strings.TrimSpace(value), "sha256:"))
		},
		message: "Invalid '%s' (must be 64 hex chars)",
	},
}

// IsChecksumKey reports whether key holds a digest and is subject to the 64-hex rule.
func IsChecksumKey(key string) bool {
	return key == checksum.SelfField || key == "checksum" || strings.HasSuffix(key, "_checksum")
}

var versionInTitle = regexp.MustCompile(`(?i)v(\d+\.\d+(?:\.\d+)?)`)

// Validate reports every required key that is missing or empty, every present field
// that breaks a format rule, and notes about version inference. The caller decides
// the verdict: no errors means pass, whatever the notes say.
func Validate(record artifact.Record, requiredKeys []string) ([]error, []string) {
	var errs []error
	var notes []string

	for _, key := range requiredKeys {
		if artifact.IsEmpty(record[key]) {
			errs = append(errs, artifact.Issuef(artifact.ErrSchema, "Missing required key: '%s'", key))
		}
	}

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := record[key]
		if artifact.IsEmpty(value) {
			continue
		}
		for _, rule := range formatRules {
			if !rule.applies(key) {
				continue
			}
			if !rule.valid(artifact.StringValue(value)) {
				errs = append(errs, artifact.Issuef(artifact.ErrFormat, rule.message, key))
			}
			break
		}
	}

	if strings.TrimSpace(record.String("version")) == "" {
		if version, ok := InferVersion(record); ok {
			notes = append(notes, "Note: Auto-inferred version = "+version)
		} else {
			notes = append(notes, "Warning: 'version' missing and could not be inferred from title")
		}
	}

	return errs, notes
}

// InferVersion extracts a v<major>.<minor>[.<patch>] token from the title field.
func InferVersion(record artifact.Record) (string, bool) {
	m := versionInTitle.FindStringSubmatch(record.String("title"))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Version returns the declared version, or the one inferred from the title, or
// "unknown".
func Version(record artifact.Record) string {
	if v := strings.TrimSpace(record.String("version")); v != "" {
		return v
	}
	if v, ok := InferVersion(record); ok {
		return v
	}
	return "unknown"
}
