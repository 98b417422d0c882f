// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// ScalarParser is the degraded tier that is always available. Each non-blank,
// non-comment line holding a ':' becomes a string-valued key; it never produces
// nested values.
type ScalarParser struct{}

func NewScalarParser() *ScalarParser {
	return &ScalarParser{}
}

func (p *ScalarParser) Name() string {
	return "scalar"
}

func (p *ScalarParser) Available() bool {
	return true
}

func (p *ScalarParser) Parse(block string) (artifact.Record, error) {
	rec := artifact.Record{}
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		rec[strings.TrimSpace(key)] = value
	}
	return rec, nil
}
