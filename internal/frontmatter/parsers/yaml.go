// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/fields"
)

// YAMLParser is the full structured tier: YAML mapping syntax with arbitrary nesting.
type YAMLParser struct {
	enabled bool
}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{enabled: true}
}

// NewDisabledYAMLParser returns a parser that reports itself unavailable, forcing the scalar
// fallback. Used when configuration pins front-matter parsing to scalar mode.
func NewDisabledYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) Available() bool {
	return p.enabled
}

// Parse decodes the block. A top level that is not a mapping yields an empty Record.
// Digest and version keys keep their literal text even when it looks like a number.
func (p *YAMLParser) Parse(block string) (artifact.Record, error) {
	if strings.TrimSpace(block) == "" {
		return artifact.Record{}, nil
	}
	var doc any
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML front matter: %w", err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return artifact.Record{}, nil
	}
	rec := artifact.Record(m)

	file, err := parser.ParseBytes([]byte(block), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML front matter: %w", err)
	}
	for _, d := range file.Docs {
		keepLiterals(d.Body, rec)
	}
	return rec, nil
}

// keepLiterals replaces numeric top-level values of literal keys with their source text.
func keepLiterals(body ast.Node, rec artifact.Record) {
	var values []*ast.MappingValueNode
	switch n := body.(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	}
	for _, mv := range values {
		if mv.Key == nil || mv.Value == nil {
			continue
		}
		key := mv.Key.GetToken().Value
		if key != "version" && !fields.IsChecksumKey(key) {
			continue
		}
		switch mv.Value.(type) {
		case *ast.IntegerNode, *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
			rec[key] = mv.Value.GetToken().Value
		}
	}
}
