// SPDX-License-Identifier: Apache-2.0

package frontmatter

import (
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Extractor parses front matter with the richest available parser and falls back to
// the next one when a parser rejects the block.
type Extractor struct {
	parsers []StructuredParser
}

// NewExtractor creates an Extractor from parsers in preference order. Parsers that
// report themselves unavailable are dropped here, once. The last parser is expected
// to be the scalar fallback that always succeeds.
func NewExtractor(parsers ...StructuredParser) *Extractor {
	available := make([]StructuredParser, 0, len(parsers))
	for _, p := range parsers {
		if p != nil && p.Available() {
			available = append(available, p)
		}
	}
	return &Extractor{parsers: available}
}

// Result is the output of a successful extraction.
type Result struct {
	Record     artifact.Record
	Body       string
	ParserUsed string
}

// Parse splits text and parses its front-matter block. Only a missing or unclosed
// block is an error; a block nobody can parse yields an empty Record.
func (e *Extractor) Parse(text string) (Result, error) {
	block, body, err := Split(text)
	if err != nil {
		return Result{}, err
	}
	rec, name := e.ParseBlock(block)
	return Result{Record: rec, Body: body, ParserUsed: name}, nil
}

// ParseBlock parses an already extracted block.
func (e *Extractor) ParseBlock(block string) (artifact.Record, string) {
	for _, p := range e.parsers {
		rec, err := p.Parse(block)
		if err != nil {
			continue
		}
		if rec == nil {
			rec = artifact.Record{}
		}
		return rec, p.Name()
	}
	return artifact.Record{}, ""
}

// RegisteredParsers returns the names of the parsers that reported themselves available.
func (e *Extractor) RegisteredParsers() []string {
	names := make([]string, len(e.parsers))
	for i, p := range e.parsers {
		names[i] = p.Name()
	}
	return names
}
