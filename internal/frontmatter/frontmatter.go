// SPDX-License-Identifier: Apache-2.0

package frontmatter

import (
	"fmt"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Marker opens and closes a front-matter block.
const Marker = "---"

// StructuredParser turns a front-matter block into a Record.
type StructuredParser interface {
	// Available is the feature-detection check, consulted once when an Extractor
	// is built.
	Available() bool
	Parse(block string) (artifact.Record, error)
	Name() string
}

// Split separates the front-matter block from the document body. The text must start
// with Marker and a later line must start with Marker as well.
func Split(text string) (block, body string, err error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(text, Marker) {
		return "", "", artifact.Issuef(artifact.ErrMalformedDocument,
			"Front matter must start with '%s' at the first line", Marker)
	}
	end := strings.Index(text[len(Marker):], "\n"+Marker)
	if end == -1 {
		return "", "", artifact.Issuef(artifact.ErrMalformedDocument,
			"Closing '%s' for front matter not found", Marker)
	}
	end += len(Marker)
	block = strings.TrimSpace(text[len(Marker):end])

	body = text[end+1+len(Marker):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return block, body, nil
}

// SetField rewrites the top-level `key: value` line inside the front-matter block of
// text, or inserts it right after the opening marker when the key is not there yet.
// Indented lines belong to nested mappings and are never touched. Every other line is
// kept byte for byte, line endings included.
func SetField(text, key, value string) (string, error) {
	if _, _, err := Split(text); err != nil {
		return "", err
	}
	eol := "\n"
	if strings.HasPrefix(text, Marker+"\r\n") {
		eol = "\r\n"
	}
	line := fmt.Sprintf("%s: %s", key, value)

	lines := strings.SplitAfter(text, "\n")
	for i := 1; i < len(lines); i++ {
		content := strings.TrimRight(lines[i], "\r\n")
		if strings.HasPrefix(content, Marker) {
			break
		}
		if content == "" || content[0] == ' ' || content[0] == '\t' {
			continue
		}
		k, _, ok := strings.Cut(content, ":")
		if ok && strings.TrimRight(k, " \t") == key {
			lines[i] = line + lines[i][len(content):]
			return strings.Join(lines, ""), nil
		}
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[0], line+eol)
	out = append(out, lines[1:]...)
	return strings.Join(out, ""), nil
}
