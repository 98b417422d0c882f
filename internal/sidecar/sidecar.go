// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Naming conventions, tried in order: <artifact>.json, then <stem>.sidecar.json.
var conventions = []func(artifactPath string) string{
	func(p string) string { return p + ".json" },
	func(p string) string {
		base := filepath.Base(p)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(filepath.Dir(p), stem+".sidecar.json")
	},
}

// Resolve returns the first existing companion metadata file for artifactPath. A
// missing sidecar is not an error here; callers report it.
func Resolve(artifactPath string) (string, bool) {
	for _, candidate := range Candidates(artifactPath) {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Candidates lists the sidecar paths Resolve tries, in order.
func Candidates(artifactPath string) []string {
	out := make([]string, 0, len(conventions))
	for _, conv := range conventions {
		out = append(out, conv(artifactPath))
	}
	return out
}

// Load reads a sidecar and decodes its top-level JSON object. Numbers keep their
// literal text so canonical hashing is exact.
func Load(path string) (artifact.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &artifact.Issue{Kind: artifact.ErrIO, Msg: fmt.Sprintf("Sidecar not found: %s", path)}
		}
		return nil, &artifact.Issue{Kind: artifact.ErrIO, Msg: fmt.Sprintf("Sidecar unreadable: %v", err)}
	}
	return Decode(data)
}

// Decode parses sidecar bytes. Input must be UTF-8 and hold exactly one JSON object.
func Decode(data []byte) (artifact.Record, error) {
	if !utf8.Valid(data) {
		return nil, artifact.Issuef(artifact.ErrIO, "Sidecar must be UTF-8 encoded")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec artifact.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, artifact.Issuef(artifact.ErrIO, "Sidecar JSON error: %v", err)
	}
	if rec == nil {
		return nil, artifact.Issuef(artifact.ErrIO, "Sidecar JSON error: top level must be an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, artifact.Issuef(artifact.ErrIO, "Sidecar JSON error: trailing data after object")
	}
	return rec, nil
}

// Encode renders a record the way sidecars are stored: two-space indent, literal
// unicode, trailing newline.
func Encode(rec artifact.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("sidecar: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// IsExtended reports whether rec follows the extended schema rather than the basic
// required-key set.
func IsExtended(rec artifact.Record) bool {
	return rec.Has("glyphsig_version") || rec.Has("artifact_checksum")
}
