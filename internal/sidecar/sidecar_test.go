// SPDX-License-Identifier: Apache-2.0

package sidecar_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Run("appended json wins", func(t *testing.T) {
		dir := t.TempDir()
		doc := filepath.Join(dir, "note.md")
		writeFile(t, doc, "body")
		writeFile(t, doc+".json", "{}")
		writeFile(t, filepath.Join(dir, "note.sidecar.json"), "{}")

		got, ok := sidecar.Resolve(doc)
		require.True(t, ok)
		assert.Equal(t, doc+".json", got)
	})

	t.Run("stem sidecar is second choice", func(t *testing.T) {
		dir := t.TempDir()
		doc := filepath.Join(dir, "note.md")
		writeFile(t, filepath.Join(dir, "note.sidecar.json"), "{}")

		got, ok := sidecar.Resolve(doc)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "note.sidecar.json"), got)
	})

	t.Run("no companion", func(t *testing.T) {
		_, ok := sidecar.Resolve(filepath.Join(t.TempDir(), "note.md"))
		assert.False(t, ok)
	})

	t.Run("directory named like a sidecar is ignored", func(t *testing.T) {
		dir := t.TempDir()
		doc := filepath.Join(dir, "note.md")
		require.NoError(t, os.Mkdir(doc+".json", 0o755))
		_, ok := sidecar.Resolve(doc)
		assert.False(t, ok)
	})
}

func TestCandidates(t *testing.T) {
	got := sidecar.Candidates(filepath.Join("vault", "a.b.md"))
	assert.Equal(t, []string{
		filepath.Join("vault", "a.b.md.json"),
		filepath.Join("vault", "a.b.sidecar.json"),
	}, got)
}

// ---------------------------------------------------------------------------
// Load / Decode
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Run("object with numbers kept literal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.json")
		writeFile(t, path, `{"vault_id":"v","n":1.50}`)
		rec, err := sidecar.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "v", rec.String("vault_id"))
		assert.Equal(t, "1.50", rec.String("n"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := sidecar.Load(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, artifact.ErrIO)
		assert.Contains(t, err.Error(), "Sidecar not found")
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantMsg string
	}{
		{name: "invalid json", data: []byte(`{"a":`), wantMsg: "Sidecar JSON error"},
		{name: "array top level", data: []byte(`[1,2]`), wantMsg: "Sidecar JSON error"},
		{name: "null top level", data: []byte(`null`), wantMsg: "top level must be an object"},
		{name: "trailing data", data: []byte(`{} {}`), wantMsg: "trailing data"},
		{name: "not utf-8", data: []byte{'{', '"', 0xff, '"', '}'}, wantMsg: "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sidecar.Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, artifact.ErrIO)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEncode_RoundTripsAndKeepsUnicode(t *testing.T) {
	rec := artifact.Record{"glyphsig": "⟡", "url": "a<b>"}
	data, err := sidecar.Encode(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), "⟡")
	assert.Contains(t, string(data), "a<b>")
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	back, err := sidecar.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "⟡", back.String("glyphsig"))
}

func TestIsExtended(t *testing.T) {
	assert.True(t, sidecar.IsExtended(artifact.Record{"glyphsig_version": "1.0"}))
	assert.True(t, sidecar.IsExtended(artifact.Record{"artifact_checksum": "x"}))
	assert.False(t, sidecar.IsExtended(artifact.Record{"vault_id": "v"}))
}

// ---------------------------------------------------------------------------
// Extended schema
// ---------------------------------------------------------------------------

var content = []byte("⟡ reflective body\n")

func extendedSidecar() artifact.Record {
	return artifact.Record{
		"glyphsig_version":  "1.0",
		"artifact_checksum": "sha256:" + checksum.Content(content),
		"lineage": map[string]any{
			"origin": map[string]any{
				"timestamp": "2025-01-01T00:00:00Z",
				"author":    "ada",
				"checksum":  "sha256:abc",
			},
		},
		"consent_gates":   map[string]any{"default": "OPEN"},
		"compliance_tier": "L2",
		"extra":           []any{"unknown fields are allowed"},
	}
}

func TestValidateExtended_Clean(t *testing.T) {
	errs, warnings := sidecar.ValidateExtended(extendedSidecar(), content)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)
}

func TestValidateExtended_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r artifact.Record)
		wantField string
	}{
		{name: "glyphsig version", mutate: func(r artifact.Record) { delete(r, "glyphsig_version") }, wantField: "glyphsig_version"},
		{name: "artifact checksum", mutate: func(r artifact.Record) { delete(r, "artifact_checksum") }, wantField: "artifact_checksum"},
		{name: "lineage", mutate: func(r artifact.Record) { delete(r, "lineage") }, wantField: "lineage"},
		{name: "consent gates", mutate: func(r artifact.Record) { delete(r, "consent_gates") }, wantField: "consent_gates"},
		{
			name: "origin author",
			mutate: func(r artifact.Record) {
				delete(r["lineage"].(map[string]any)["origin"].(map[string]any), "author")
			},
			wantField: "author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := extendedSidecar()
			tt.mutate(rec)
			errs, _ := sidecar.ValidateExtended(rec, content)
			require.NotEmpty(t, errs)
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantField) {
					found = true
					assert.ErrorIs(t, err, artifact.ErrSchema)
				}
			}
			assert.True(t, found, "no error names %q: %v", tt.wantField, errs)
		})
	}
}

func TestValidateExtended_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r artifact.Record)
	}{
		{name: "unknown tier", mutate: func(r artifact.Record) { r["compliance_tier"] = "L9" }},
		{name: "malformed artifact checksum", mutate: func(r artifact.Record) { r["artifact_checksum"] = "sha256:nothex" }},
		{name: "consent gates not an object", mutate: func(r artifact.Record) { r["consent_gates"] = "OPEN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := extendedSidecar()
			tt.mutate(rec)
			errs, _ := sidecar.ValidateExtended(rec, content)
			require.NotEmpty(t, errs)
			for _, err := range errs {
				assert.ErrorIs(t, err, artifact.ErrFormat)
			}
		})
	}
}

func TestValidateExtended_DefaultGateWarning(t *testing.T) {
	rec := extendedSidecar()
	rec["consent_gates"] = map[string]any{"ai_training": "LOCK"}
	errs, warnings := sidecar.ValidateExtended(rec, content)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"No default consent gate specified"}, warnings)
}

func TestValidateExtended_ContentMismatch(t *testing.T) {
	errs, _ := sidecar.ValidateExtended(extendedSidecar(), []byte("tampered"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], artifact.ErrChecksumMismatch)

	declared := checksum.Short(checksum.Content(content))
	actual := checksum.Short(checksum.Content([]byte("tampered")))
	assert.Equal(t, "Checksum mismatch: declared "+declared+"..., actual "+actual+"...", errs[0].Error())
}

func TestValidateExtended_BareDigestAccepted(t *testing.T) {
	rec := extendedSidecar()
	rec["artifact_checksum"] = strings.ToUpper(checksum.Content(content))
	errs, _ := sidecar.ValidateExtended(rec, content)
	assert.Empty(t, errs)
}
