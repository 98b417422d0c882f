// SPDX-License-Identifier: Apache-2.0

package frontmatter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/frontmatter"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/frontmatter/parsers"
)

func defaultExtractor() *frontmatter.Extractor {
	return frontmatter.NewExtractor(parsers.NewYAMLParser(), parsers.NewScalarParser())
}

// ---------------------------------------------------------------------------
// Split
// ---------------------------------------------------------------------------

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantBlock string
		wantBody  string
		wantErr   string
	}{
		{
			name:      "block and body",
			text:      "---\ntitle: Doc v2.3\nvault_id: x\n---\nbody",
			wantBlock: "title: Doc v2.3\nvault_id: x",
			wantBody:  "body",
		},
		{
			name:      "crlf line endings",
			text:      "---\r\ntitle: a\r\n---\r\nline one\r\nline two",
			wantBlock: "title: a",
			wantBody:  "line one\nline two",
		},
		{
			name:      "closing marker at end of text",
			text:      "---\ntitle: a\n---",
			wantBlock: "title: a",
			wantBody:  "",
		},
		{
			name:      "empty block",
			text:      "---\n---\nbody",
			wantBlock: "",
			wantBody:  "body",
		},
		{
			name:    "missing opening marker",
			text:    "title: a\n---\n",
			wantErr: "must start with '---'",
		},
		{
			name:    "leading blank line is not allowed",
			text:    "\n---\ntitle: a\n---\n",
			wantErr: "must start with '---'",
		},
		{
			name:    "unclosed block",
			text:    "---\ntitle: a\nbody without end",
			wantErr: "Closing '---' for front matter not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, body, err := frontmatter.Split(tt.text)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, artifact.ErrMalformedDocument)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlock, block)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

func TestExtractor_RegisteredParsers(t *testing.T) {
	assert.Equal(t, []string{"yaml", "scalar"}, defaultExtractor().RegisteredParsers())

	scalarOnly := frontmatter.NewExtractor(parsers.NewDisabledYAMLParser(), parsers.NewScalarParser())
	assert.Equal(t, []string{"scalar"}, scalarOnly.RegisteredParsers())
}

func TestExtractor_Parse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantParser string
		validate   func(t *testing.T, rec artifact.Record)
	}{
		{
			name:       "flat scalars via yaml",
			text:       "---\ntitle: Doc v2.3\nvault_id: x\n---\nbody",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.Equal(t, "Doc v2.3", rec.String("title"))
				assert.Equal(t, "x", rec.String("vault_id"))
				assert.False(t, rec.Has("version"))
			},
		},
		{
			name:       "nested mapping via yaml",
			text:       "---\nlineage:\n  origin:\n    author: ada\n---\n",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				lineage, ok := rec["lineage"].(map[string]any)
				require.True(t, ok, "lineage should be a mapping, got %T", rec["lineage"])
				origin, ok := lineage["origin"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "ada", origin["author"])
			},
		},
		{
			name:       "non-mapping top level coerced to empty record",
			text:       "---\n- a\n- b\n---\n",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.Empty(t, rec)
			},
		},
		{
			name:       "invalid yaml falls back to scalar lines",
			text:       "---\ntitle: [unclosed\nvault_id: 'x'\n# comment: ignored\n\nno separator here\n---\n",
			wantParser: "scalar",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.Equal(t, artifact.Record{"title": "[unclosed", "vault_id": "x"}, rec)
			},
		},
		{
			name:       "version keeps its literal text",
			text:       "---\nversion: 1.10\ncount: 1.10\n---\n",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.Equal(t, "1.10", rec["version"])
				assert.Equal(t, 1.1, rec["count"])
			},
		},
		{
			name:       "numeric looking digests stay strings",
			text:       "---\nchecksum_sha256: " + strings.Repeat("0", 64) + "\nartifact_checksum: 1234\n---\n",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.Equal(t, strings.Repeat("0", 64), rec["checksum_sha256"])
				assert.Equal(t, "1234", rec["artifact_checksum"])
			},
		},
		{
			name:       "empty block yields empty record",
			text:       "---\n---\nbody",
			wantParser: "yaml",
			validate: func(t *testing.T, rec artifact.Record) {
				assert.NotNil(t, rec)
				assert.Empty(t, rec)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := defaultExtractor().Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParser, res.ParserUsed)
			tt.validate(t, res.Record)
		})
	}
}

func TestExtractor_Parse_MalformedDocument(t *testing.T) {
	_, err := defaultExtractor().Parse("no front matter here")
	require.Error(t, err)
	assert.ErrorIs(t, err, artifact.ErrMalformedDocument)
}

func TestScalarParser_SplitsOnFirstColon(t *testing.T) {
	rec, err := parsers.NewScalarParser().Parse("origin: 2024-01-01T00:00:00Z | ada\nquoted: \"v1.2\"")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z | ada", rec["origin"])
	assert.Equal(t, "v1.2", rec["quoted"])
}

func TestScalarParser_NoParseableLines(t *testing.T) {
	rec, err := parsers.NewScalarParser().Parse("just text\n# comment\n")
	require.NoError(t, err)
	assert.Empty(t, rec)
}

// ---------------------------------------------------------------------------
// SetField
// ---------------------------------------------------------------------------

func TestSetField(t *testing.T) {
	t.Run("replaces existing key", func(t *testing.T) {
		out, err := frontmatter.SetField("---\ntitle: a\nchecksum_sha256: old\n---\nbody\nchecksum_sha256: keep", "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: a\nchecksum_sha256: new\n---\nbody\nchecksum_sha256: keep", out)
	})

	t.Run("inserts missing key after opening marker", func(t *testing.T) {
		out, err := frontmatter.SetField("---\ntitle: a\n---\nbody", "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\nchecksum_sha256: new\ntitle: a\n---\nbody", out)
	})

	t.Run("keeps crlf line endings", func(t *testing.T) {
		in := "---\r\ntitle: a\r\nchecksum_sha256: old\r\n---\r\nline one\r\nline two\r\n"
		out, err := frontmatter.SetField(in, "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\r\ntitle: a\r\nchecksum_sha256: new\r\n---\r\nline one\r\nline two\r\n", out)
	})

	t.Run("inserts with crlf line ending", func(t *testing.T) {
		out, err := frontmatter.SetField("---\r\ntitle: a\r\n---\r\nbody", "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\r\nchecksum_sha256: new\r\ntitle: a\r\n---\r\nbody", out)
	})

	t.Run("ignores nested keys with the same name", func(t *testing.T) {
		in := "---\nlineage:\n  checksum_sha256: nested\nchecksum_sha256: old\n---\nbody"
		out, err := frontmatter.SetField(in, "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\nlineage:\n  checksum_sha256: nested\nchecksum_sha256: new\n---\nbody", out)
	})

	t.Run("inserts when only a nested key exists", func(t *testing.T) {
		in := "---\nlineage:\n\tchecksum_sha256: nested\n---\nbody"
		out, err := frontmatter.SetField(in, "checksum_sha256", "new")
		require.NoError(t, err)
		assert.Equal(t, "---\nchecksum_sha256: new\nlineage:\n\tchecksum_sha256: nested\n---\nbody", out)
	})

	t.Run("rejects documents without front matter", func(t *testing.T) {
		_, err := frontmatter.SetField("body only", "checksum_sha256", "new")
		assert.ErrorIs(t, err, artifact.ErrMalformedDocument)
	})
}
