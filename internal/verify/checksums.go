// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/frontmatter"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
)

// Stamp is the outcome of computing or checking the self digest of one file.
type Stamp struct {
	Path     string
	Digest   string
	Declared string
	OK       bool
}

// isSidecarFile reports whether path holds a JSON sidecar rather than a document with
// front matter.
func isSidecarFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// load returns the record held by path and, for documents, the original text.
func (v *Validator) load(path string) (artifact.Record, string, error) {
	if isSidecarFile(path) {
		rec, err := sidecar.Load(path)
		if err != nil {
			return nil, "", err
		}
		if missing := missingKeys(rec, artifact.SidecarKeys); len(missing) > 0 {
			return nil, "", artifact.Issuef(artifact.ErrSchema, "Missing required keys: %s", strings.Join(missing, ", "))
		}
		return rec, "", nil
	}

	text, err := readText(path, "Document")
	if err != nil {
		return nil, "", err
	}
	res, err := v.extractor.Parse(string(text))
	if err != nil {
		return nil, "", err
	}
	if !res.Record.Has(checksum.SelfField) {
		res.Record[checksum.SelfField] = ""
	}
	return res.Record, string(text), nil
}

func missingKeys(rec artifact.Record, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if !rec.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// WriteChecksum computes the self digest of a sidecar or front-matter document and
// writes it back in place. Sidecars must already carry every required key.
func (v *Validator) WriteChecksum(path string) (Stamp, error) {
	rec, text, err := v.load(path)
	if err != nil {
		return Stamp{Path: path}, err
	}
	digest, err := checksum.Compute(rec, checksum.SelfField)
	if err != nil {
		return Stamp{Path: path}, err
	}

	var out []byte
	if isSidecarFile(path) {
		rewritten, err := checksum.Rewrite(rec, checksum.SelfField)
		if err != nil {
			return Stamp{Path: path}, err
		}
		if out, err = sidecar.Encode(rewritten); err != nil {
			return Stamp{Path: path}, err
		}
	} else {
		updated, err := frontmatter.SetField(text, checksum.SelfField, digest)
		if err != nil {
			return Stamp{Path: path}, err
		}
		out = []byte(updated)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := atomicWriteFile(path, out, perm); err != nil {
		return Stamp{Path: path}, artifact.Issuef(artifact.ErrIO, "write %s: %v", path, err)
	}
	v.log.Infof("Wrote checksum %s to %s", digest, path)
	return Stamp{Path: path, Digest: digest, Declared: digest, OK: true}, nil
}

// VerifyChecksum recomputes the self digest of path and compares it with the
// declared value. A mismatch is reported through Stamp.OK, not as an error.
func (v *Validator) VerifyChecksum(path string) (Stamp, error) {
	rec, _, err := v.load(path)
	if err != nil {
		return Stamp{Path: path}, err
	}
	digest, err := checksum.Compute(rec, checksum.SelfField)
	if err != nil {
		return Stamp{Path: path}, err
	}
	ok, err := checksum.Verify(rec, checksum.SelfField)
	if err != nil {
		return Stamp{Path: path}, err
	}
	return Stamp{
		Path:     path,
		Digest:   digest,
		Declared: rec.String(checksum.SelfField),
		OK:       ok,
	}, nil
}

// atomicWriteFile replaces path through a temp file in the same directory.
func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
