// SPDX-License-Identifier: Apache-2.0

// Package checksum implements the self-referential digest used by reflective
// artifacts: a SHA-256 over the canonical serialization of a record with its own
// checksum field blanked, so the digest can live inside the record it protects.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// SelfField is the conventional name of the self-referential digest field.
const SelfField = "checksum_sha256"

const prefix = "sha256:"

// Compute returns the hex SHA-256 of record's canonical serialization with
// record[selfField] replaced by "". The field must be present; an empty value is fine.
func Compute(record artifact.Record, selfField string) (string, error) {
	if !record.Has(selfField) {
		return "", artifact.Issuef(artifact.ErrMissingField, "Missing self-referential field: '%s'", selfField)
	}
	blanked := make(map[string]any, len(record))
	for k, v := range record {
		blanked[k] = v
	}
	blanked[selfField] = ""

	data, err := Canonical(blanked)
	if err != nil {
		return "", fmt.Errorf("checksum: canonicalize record: %w", err)
	}
	return Content(data), nil
}

// Verify reports whether the declared digest in record[selfField] matches Compute.
// The declared value is compared case-insensitively and may carry a "sha256:" prefix.
func Verify(record artifact.Record, selfField string) (bool, error) {
	expected, err := Compute(record, selfField)
	if err != nil {
		return false, err
	}
	declared, ok := record[selfField].(string)
	if !ok {
		return false, nil
	}
	return Normalize(declared) == expected, nil
}

// Rewrite returns a deep copy of record with the bare digest stored in selfField.
// The input record is not modified.
func Rewrite(record artifact.Record, selfField string) (artifact.Record, error) {
	digest, err := Compute(record, selfField)
	if err != nil {
		return nil, err
	}
	out := record.Clone()
	out[selfField] = digest
	return out, nil
}

// Content returns the hex SHA-256 of raw bytes.
func Content(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Normalize lower-cases a declared digest and strips an optional "sha256:" prefix.
func Normalize(declared string) string {
	d := strings.ToLower(strings.TrimSpace(declared))
	return strings.TrimPrefix(d, prefix)
}

// Prefixed returns the "sha256:"-prefixed form of a digest.
func Prefixed(digest string) string {
	return prefix + Normalize(digest)
}

// Short truncates a digest for display in mismatch messages.
func Short(digest string) string {
	if len(digest) <= 8 {
		return digest
	}
	return digest[:8]
}

// IsHex64 reports whether s is exactly 64 hexadecimal characters.
func IsHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
