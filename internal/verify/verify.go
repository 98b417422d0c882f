// SPDX-License-Identifier: Apache-2.0

// Package verify assembles verdicts for reflective artifacts: it resolves the sidecar,
// runs marker, field, schema and digest checks, and applies the compliance tier.
package verify

import (
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/checksum"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/fields"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/frontmatter"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/frontmatter/parsers"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/glyphsig"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/logging"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
)

// Options configures a Validator. The zero value targets L1 permissively.
type Options struct {
	Tier         string
	TierMode     tier.Mode
	VerifyDigest bool
	ScalarOnly   bool
	Logger       *logging.Logger
}

// Validator runs the checks. It holds no per-artifact state and is safe for
// concurrent use.
type Validator struct {
	target    string
	checker   tier.Checker
	verify    bool
	extractor *frontmatter.Extractor
	log       *logging.Logger
}

// New builds a Validator from opts.
func New(opts Options) *Validator {
	target := opts.Tier
	if target == "" {
		target = tier.L1.String()
	}
	return &Validator{
		target:    target,
		checker:   tier.Checker{Mode: opts.TierMode},
		verify:    opts.VerifyDigest,
		extractor: DefaultExtractor(opts.ScalarOnly),
		log:       opts.Logger,
	}
}

// DefaultExtractor returns the YAML-then-scalar front-matter extractor. scalarOnly
// disables the structured tier.
func DefaultExtractor(scalarOnly bool) *frontmatter.Extractor {
	yamlParser := parsers.NewYAMLParser()
	if scalarOnly {
		yamlParser = parsers.NewDisabledYAMLParser()
	}
	return frontmatter.NewExtractor(yamlParser, parsers.NewScalarParser())
}

// Extractor exposes the front-matter extractor the validator uses.
func (v *Validator) Extractor() *frontmatter.Extractor {
	return v.extractor
}

// verdict accumulates findings for one artifact. matched records that a digest
// comparison ran and agreed.
type verdict struct {
	artifact.Verdict
	matched bool
}

func (b *verdict) errs(errs ...error) {
	b.Errors = append(b.Errors, errs...)
}

func (b *verdict) warn(msgs ...string) {
	b.Warnings = append(b.Warnings, msgs...)
}

func (b *verdict) done() artifact.Verdict {
	b.Authentic = b.matched && len(b.Errors) == 0
	return b.Verdict
}

// ValidateArtifact validates an artifact and its companion sidecar. An unreadable
// artifact or a missing sidecar stops the run; every other check runs to completion.
func (v *Validator) ValidateArtifact(path string) artifact.Verdict {
	b := &verdict{Verdict: artifact.Verdict{Artifact: path}}
	v.log.Infof("Validating artifact: %s", path)

	content, err := readText(path, "Artifact")
	if err != nil {
		b.errs(err)
		return b.done()
	}

	sidecarPath, ok := sidecar.Resolve(path)
	if !ok {
		b.errs(artifact.Issuef(artifact.ErrIO, "No sidecar file found (expected .json companion)"))
		return b.done()
	}

	v.checkGlyphs(b, content)

	v.log.Infof("Checking sidecar: %s", sidecarPath)
	rec, err := sidecar.Load(sidecarPath)
	if err != nil {
		b.errs(err)
		return v.finish(b)
	}
	v.checkRecord(b, rec, content)
	return v.finish(b)
}

// ValidateContent validates artifact content against an already decoded sidecar
// record, with no file access. name labels the verdict.
func (v *Validator) ValidateContent(name string, content []byte, rec artifact.Record) artifact.Verdict {
	b := &verdict{Verdict: artifact.Verdict{Artifact: name}}
	if !utf8.Valid(content) {
		b.errs(artifact.Issuef(artifact.ErrIO, "Artifact must be UTF-8 encoded text"))
		return b.done()
	}
	v.checkGlyphs(b, content)
	if rec == nil {
		b.errs(artifact.Issuef(artifact.ErrIO, "No sidecar file found (expected .json companion)"))
		return v.finish(b)
	}
	v.checkRecord(b, rec, content)
	return v.finish(b)
}

func (v *Validator) checkGlyphs(b *verdict, content []byte) {
	v.log.Infof("Checking glyphsig syntax...")
	text := string(content)
	res := glyphsig.Check(text)
	b.errs(res.Errors...)
	b.warn(res.Warnings...)

	for _, c := range glyphsig.CountMarkers(text) {
		v.log.Debugf("Found %d %s", c.N, c.Name)
	}
	for _, o := range glyphsig.ParseOrigins(text) {
		v.log.Debugf("Lineage origin: %s by %s (%s)", o.Timestamp, o.Author, o.Checksum)
	}
}

func (v *Validator) checkRecord(b *verdict, rec artifact.Record, content []byte) {
	v.checkSidecar(b, rec, content)

	v.log.Infof("Checking %s compliance...", v.target)
	_, tres := v.checker.Check(rec.String("compliance_tier"), v.target)
	b.errs(tres.Errors...)
	b.warn(tres.Warnings...)
}

func (v *Validator) finish(b *verdict) artifact.Verdict {
	out := b.done()
	if out.Authentic {
		v.log.Infof("Artifact verified: %s", out.Artifact)
	} else {
		v.log.Warnf("Artifact failed with %d error(s): %s", len(out.Errors), out.Artifact)
	}
	return out
}

// checkSidecar applies the extended schema or the basic required-key set.
func (v *Validator) checkSidecar(b *verdict, rec artifact.Record, content []byte) {
	if sidecar.IsExtended(rec) {
		errs, warnings := sidecar.ValidateExtended(rec, content)
		b.errs(errs...)
		b.warn(warnings...)
		b.matched = contentMatched(rec, errs)
		return
	}
	errs, notes := fields.Validate(rec, artifact.SidecarKeys)
	b.errs(errs...)
	b.warn(notes...)
	if len(errs) == 0 {
		v.checkDigest(b, rec, true)
	}
}

// checkDigest compares the self-referential digest of rec and records the outcome.
// A mismatch is an error only when report is set; otherwise it just leaves the
// verdict unauthenticated.
func (v *Validator) checkDigest(b *verdict, rec artifact.Record, report bool) {
	if !rec.Has(checksum.SelfField) {
		return
	}
	expected, err := checksum.Compute(rec, checksum.SelfField)
	if err != nil {
		if report {
			b.errs(err)
		}
		return
	}
	declared := checksum.Normalize(rec.String(checksum.SelfField))
	if declared == expected {
		b.matched = true
		return
	}
	v.log.Debugf("Self digest differs: declared %s, actual %s", declared, expected)
	if report {
		b.errs(artifact.Issuef(artifact.ErrChecksumMismatch,
			"Checksum mismatch: declared %s..., actual %s...", checksum.Short(declared), checksum.Short(expected)))
	}
}

// contentMatched reports whether the extended checks compared a well-formed
// artifact_checksum against the content without a mismatch.
func contentMatched(rec artifact.Record, errs []error) bool {
	if !checksum.IsHex64(checksum.Normalize(rec.String("artifact_checksum"))) {
		return false
	}
	for _, err := range errs {
		if artifact.KindOf(err) == artifact.ErrChecksumMismatch {
			return false
		}
	}
	return true
}

// readText reads path and requires UTF-8 content. what names the file in messages.
func readText(path, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, artifact.Issuef(artifact.ErrIO, "%s not found: %s", what, path)
		}
		return nil, artifact.Issuef(artifact.ErrIO, "%s unreadable: %v", what, err)
	}
	if !utf8.Valid(data) {
		return nil, artifact.Issuef(artifact.ErrIO, "%s must be UTF-8 encoded text", what)
	}
	return data, nil
}
