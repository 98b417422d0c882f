// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"strings"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/fields"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/sidecar"
)

// Document is the outcome of validating inline front matter.
type Document struct {
	Verdict    artifact.Verdict
	Record     artifact.Record
	ParserUsed string
}

// Version returns the declared or inferred version.
func (d Document) Version() string {
	return fields.Version(d.Record)
}

// ValidateDocument validates the front matter of a Markdown document. A digest
// mismatch is reported as an error only when digest verification is enabled; either
// way the verdict is authentic only when the digest matches.
func (v *Validator) ValidateDocument(path string) Document {
	b := &verdict{Verdict: artifact.Verdict{Artifact: path}}
	v.log.Infof("Validating front matter: %s", path)

	text, err := readText(path, "Document")
	if err != nil {
		b.errs(err)
		return Document{Verdict: b.done()}
	}
	return v.validateFrontMatter(b, string(text))
}

// ValidateFrontMatter validates front matter held in memory. name labels the verdict.
func (v *Validator) ValidateFrontMatter(name, text string) Document {
	return v.validateFrontMatter(&verdict{Verdict: artifact.Verdict{Artifact: name}}, text)
}

func (v *Validator) validateFrontMatter(b *verdict, text string) Document {
	res, err := v.extractor.Parse(text)
	if err != nil {
		b.errs(err)
		return Document{Verdict: b.done()}
	}
	v.log.Debugf("Front matter parsed with %s parser (available: %s)",
		res.ParserUsed, strings.Join(v.extractor.RegisteredParsers(), ", "))

	errs, notes := fields.Validate(res.Record, artifact.FrontMatterKeys)
	b.errs(errs...)
	b.warn(notes...)
	if len(errs) == 0 {
		v.checkDigest(b, res.Record, v.verify)
	}
	return Document{Verdict: b.done(), Record: res.Record, ParserUsed: res.ParserUsed}
}

// ValidateSidecar checks a standalone sidecar for the basic required keys.
func (v *Validator) ValidateSidecar(path string) artifact.Verdict {
	b := &verdict{Verdict: artifact.Verdict{Artifact: path}}
	v.log.Debugf("Checking sidecar keys: %s", path)

	rec, err := sidecar.Load(path)
	if err != nil {
		b.errs(err)
		return b.done()
	}
	errs, notes := fields.Validate(rec, artifact.SidecarKeys)
	b.errs(errs...)
	b.warn(notes...)
	if len(errs) == 0 {
		v.checkDigest(b, rec, v.verify)
	}
	return b.done()
}
