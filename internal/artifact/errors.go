// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
)

// Error kinds. Every defect reported in a Verdict unwraps to exactly one of these.
var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrSchema            = errors.New("schema error")
	ErrFormat            = errors.New("format error")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrMarkerImbalance   = errors.New("marker imbalance")
	ErrMalformedRegion   = errors.New("malformed region")
	ErrIO                = errors.New("io error")
	ErrMissingField      = errors.New("missing field")
	ErrUnknownTier       = errors.New("unknown compliance tier")
)

// Issue is a single defect. Error returns only the human-readable message so reports
// stay stable; the kind is reachable through errors.Is.
type Issue struct {
	Kind error
	Msg  string
}

func (e *Issue) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Issue) Unwrap() error { return e.Kind }

// Issuef builds an Issue of the given kind.
func Issuef(kind error, format string, args ...any) error {
	return &Issue{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or nil when err is not an Issue.
func KindOf(err error) error {
	var issue *Issue
	if errors.As(err, &issue) {
		return issue.Kind
	}
	return nil
}
