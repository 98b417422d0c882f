// SPDX-License-Identifier: Apache-2.0

package artifact

// Record is the metadata mapping parsed from a sidecar or a front-matter block.
type Record map[string]any

// Has reports whether key is present, regardless of its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value of key rendered as a string, or "" when absent.
func (r Record) String(key string) string {
	return StringValue(r[key])
}

// Clone returns a deep copy of the record. Nested maps and slices are copied so the
// result can be mutated without touching r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Required key sets. Order is the order in which missing keys are reported.
var (
	SidecarKeys = []string{"vault_id", "glyphsig", "version", "checksum_sha256"}

	FrontMatterKeys = []string{
		"title", "vault_id", "glyphsig", "author", "date",
		"status", "predecessor", "successor", "checksum_sha256",
	}
)

// Verdict is the outcome of validating one artifact. A verdict is built fresh per
// validation call and never updated afterwards.
type Verdict struct {
	Artifact  string
	Errors    []error
	Warnings  []string
	Authentic bool
}

// Valid reports whether no errors were recorded. Warnings do not count.
func (v Verdict) Valid() bool {
	return len(v.Errors) == 0
}

// ErrorStrings returns the error messages in recording order.
func (v Verdict) ErrorStrings() []string {
	out := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		out = append(out, err.Error())
	}
	return out
}
