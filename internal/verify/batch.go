// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/artifact"
)

// Summary aggregates verdicts over a batch in input order.
type Summary struct {
	Verdicts []artifact.Verdict
	Valid    int
	Total    int
}

// Passed reports whether every artifact in the batch is valid.
func (s Summary) Passed() bool {
	return s.Valid == s.Total
}

// Batch runs check over paths with at most workers concurrent checks. Verdicts keep
// the order of paths. Paths not reached before ctx is cancelled get an I/O error
// verdict so totals stay comparable.
func Batch(ctx context.Context, paths []string, workers int, check func(string) artifact.Verdict) Summary {
	if workers < 1 {
		workers = 1
	}
	verdicts := make([]artifact.Verdict, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			verdicts[i] = cancelled(path)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				verdicts[i] = cancelled(path)
				return nil
			}
			verdicts[i] = check(path)
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{Verdicts: verdicts, Total: len(verdicts)}
	for _, v := range verdicts {
		if v.Valid() {
			s.Valid++
		}
	}
	return s
}

func cancelled(path string) artifact.Verdict {
	return artifact.Verdict{
		Artifact: path,
		Errors:   []error{artifact.Issuef(artifact.ErrIO, "Validation cancelled before %s was checked", path)},
	}
}
