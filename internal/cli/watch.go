// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/discover"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/watch"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var (
		tf       tierFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-validate artifacts whenever they or their sidecars change",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := defaultRoot
			if len(args) == 1 {
				root = args[0]
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if err := tf.apply(cmd, &cfg); err != nil {
				return err
			}

			v := g.validator(cmd, cfg)
			styles := g.styles()
			out := cmd.OutOrStdout()
			finder := discover.Finder{Include: cfg.Include, Exclude: cfg.Exclude}
			isArtifact := artifactMatcher(root, finder)

			w := &watch.Watcher{
				Root:      root,
				Debounce:  debounce,
				Recursive: finder.Nested(),
				Logger:    g.logger(cmd),
				Match: func(path string) bool {
					return isArtifact(path) || strings.HasSuffix(path, ".json")
				},
				Handle: func(path string) {
					for _, target := range artifactsFor(path, isArtifact) {
						fmt.Fprintln(out, report.FormatText(v.ValidateArtifact(target), styles))
					}
				},
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", root)
			return w.Run(ctx)
		},
	}
	tf.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-validating")
	return cmd
}

// artifactMatcher selects changed paths the same way validate --directory selects
// files under root.
func artifactMatcher(root string, finder discover.Finder) func(string) bool {
	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return false
		}
		return finder.Matches(rel)
	}
}

// artifactsFor maps a changed file to the artifacts to re-validate: the file itself
// when it is an artifact, or the artifact a sidecar belongs to.
func artifactsFor(path string, isArtifact func(string) bool) []string {
	if isArtifact(path) {
		return []string{path}
	}
	if strings.HasSuffix(path, ".sidecar.json") {
		stem := strings.TrimSuffix(filepath.Base(path), ".sidecar.json")
		matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), globEscape(stem)+".*"))
		var out []string
		for _, m := range matches {
			if m != path && isArtifact(m) && fileExists(m) {
				out = append(out, m)
			}
		}
		return out
	}
	if target := strings.TrimSuffix(path, ".json"); target != path && isArtifact(target) && fileExists(target) {
		return []string{target}
	}
	return nil
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
