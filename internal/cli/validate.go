// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/discover"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

type validateOptions struct {
	tierFlags
	directory bool
	format    string
	workers   int
}

func newValidateCmd(g *globalOptions) *cobra.Command {
	o := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate artifacts against their sidecars",
		Long: "Validates each artifact's glyph markers, its companion sidecar (<file>.json or\n" +
			"<stem>.sidecar.json) and the declared compliance tier. Directories expand to the\n" +
			"configured include patterns; other arguments may be \"**\" globs.\n\n" +
			"Exit code 0 if every artifact is verified reflective, 1 otherwise.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, g, args)
		},
	}
	o.bind(cmd)
	cmd.Flags().BoolVarP(&o.directory, "directory", "d", false, "Treat every argument as a directory of artifacts")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatText, "Output format (text|json)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Artifacts validated concurrently (default from config)")
	return cmd
}

func (o *validateOptions) run(cmd *cobra.Command, g *globalOptions, args []string) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if err := o.apply(cmd, &cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		if o.workers < 1 {
			return usageError{fmt.Errorf("--workers must be at least 1")}
		}
		cfg.Workers = o.workers
	}

	finder := discover.Finder{Include: cfg.Include, Exclude: cfg.Exclude}
	var paths []string
	if o.directory {
		for _, dir := range args {
			files, err := finder.Dir(dir)
			if err != nil {
				return err
			}
			paths = append(paths, files...)
		}
	} else {
		if paths, err = finder.Paths(args); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no artifacts found in %v", args)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := g.validator(cmd, cfg)
	sum := verify.Batch(ctx, paths, cfg.Workers, v.ValidateArtifact)

	out := cmd.OutOrStdout()
	if o.format == formatJSON {
		data, err := report.FormatJSON(sum)
		if err != nil {
			return err
		}
		fmt.Fprint(out, data)
	} else {
		fmt.Fprint(out, report.FormatBatch(sum, g.styles()))
	}

	if !sum.Passed() {
		return errFailed
	}
	return nil
}
