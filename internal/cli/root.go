// SPDX-License-Identifier: Apache-2.0

// Package cli implements the mirrordna command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/config"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/logging"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/report"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/verify"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	formatText  = "text"
	formatJSON  = "json"
	defaultRoot = "."
)

// errFailed signals that results were already reported and at least one failed.
var errFailed = errors.New("validation failed")

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command tree with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFailed):
		return exitFailed
	}
	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailed
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "mirrordna",
		Short: "Integrity validators for reflective artifacts",
		Long: "Validates Markdown artifacts paired with JSON sidecars or inline front matter:\n" +
			"required metadata fields, self-referential SHA-256 checksums, and glyph markers\n" +
			"(⟡ seal, ⟦ ⟧ frames, consent gates, ORIGIN lineage).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: ./"+config.FileName+" when present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log each check to stderr")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newValidateCmd(opts),
		newChecksumCmd(opts),
		newSidecarsCmd(opts),
		newFrontMatterCmd(opts),
		newTiersCmd(),
		newWatchCmd(opts),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// usageArgs wraps a cobra positional-argument validator so its failures exit 2.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// loadConfig resolves the config file: --config when given, else discovery in the
// working directory.
func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	cfg, _, err := config.Discover(defaultRoot)
	return cfg, err
}

func (o *globalOptions) logger(cmd *cobra.Command) *logging.Logger {
	if !o.verbose {
		return nil
	}
	return logging.New(cmd.ErrOrStderr(), logging.LevelDebug)
}

func (o *globalOptions) styles() report.Styles {
	return report.NewStyles(!o.noColor && report.ColorEnabled())
}

// validator builds a Validator from cfg.
func (o *globalOptions) validator(cmd *cobra.Command, cfg config.Config) *verify.Validator {
	return verify.New(verify.Options{
		Tier:         cfg.Tier,
		TierMode:     cfg.TierMode(),
		VerifyDigest: cfg.VerifyDigest,
		ScalarOnly:   cfg.FrontMatter == config.FrontMatterScalar,
		Logger:       o.logger(cmd),
	})
}

// tierFlags binds --tier and --strict-tier, applied over the config when set.
type tierFlags struct {
	tier   string
	strict bool
}

func (f *tierFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tier, "tier", "t", "", "Target compliance tier (L1|L2|L3|L4)")
	cmd.Flags().BoolVar(&f.strict, "strict-tier", false, "Fail when the declared tier is below the target")
}

func (f *tierFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("tier") {
		if _, err := tier.Parse(f.tier); err != nil {
			return usageError{err}
		}
		cfg.Tier = f.tier
	}
	if cmd.Flags().Changed("strict-tier") {
		cfg.StrictTier = f.strict
	}
	return nil
}

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return usageError{fmt.Errorf("unknown format %q (want text or json)", format)}
	}
	return nil
}
