package command

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shini4i/scratchdir"
	"github.com/shini4i/scratchdir/internal/helpers"
)

// newExecCommand constructs the exec subcommand: it materializes a scratch
// root, runs the given command inside it and guarantees teardown afterwards
// unless --keep was requested.
func newExecCommand(opts Options, configPath func() string) *cobra.Command {
	var (
		prefix  string
		base    string
		outDir  string
		collect []string
		keep    bool
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command inside a fresh scratch directory",
		Long: "Run a command with its working directory set to a freshly created scratch root.\n" +
			"The root path is also exported as SCRATCHDIR. Once the command finishes, artifacts\n" +
			"matching --collect patterns are copied to --out and the root is removed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadFileConfig(opts.FS, configPath())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("prefix") && cfg.Prefix != "" {
				prefix = cfg.Prefix
			}
			if !cmd.Flags().Changed("base") && cfg.Base != "" {
				base = cfg.Base
			}

			sdOpts := []scratchdir.Option{
				scratchdir.WithFs(opts.FS),
				scratchdir.WithPrefix(prefix),
			}
			if cfg.Suffix != "" {
				sdOpts = append(sdOpts, scratchdir.WithSuffix(cfg.Suffix))
			}
			if base != "" {
				sdOpts = append(sdOpts, scratchdir.WithBaseDir(base))
			}

			sd := scratchdir.New(sdOpts...)
			if err := sd.Setup(); err != nil {
				return err
			}

			if keep {
				defer fmt.Fprintf(cmd.OutOrStdout(), "===> Keeping scratch root: %s\n", cyan(sd.Root()))
			} else {
				defer func() {
					if terr := sd.Teardown(); terr != nil {
						err = errors.Join(err, terr)
					}
				}()
			}

			runErr := opts.Runner.Run(sd.Root(), []string{"SCRATCHDIR=" + sd.Root()}, args[0], args[1:]...)

			// Artifacts are collected even when the command failed; partial
			// output is often exactly what needs inspecting.
			if cerr := collectArtifacts(cmd, opts, sd.Root(), collect, outDir); cerr != nil {
				runErr = errors.Join(runErr, cerr)
			}

			return runErr
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Scratch root name prefix")
	cmd.Flags().StringVarP(&base, "base", "b", opts.BaseDir, "Base directory for the scratch root")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory collected artifacts are copied to")
	cmd.Flags().StringArrayVarP(&collect, "collect", "c", nil, "Glob pattern (relative to the scratch root) of artifacts to copy out before teardown")
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Skip teardown and print the surviving scratch root")

	return cmd
}

// collectArtifacts copies files matching the given patterns out of the
// scratch root into outDir, preserving their root-relative layout.
func collectArtifacts(cmd *cobra.Command, opts Options, root string, patterns []string, outDir string) error {
	for _, p := range patterns {
		matches, err := opts.Globber.Glob(filepath.Join(root, p))
		if err != nil {
			return fmt.Errorf("expanding pattern %q: %w", p, err)
		}

		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return err
			}

			if err := helpers.CopyFile(opts.FS, match, filepath.Join(outDir, rel)); err != nil {
				return fmt.Errorf("collecting %s: %w", rel, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "===> Collected %s\n", cyan(rel))
		}
	}

	return nil
}
