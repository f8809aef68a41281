package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shini4i/scratchdir"
)

// newPurgeCommand constructs the purge subcommand, which sweeps scratch
// roots that outlived their process, e.g. after `exec --keep` or a crash.
func newPurgeCommand(opts Options) *cobra.Command {
	var (
		base      string
		suffix    string
		olderThan time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove leaked scratch roots from the base directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if base == "" {
				base = os.TempDir()
			}

			entries, err := afero.ReadDir(opts.FS, base)
			if err != nil {
				return err
			}

			cutoff := time.Now().Add(-olderThan)

			var failed []error
			removed := 0

			for _, entry := range entries {
				if !entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
					continue
				}
				if entry.ModTime().After(cutoff) {
					continue
				}

				path := filepath.Join(base, entry.Name())

				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "===> Would remove %s\n", yellow(path))
					continue
				}

				if err := opts.FS.RemoveAll(path); err != nil {
					failed = append(failed, fmt.Errorf("removing %s: %w", path, err))
					fmt.Fprintf(cmd.OutOrStdout(), "===> Failed to remove %s\n", red(path))
					continue
				}

				removed++
				fmt.Fprintf(cmd.OutOrStdout(), "===> Removed %s\n", yellow(path))
			}

			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "===> Purged %d scratch root(s)\n", removed)
			}

			return errors.Join(failed...)
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", opts.BaseDir, "Base directory to sweep")
	cmd.Flags().StringVar(&suffix, "suffix", scratchdir.DefaultSuffix, "Suffix that marks a scratch root")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove roots last modified at least this long ago")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without deleting anything")

	return cmd
}
