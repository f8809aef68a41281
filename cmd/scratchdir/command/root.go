package command

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shini4i/scratchdir/internal/ports"
	"github.com/shini4i/scratchdir/internal/utils"
)

// Options describes the collaborators and defaults required to build the CLI.
type Options struct {
	Version     string
	BaseDir     string
	ConfigPath  string
	FS          afero.Fs
	Runner      ports.CmdRunner
	Globber     ports.Globber
	InitLogging func(debug bool)
}

// Execute builds and runs the Cobra command tree using the supplied options.
func Execute(opts Options, args []string) error {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Runner == nil {
		opts.Runner = &utils.RealCmdRunner{}
	}
	if opts.Globber == nil {
		opts.Globber = utils.CustomGlobber{}
	}

	root := newRootCommand(opts)

	if args != nil {
		root.SetArgs(args)
	}

	return root.Execute()
}

// newRootCommand builds the root Cobra command with global flags and hooks.
func newRootCommand(opts Options) *cobra.Command {
	var (
		debug      bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "scratchdir",
		Short:        "Run commands inside disposable scratch directories",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.InitLogging != nil {
				opts.InitLogging(debug)
			}
			return nil
		},
	}

	root.Version = opts.Version
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	root.PersistentFlags().StringVar(&configPath, "config", opts.ConfigPath, "Path to a yaml file with default settings")

	root.AddCommand(newExecCommand(opts, func() string { return configPath }))
	root.AddCommand(newPurgeCommand(opts))

	return root
}
