// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dtmf/internal/build"
	"dtmf/internal/config"
	"dtmf/internal/detect"
	"dtmf/internal/log"
)

// app carries the global flags and the loaded configuration to the
// subcommands.
type app struct {
	configPath string
	logLevel   string
	debug      bool
	stateFile  string

	cfg *config.Config
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	root := NewRootCommand()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand starts the live monitor.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       build.VersionString(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "",
		"Path to the YAML configuration file (default: ./config.yaml if present)")
	flags.StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	flags.BoolVarP(&a.debug, "verbose", "v", false,
		"Show verbose output (debug logging)")
	flags.StringVar(&a.stateFile, "state-file", "",
		"File holding the selected detection algorithm")

	run := newRunCommand(a)
	rootCmd.RunE = run.RunE
	rootCmd.Flags().AddFlagSet(run.Flags())

	rootCmd.AddCommand(
		run,
		newListCommand(a),
		newDecodeCommand(a),
		newGenerateCommand(a),
		newAlgorithmCommand(a),
	)

	return rootCmd
}

// load reads the configuration and applies the global flags on top of it.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Debug = a.debug
	}
	if cmd.Flags().Changed("state-file") {
		cfg.StateFile = a.stateFile
	}

	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.Debug {
		level = log.LevelDebug
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())

	a.cfg = cfg
	log.Debugf("CLI: configuration loaded (state file %s)", cfg.StateFile)
	return nil
}

// algorithm resolves the --algorithm flag, falling back to the stored
// selection. A flag value is persisted when persist is set.
func (a *app) algorithm(flag string, persist bool) (detect.Algorithm, *config.StateStore, error) {
	store := config.NewStateStore(a.cfg.StateFile)

	if flag == "" {
		st, err := store.Load()
		if err != nil {
			return st.Algorithm, store, fmt.Errorf("failed to load state: %w", err)
		}
		return st.Algorithm, store, nil
	}

	algo, err := detect.ParseAlgorithm(flag)
	if err != nil {
		return algo, store, err
	}
	if persist {
		if err := store.SaveAlgorithm(algo); err != nil {
			return algo, store, err
		}
	}
	return algo, store, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
