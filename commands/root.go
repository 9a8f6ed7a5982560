// Package commands implements the string-analysis-server command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stevemurr/string-analysis-server/config"
	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	v          *viper.Viper
}

// NewRootCommand creates the root command. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:   "string-analysis-server",
		Short: "HTTP service that analyzes and stores strings",
		Long: `String Analysis Server computes properties of submitted strings
(length, palindrome check, unique characters, word count, SHA-256 hash and
character frequencies), keeps them in memory, and answers structured and
natural-language filter queries over them.

Examples:
  string-analysis-server                     # serve on :3000
  string-analysis-server serve --port 8080   # serve on :8080
  string-analysis-server analyze racecar     # print the analysis`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: serve.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().Bool("json-logs", false, "emit JSON logs")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	_ = opts.v.BindPFlag("log.json", cmd.PersistentFlags().Lookup("json-logs"))
	_ = opts.v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	// The root command serves too, so it accepts the serve flags.
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewAnalyzeCommand(opts))
	return cmd
}

// load merges defaults, the config file and the environment into the viper
// instance the flags are already bound to, then initializes the logger.
func (o *RootOptions) load() error {
	if err := config.Prepare(o.v, o.ConfigFile); err != nil {
		return err
	}
	if err := logger.Initialize(o.v.GetBool("log.json"), o.v.GetString("log.level")); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// Config returns the validated configuration. It is only meaningful after
// the persistent pre-run has loaded it.
func (o *RootOptions) Config() (*config.Config, error) {
	return config.Load(o.v)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	defer logger.Sync()
	if err := NewRootCommand().Execute(); err != nil {
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
