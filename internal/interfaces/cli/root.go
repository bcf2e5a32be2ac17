// Package cli defines the alfaia command tree: analyze for one-shot
// local analysis and serve for running the API server.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	JSONOutput bool
}

// NewRootCommand creates the root cobra command with global flags and
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "alfaia",
		Short:         "AlfaIA — análisis gramatical y retroalimentación para aprendices de español",
		Long:          "AlfaIA analiza textos escritos en español, detecta errores de gramática,\nortografía y estilo, y calcula una puntuación de sesión para el aprendiz.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: env only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVar(&opts.JSONOutput, "json", false, "emit results as JSON")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// loadConfig resolves configuration with priority: --config file, then
// environment variables with defaults.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from config.  CLI output goes to
// stdout, so logs go to stderr to keep results pipeable.
func newLogger(cfg *config.Config, toStderr bool) (logging.Logger, error) {
	logOpts := logging.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	}
	if toStderr {
		logOpts.Output = "stderr"
	}
	return logging.NewLogger(logOpts)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Execute runs the CLI and reports errors on stderr.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}
