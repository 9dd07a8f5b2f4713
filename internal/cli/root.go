// Package cli wires configuration, logging, twins and suites into the
// apicontract command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leicam1995/teste-api-ebac/internal/config"
	"github.com/leicam1995/teste-api-ebac/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	LogFormat  string
}

// NewRootCommand creates the apicontract root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "apicontract",
		Short: "Contract tests for the ServeRest and JSONPlaceholder user APIs",
		Long: `apicontract runs contract suites against ServeRest (/login, /usuarios)
and JSONPlaceholder (/users), either live or against in-process twins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./"+config.DefaultConfigFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file (default ./"+config.DefaultEnvFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTwinCommand(opts))
	cmd.AddCommand(NewAdminCommand())

	return cmd
}

// load reads the configuration, applies the global flags and builds the
// logger on the command's stderr.
func (o *RootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.LoadOptions{File: o.ConfigFile, EnvFile: o.EnvFile})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "configuring logging", err)
	}
	return cfg, logger, nil
}
