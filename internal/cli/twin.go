package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leicam1995/teste-api-ebac/internal/twin"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// TwinOptions holds flags for the twin command.
type TwinOptions struct {
	*RootOptions
	Port       int
	SeedFile   string
	Latency    time.Duration
	FailRate   float64
	StrictAuth bool
}

// NewTwinCommand creates the twin command, which serves one in-memory
// twin until interrupted.
func NewTwinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TwinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "twin <name>",
		Short: "Serve an in-memory twin of a service",
		Long: `Serve an in-memory twin until SIGINT or SIGTERM.

The twin exposes the service's user endpoints plus /admin/reset,
/admin/state and /admin/fault for test control.

Examples:
  apicontract twin serverest --port 3000
  apicontract twin jsonplaceholder --port 3001 --latency 50ms
  apicontract twin serverest --seed-file users.yaml --strict-auth`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: twin.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.FailRate < 0 || opts.FailRate > 1 {
				return NewExitError(ExitCommandError, "--fail-rate must be between 0 and 1")
			}
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			t, err := twin.Build(args[0], twincore.Config{
				Port:     opts.Port,
				Latency:  opts.Latency,
				FailRate: opts.FailRate,
				SeedFile: opts.SeedFile,
				Verbose:  cfg.Log.Level == "debug",
			}, logger, twin.Options{StrictAuth: opts.StrictAuth})
			if err != nil {
				return WrapExitError(ExitCommandError, "building twin", err)
			}
			return t.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 3000, "listen port")
	cmd.Flags().StringVar(&opts.SeedFile, "seed-file", "", "JSON or YAML seed replacing the built-in data")
	cmd.Flags().DurationVar(&opts.Latency, "latency", 0, "added latency per request (±20%)")
	cmd.Flags().Float64Var(&opts.FailRate, "fail-rate", 0, "fraction of requests answered with a random 500")
	cmd.Flags().BoolVar(&opts.StrictAuth, "strict-auth", false, "ServeRest only: require a bearer token for writes")

	return cmd
}
