package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leicam1995/teste-api-ebac/internal/twin/adminclient"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// NewAdminCommand creates the admin command group, which controls a
// running twin through its /admin endpoints.
func NewAdminCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Control a running twin",
		Long: `Control a twin started with "apicontract twin".

Examples:
  apicontract admin health --url http://localhost:3000
  apicontract admin seed users.json --url http://localhost:3000
  apicontract admin fault /usuarios --status 500 --url http://localhost:3000`,
	}
	cmd.PersistentFlags().StringVar(&url, "url", "http://localhost:3000", "twin base URL")

	client := func() *adminclient.Client { return adminclient.New(url) }
	done := func(cmd *cobra.Command, what string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", url, what)
		return err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check the twin is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().Health(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "health check", err)
			}
			return done(cmd, "ok")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the seed and clear faults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().Reset(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "reset", err)
			}
			return done(cmd, "reset")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed <file.json>",
		Short: "Replace the twin state from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().SeedFile(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "seed", err)
			}
			return done(cmd, "seeded from "+args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Print the twin state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := client().State(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "state", err)
			}
			_, err = cmd.OutOrStdout().Write(state)
			return err
		},
	})

	var fault twincore.FaultConfig
	var remove bool
	faultCmd := &cobra.Command{
		Use:   "fault <path>",
		Short: "Inject or remove a fault on an exact request path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			if remove {
				if err := c.RemoveFault(cmd.Context(), args[0]); err != nil {
					return WrapExitError(ExitFailure, "remove fault", err)
				}
				return done(cmd, "fault removed from "+args[0])
			}
			if fault.StatusCode == 0 && !fault.Drop && fault.Delay == 0 {
				return NewExitError(ExitCommandError, "fault needs --status, --drop or --delay")
			}
			if err := c.InjectFault(cmd.Context(), args[0], fault); err != nil {
				return WrapExitError(ExitFailure, "inject fault", err)
			}
			return done(cmd, "fault injected on "+args[0])
		},
	}
	faultCmd.Flags().IntVar(&fault.StatusCode, "status", 0, "answer with this status")
	faultCmd.Flags().StringVar(&fault.Body, "body", "", "response body for --status")
	faultCmd.Flags().StringVar(&fault.Message, "message", "", `answer --status with {"message": <text>}`)
	faultCmd.Flags().DurationVar(&fault.Delay, "delay", 0, "delay before answering")
	faultCmd.Flags().BoolVar(&fault.Drop, "drop", false, "close the connection without answering")
	faultCmd.Flags().Float64Var(&fault.Rate, "rate", 1, "fraction of matching requests affected")
	faultCmd.Flags().BoolVar(&remove, "remove", false, "remove the fault instead")
	cmd.AddCommand(faultCmd)

	return cmd
}
