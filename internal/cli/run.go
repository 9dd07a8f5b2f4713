package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
	"github.com/leicam1995/teste-api-ebac/internal/config"
	"github.com/leicam1995/teste-api-ebac/internal/fixture"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/scenario"
	"github.com/leicam1995/teste-api-ebac/internal/suites"
	"github.com/leicam1995/teste-api-ebac/internal/twin"
	"github.com/leicam1995/teste-api-ebac/internal/twin/adminclient"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// ValidFormats are the report formats.
var ValidFormats = []string{"text", "json"}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Target     string
	Strategy   string
	Format     string
	Seed       uint64
	StrictAuth bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run contract suites",
		Long: `Run contract suites in order. With no arguments every suite runs.

Exit codes:
  0 - every suite passed (non-compliant cases do not fail a suite)
  1 - a case failed, a request got no response, or login failed
  2 - command error (bad flags, config or suite name)

Examples:
  apicontract run
  apicontract run serverest --strategy first
  apicontract run --target twin --format json`,
		ValidArgs: suites.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "live|twin (default from config)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "update/delete target: first|own (default per suite)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "report format (text|json)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "fixture seed (default from config, 0 is random)")
	cmd.Flags().BoolVar(&opts.StrictAuth, "strict-auth", false, "with --target twin, require a bearer token for ServeRest writes")

	return cmd
}

func runSuites(cmd *cobra.Command, opts *RunOptions, names []string) error {
	if !slices.Contains(ValidFormats, opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	strategy, err := suites.ParseStrategy(opts.Strategy)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --strategy", err)
	}
	if len(names) == 0 {
		names = suites.Names()
	}
	for _, n := range names {
		if !slices.Contains(suites.Names(), n) {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown suite %q (known: %v)", n, suites.Names()))
		}
	}

	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if opts.Target != "" {
		cfg.Target = opts.Target
	}
	if cfg.Target != config.TargetLive && cfg.Target != config.TargetTwin {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid target %q: must be %s or %s", cfg.Target, config.TargetLive, config.TargetTwin))
	}
	if cmd.Flags().Changed("seed") {
		cfg.Fixtures.Seed = opts.Seed
	}

	ctx := cmd.Context()
	baseURLs := make(map[string]string, len(names))
	if cfg.Target == config.TargetTwin {
		stop, err := startTwins(ctx, names, logger, twin.Options{StrictAuth: opts.StrictAuth}, baseURLs)
		if err != nil {
			return WrapExitError(ExitCommandError, "starting twins", err)
		}
		defer stop()
	}

	report := &Report{Target: cfg.Target, Passed: true}
	fixtures := fixture.NewGenerator(cfg.Fixtures.Seed)
	runner := scenario.NewRunner(logger)
	httpClient := httpclient.NewHTTPClient(httpclient.ClientConfig{Timeout: cfg.HTTP.Timeout})

	for _, name := range names {
		svc, err := cfg.Service(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "resolving service", err)
		}
		if u, ok := baseURLs[name]; ok {
			svc.BaseURL = u
		}

		suiteStrategy := strategy
		if suiteStrategy == "" {
			if suiteStrategy, err = suites.ParseStrategy(svc.Strategy); err != nil {
				return WrapExitError(ExitCommandError, "services."+name+".strategy", err)
			}
		}
		if suiteStrategy == "" {
			suiteStrategy = suites.DefaultStrategy(name)
		}
		var creds auth.Credentials
		if svc.Login != nil {
			creds = auth.Credentials{Email: svc.Login.Email, Password: svc.Login.Password}
		}

		s, err := suites.Build(name, suites.Config{
			Client: httpclient.New(svc.BaseURL,
				httpclient.WithHTTPClient(httpClient),
				httpclient.WithLogger(logger.With("suite", name)),
			),
			Fixtures:    fixtures,
			Strategy:    suiteStrategy,
			Credentials: creds,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "building suite", err)
		}

		logger.Info("running suite", "suite", name, "base_url", svc.BaseURL, "strategy", suiteStrategy)
		res, err := runner.Run(ctx, s)
		if res != nil {
			report.add(res)
		}
		if err != nil {
			report.fail(name, err)
			var setup *scenario.SetupError
			if !errors.As(err, &setup) {
				// Interrupted; later suites would not run either.
				break
			}
		}
	}

	if err := report.Write(cmd.OutOrStdout(), opts.Format); err != nil {
		return err
	}
	if !report.Passed {
		return NewExitError(ExitFailure, report.summary())
	}
	return nil
}

// startTwins serves a twin for every suite on a loopback port and records
// its URL in baseURLs. stop shuts them all down and waits.
func startTwins(ctx context.Context, names []string, logger *slog.Logger, opts twin.Options, baseURLs map[string]string) (func(), error) {
	twinCtx, cancel := context.WithCancel(ctx)
	var running []*twin.Running
	stop := func() {
		cancel()
		for _, r := range running {
			if err := r.Wait(); err != nil {
				logger.Warn("twin shutdown", "twin", r.Name, "err", err)
			}
		}
	}

	for _, name := range names {
		r, err := twin.StartLocal(twinCtx, name, twincore.Config{}, logger, opts)
		if err != nil {
			stop()
			return nil, err
		}
		running = append(running, r)
		healthCtx, cancelHealth := context.WithTimeout(ctx, 5*time.Second)
		err = adminclient.New(r.URL).WaitHealthy(healthCtx, 20*time.Millisecond)
		cancelHealth()
		if err != nil {
			stop()
			return nil, err
		}
		baseURLs[name] = r.URL
		logger.Debug("twin started", "twin", name, "url", r.URL)
	}
	return stop, nil
}
