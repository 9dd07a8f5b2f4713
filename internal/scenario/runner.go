package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
)

// Runner executes suites.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{logger: logger}
}

// Run logs in (when the suite has a Login), then runs every case strictly
// in order. A failing case does not stop later ones. A login failure
// returns a *SetupError and no result. Cancelling ctx stops the run before
// the next case and returns the partial result with ctx's error.
func (r *Runner) Run(ctx context.Context, s *Suite) (*Result, error) {
	start := time.Now()
	log := r.logger.With("suite", s.Name)

	env := &Env{
		Logger: log,
		Notes:  make(map[string]string),
	}
	result := &Result{Suite: s.Name, State: Unauthenticated, Passed: true}

	if s.Login != nil {
		session, err := s.Login(ctx)
		if err != nil {
			log.Error("login failed", "err", err)
			return nil, &SetupError{Suite: s.Name, Err: err}
		}
		if session == nil {
			log.Error("login returned no session")
			return nil, &SetupError{Suite: s.Name, Err: auth.ErrMissingToken}
		}
		env.Session = session
		result.State = Authenticated
		log.Debug("logged in", "issued_at", session.IssuedAt)
	} else {
		env.Session = auth.Anonymous()
		result.State = Ready
	}

	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			result.Passed = false
			result.Duration = time.Since(start)
			return result, fmt.Errorf("suite %s interrupted before %s: %w", s.Name, c.Name, err)
		}

		cr := r.runCase(ctx, env, c)
		result.Cases = append(result.Cases, cr)
		if cr.Status.Fails() {
			result.Passed = false
		} else {
			result.State = c.State
		}
	}

	result.Duration = time.Since(start)
	log.Info("suite finished",
		"passed", result.Passed,
		"state", result.State,
		"duration", result.Duration,
	)
	return result, nil
}

func (r *Runner) runCase(ctx context.Context, env *Env, c Case) CaseResult {
	start := time.Now()
	out := c.Run(ctx, env)
	cr := CaseResult{
		Name:     c.Name,
		State:    c.State,
		Status:   out.Status,
		Detail:   out.Detail,
		Duration: time.Since(start),
	}

	attrs := []any{"case", c.Name, "status", out.Status, "duration", cr.Duration}
	if out.Detail != "" {
		attrs = append(attrs, "detail", out.Detail)
	}
	switch out.Status {
	case Passed:
		env.Logger.Info("case passed", attrs...)
	case NonCompliant:
		env.Logger.Warn("case non-compliant", attrs...)
	default:
		env.Logger.Error("case failed", attrs...)
	}
	return cr
}
