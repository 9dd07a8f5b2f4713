// Package scenario runs contract-test suites: an optional login, then each
// case in declaration order, collecting a per-case outcome.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
)

// State is the point a suite has reached.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	// Ready is the starting state of suites without login.
	Ready
	ContractChecked
	Listed
	Created
	RejectedInvalid
	Updated
	Deleted
)

var stateNames = map[State]string{
	Unauthenticated: "unauthenticated",
	Authenticated:   "authenticated",
	Ready:           "ready",
	ContractChecked: "contract-checked",
	Listed:          "listed",
	Created:         "created",
	RejectedInvalid: "rejected-invalid",
	Updated:         "updated",
	Deleted:         "deleted",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state name in JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the verdict of one case.
type Status int

const (
	Passed Status = iota
	Failed
	// NonCompliant records API leniency. It does not fail the suite.
	NonCompliant
	// TransportError means a request got no response.
	TransportError
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case NonCompliant:
		return "noncompliant"
	case TransportError:
		return "transport-error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fails reports whether the status fails the suite.
func (s Status) Fails() bool {
	return s == Failed || s == TransportError
}

// Outcome is what a case returns.
type Outcome struct {
	Status Status
	Detail string
	Err    error
}

// Pass returns a Passed outcome.
func Pass(format string, args ...any) Outcome {
	return Outcome{Status: Passed, Detail: fmt.Sprintf(format, args...)}
}

// Lenient returns a NonCompliant outcome.
func Lenient(format string, args ...any) Outcome {
	return Outcome{Status: NonCompliant, Detail: fmt.Sprintf(format, args...)}
}

// Fail classifies err: transport failures become TransportError, anything
// else Failed.
func Fail(err error) Outcome {
	var te *httpclient.TransportError
	if errors.As(err, &te) {
		return Outcome{Status: TransportError, Detail: err.Error(), Err: err}
	}
	return Outcome{Status: Failed, Detail: err.Error(), Err: err}
}

// Failf is Fail with a formatted error.
func Failf(format string, args ...any) Outcome {
	return Fail(fmt.Errorf(format, args...))
}

// Env is what every case of one run shares. The session is owned by the run
// and discarded when it ends.
type Env struct {
	Session *auth.Session
	Logger  *slog.Logger
	// Notes carries values between cases, e.g. an id created earlier.
	Notes map[string]string
}

// Case is one named check.
type Case struct {
	Name  string
	State State
	Run   func(ctx context.Context, env *Env) Outcome
}

// Suite is an ordered list of cases against one service. A nil Login means
// the service needs no auth.
type Suite struct {
	Name  string
	Login func(ctx context.Context) (*auth.Session, error)
	Cases []Case
}

// CaseResult records the outcome of one case.
type CaseResult struct {
	Name     string        `json:"name"`
	State    State         `json:"state"`
	Status   Status        `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Result records the outcome of one suite run.
type Result struct {
	Suite    string        `json:"suite"`
	State    State         `json:"state"`
	Passed   bool          `json:"passed"`
	Cases    []CaseResult  `json:"cases"`
	Duration time.Duration `json:"duration_ns"`
}

// Counts tallies cases by status.
func (r *Result) Counts() map[Status]int {
	out := make(map[Status]int)
	for _, c := range r.Cases {
		out[c.Status]++
	}
	return out
}

// SetupError means the suite could not start, e.g. login failed. No case
// ran.
type SetupError struct {
	Suite string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("suite %s: setup failed: %v", e.Suite, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
