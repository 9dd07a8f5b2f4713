package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
)

func constCase(name string, state State, out Outcome, order *[]string) Case {
	return Case{
		Name:  name,
		State: state,
		Run: func(ctx context.Context, env *Env) Outcome {
			*order = append(*order, name)
			return out
		},
	}
}

func TestRunOrderAndIndependence(t *testing.T) {
	var order []string
	s := &Suite{
		Name: "demo",
		Cases: []Case{
			constCase("contract", ContractChecked, Pass("ok"), &order),
			constCase("list", Listed, Failf("boom"), &order),
			constCase("create", Created, Pass(""), &order),
			constCase("invalid", RejectedInvalid, Lenient("accepted"), &order),
		},
	}

	res, err := NewRunner(nil).Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"contract", "list", "create", "invalid"}, order)
	assert.False(t, res.Passed)
	assert.Equal(t, RejectedInvalid, res.State)
	require.Len(t, res.Cases, 4)
	assert.Equal(t, Failed, res.Cases[1].Status)
	assert.Equal(t, "boom", res.Cases[1].Detail)
	assert.Equal(t, map[Status]int{Passed: 2, Failed: 1, NonCompliant: 1}, res.Counts())
}

func TestNonCompliantDoesNotFailSuite(t *testing.T) {
	var order []string
	s := &Suite{
		Name:  "lenient",
		Cases: []Case{constCase("invalid", RejectedInvalid, Lenient("201"), &order)},
	}
	res, err := NewRunner(nil).Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Passed)
}

func TestLoginSessionReachesCases(t *testing.T) {
	var seen *auth.Session
	s := &Suite{
		Name: "auth",
		Login: func(ctx context.Context) (*auth.Session, error) {
			return &auth.Session{Token: "tok"}, nil
		},
		Cases: []Case{{
			Name:  "check",
			State: Listed,
			Run: func(ctx context.Context, env *Env) Outcome {
				seen = env.Session
				return Pass("")
			},
		}},
	}
	res, err := NewRunner(nil).Run(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "Bearer tok", seen.Headers()["Authorization"])
	assert.Equal(t, Listed, res.State)
}

func TestNoLoginStartsReady(t *testing.T) {
	var authorized bool
	s := &Suite{
		Name: "anon",
		Cases: []Case{{
			Name:  "contract",
			State: ContractChecked,
			Run: func(ctx context.Context, env *Env) Outcome {
				authorized = env.Session.Authorized()
				return Failf("nope")
			},
		}},
	}
	res, err := NewRunner(nil).Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, authorized)
	assert.Equal(t, Ready, res.State)
}

func TestLoginFailureIsSetupError(t *testing.T) {
	ran := false
	loginErr := &auth.LoginError{StatusCode: 401, Message: "Email e/ou senha inválidos"}
	s := &Suite{
		Name:  "serverest",
		Login: func(ctx context.Context) (*auth.Session, error) { return nil, loginErr },
		Cases: []Case{{Name: "x", Run: func(context.Context, *Env) Outcome { ran = true; return Pass("") }}},
	}

	res, err := NewRunner(nil).Run(context.Background(), s)
	assert.Nil(t, res)
	assert.False(t, ran)

	var se *SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "serverest", se.Suite)
	assert.ErrorIs(t, err, auth.ErrLoginFailed)
}

func TestLoginWithoutSessionIsSetupError(t *testing.T) {
	ran := false
	s := &Suite{
		Name:  "serverest",
		Login: func(ctx context.Context) (*auth.Session, error) { return nil, nil },
		Cases: []Case{{Name: "x", Run: func(context.Context, *Env) Outcome { ran = true; return Pass("") }}},
	}

	var res *Result
	var err error
	require.NotPanics(t, func() { res, err = NewRunner(nil).Run(context.Background(), s) })
	assert.Nil(t, res)
	assert.False(t, ran)

	var se *SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "serverest", se.Suite)
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestCancelStopsBeforeNextCase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var order []string
	s := &Suite{
		Name: "cancel",
		Cases: []Case{
			{Name: "first", State: Listed, Run: func(context.Context, *Env) Outcome {
				order = append(order, "first")
				cancel()
				return Pass("")
			}},
			constCase("second", Created, Pass(""), &order),
		},
	}

	res, err := NewRunner(nil).Run(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, []string{"first"}, order)
	assert.Len(t, res.Cases, 1)
	assert.False(t, res.Passed)
}

func TestNotesAreShared(t *testing.T) {
	s := &Suite{
		Name: "notes",
		Cases: []Case{
			{Name: "a", Run: func(_ context.Context, env *Env) Outcome { env.Notes["id"] = "42"; return Pass("") }},
			{Name: "b", Run: func(_ context.Context, env *Env) Outcome { return Pass("id=%s", env.Notes["id"]) }},
		},
	}
	res, err := NewRunner(nil).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "id=42", res.Cases[1].Detail)
}

func TestFailClassifiesTransport(t *testing.T) {
	te := &httpclient.TransportError{Method: "GET", URL: "http://x", Err: errors.New("reset")}
	assert.Equal(t, TransportError, Fail(te).Status)
	assert.Equal(t, Failed, Fail(errors.New("mismatch")).Status)
	assert.True(t, TransportError.Fails())
	assert.False(t, NonCompliant.Fails())
}

func TestResultJSON(t *testing.T) {
	res := &Result{
		Suite: "s", State: Deleted, Passed: true,
		Cases: []CaseResult{{Name: "delete", State: Deleted, Status: NonCompliant}},
	}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"deleted"`)
	assert.Contains(t, string(data), `"status":"noncompliant"`)
}
