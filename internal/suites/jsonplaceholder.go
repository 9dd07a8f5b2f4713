package suites

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leicam1995/teste-api-ebac/internal/contract"
	"github.com/leicam1995/teste-api-ebac/internal/fixture"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/scenario"
)

// JSONPlaceholderName is the suite name for JSONPlaceholder.
const JSONPlaceholderName = "jsonplaceholder"

const usersPath = "/users"

// JSONPlaceholder builds the /users suite. The service has no auth and
// does not persist writes, so update and delete default to StrategyFirst.
func JSONPlaceholder(cfg Config) *scenario.Suite {
	p := &placeholder{cfg: cfg}
	return &scenario.Suite{
		Name: JSONPlaceholderName,
		Cases: []scenario.Case{
			{Name: "contract", State: scenario.ContractChecked, Run: p.contract},
			{Name: "list", State: scenario.Listed, Run: p.list},
			{Name: "create", State: scenario.Created, Run: p.create},
			{Name: "create-invalid-email", State: scenario.RejectedInvalid, Run: p.createInvalidEmail},
			{Name: "update", State: scenario.Updated, Run: p.update},
			{Name: "delete", State: scenario.Deleted, Run: p.delete},
		},
	}
}

type placeholder struct {
	cfg Config
}

func (p *placeholder) listUsers(ctx context.Context, env *scenario.Env) ([]any, error) {
	resp, err := p.cfg.Client.Get(ctx, usersPath, env.Session.Headers())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: expected 200, got %d", usersPath, resp.StatusCode)
	}
	return resp.Array("")
}

func (p *placeholder) contract(ctx context.Context, env *scenario.Env) scenario.Outcome {
	users, err := p.listUsers(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	if err := contract.ExactKeysAll(users, contract.PlaceholderUser); err != nil {
		return scenario.Fail(err)
	}
	return scenario.Pass("%d users match the schema", len(users))
}

func (p *placeholder) list(ctx context.Context, env *scenario.Env) scenario.Outcome {
	users, err := p.listUsers(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	return scenario.Pass("%d users", len(users))
}

// echoIncludes checks the response echoes every submitted field.
func echoIncludes(resp *httpclient.Response, payload fixture.Payload) error {
	obj, err := resp.Object()
	if err != nil {
		return err
	}
	return contract.Includes(payload, obj)
}

func (p *placeholder) create(ctx context.Context, env *scenario.Env) scenario.Outcome {
	payload, err := p.cfg.Fixtures.PlaceholderUser()
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := p.cfg.Client.Post(ctx, usersPath, payload, env.Session.Headers())
	if err != nil {
		return scenario.Fail(err)
	}
	if resp.StatusCode != http.StatusCreated {
		return scenario.Failf("POST %s: expected 201, got %d", usersPath, resp.StatusCode)
	}
	if err := echoIncludes(resp, payload); err != nil {
		return scenario.Fail(err)
	}
	id := resp.Get("id").String()
	env.Notes["jsonplaceholder.created_id"] = id
	return scenario.Pass("id=%s", id)
}

func (p *placeholder) createInvalidEmail(ctx context.Context, env *scenario.Env) scenario.Outcome {
	payload, err := p.cfg.Fixtures.PlaceholderUser(fixture.WithInvalidEmail())
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := p.cfg.Client.Send(ctx, httpclient.Request{
		Method:           http.MethodPost,
		Path:             usersPath,
		Body:             payload,
		Headers:          env.Session.Headers(),
		AllowErrorStatus: true,
	})
	outcome, err := contract.ClassifyNegative(resp, err)
	if err != nil {
		return scenario.Fail(err)
	}
	if outcome == contract.AcceptedNonCompliant {
		return scenario.Lenient("malformed email accepted with status %d", resp.StatusCode)
	}
	return scenario.Pass("rejected with %d", resp.StatusCode)
}

func (p *placeholder) target(ctx context.Context, env *scenario.Env) (string, error) {
	return resolveTarget(ctx, p.cfg, env, usersPath, "0.id", "id", func() (fixture.Payload, error) {
		return p.cfg.Fixtures.PlaceholderUser()
	})
}

func (p *placeholder) update(ctx context.Context, env *scenario.Env) scenario.Outcome {
	id, err := p.target(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	payload, err := p.cfg.Fixtures.PlaceholderUser()
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := p.cfg.Client.Put(ctx, usersPath+"/"+id, payload, env.Session.Headers())
	if err != nil {
		return scenario.Fail(err)
	}
	if resp.StatusCode != http.StatusOK {
		return scenario.Failf("PUT %s/%s: expected 200, got %d", usersPath, id, resp.StatusCode)
	}
	if err := echoIncludes(resp, payload); err != nil {
		return scenario.Fail(err)
	}
	return scenario.Pass("id=%s", id)
}

func (p *placeholder) delete(ctx context.Context, env *scenario.Env) scenario.Outcome {
	id, err := p.target(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := p.cfg.Client.Send(ctx, httpclient.Request{
		Method:           http.MethodDelete,
		Path:             usersPath + "/" + id,
		Headers:          env.Session.Headers(),
		AllowErrorStatus: true,
	})
	if err != nil {
		return scenario.Fail(err)
	}
	outcome, err := contract.ClassifyDeleteStatus(resp)
	if err != nil {
		return scenario.Fail(err)
	}
	return scenario.Pass("id=%s %s", id, outcome)
}
