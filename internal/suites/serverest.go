package suites

import (
	"context"
	"fmt"
	"net/http"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
	"github.com/leicam1995/teste-api-ebac/internal/contract"
	"github.com/leicam1995/teste-api-ebac/internal/fixture"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/scenario"
)

// ServeRestName is the suite name for ServeRest.
const ServeRestName = "serverest"

const (
	usuariosPath = "/usuarios"

	msgCreated      = "Cadastro realizado com sucesso"
	msgUpdated      = "Registro alterado com sucesso"
	msgInvalidEmail = "email deve ser um email válido"
)

// ServeRest builds the /usuarios suite. It logs in once with
// cfg.Credentials and sends the session on every request.
func ServeRest(cfg Config) *scenario.Suite {
	s := &serveRest{cfg: cfg}
	return &scenario.Suite{
		Name: ServeRestName,
		Login: func(ctx context.Context) (*auth.Session, error) {
			return auth.NewProvider(cfg.Client).Login(ctx, cfg.Credentials)
		},
		Cases: []scenario.Case{
			{Name: "contract", State: scenario.ContractChecked, Run: s.contract},
			{Name: "list", State: scenario.Listed, Run: s.list},
			{Name: "create", State: scenario.Created, Run: s.create},
			{Name: "create-invalid-email", State: scenario.RejectedInvalid, Run: s.createInvalidEmail},
			{Name: "update", State: scenario.Updated, Run: s.update},
			{Name: "delete", State: scenario.Deleted, Run: s.delete},
		},
	}
}

type serveRest struct {
	cfg Config
}

func (s *serveRest) listUsers(ctx context.Context, env *scenario.Env) (*httpclient.Response, []any, error) {
	resp, err := s.cfg.Client.Get(ctx, usuariosPath, env.Session.Headers())
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("GET %s: expected 200, got %d", usuariosPath, resp.StatusCode)
	}
	users, err := resp.Array("usuarios")
	if err != nil {
		return nil, nil, err
	}
	return resp, users, nil
}

func (s *serveRest) contract(ctx context.Context, env *scenario.Env) scenario.Outcome {
	_, users, err := s.listUsers(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	if err := contract.ExactKeysAll(users, contract.ServeRestUser); err != nil {
		return scenario.Fail(err)
	}
	return scenario.Pass("%d usuarios match the schema", len(users))
}

func (s *serveRest) list(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, users, err := s.listUsers(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	q := resp.Get("quantidade")
	if !q.Exists() || q.Int() != int64(len(users)) {
		return scenario.Failf("quantidade %s does not match %d usuarios", q.Raw, len(users))
	}
	return scenario.Pass("%d usuarios", len(users))
}

// detailIncludes GETs the user, checks its key set against the usuario
// schema and that it carries every submitted field.
func (s *serveRest) detailIncludes(ctx context.Context, env *scenario.Env, id string, payload fixture.Payload) error {
	resp, err := s.cfg.Client.Get(ctx, usuariosPath+"/"+id, env.Session.Headers())
	if err != nil {
		return err
	}
	obj, err := resp.Object()
	if err != nil {
		return err
	}
	if err := contract.ExactKeys(obj, contract.ServeRestUser); err != nil {
		return err
	}
	return contract.Includes(payload, obj)
}

func (s *serveRest) create(ctx context.Context, env *scenario.Env) scenario.Outcome {
	payload, err := s.cfg.Fixtures.ServeRestUser()
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := s.cfg.Client.Post(ctx, usuariosPath, payload, env.Session.Headers())
	if err != nil {
		return scenario.Fail(err)
	}
	if resp.StatusCode != http.StatusCreated {
		return scenario.Failf("POST %s: expected 201, got %d", usuariosPath, resp.StatusCode)
	}
	if err := contract.MessageEquals(resp.Body, "message", msgCreated); err != nil {
		return scenario.Fail(err)
	}
	id := resp.Get("_id").String()
	if id == "" {
		return scenario.Failf("create response has no _id: %s", resp.Body)
	}
	if err := s.detailIncludes(ctx, env, id, payload); err != nil {
		return scenario.Fail(fmt.Errorf("created user %s: %w", id, err))
	}
	env.Notes["serverest.created_id"] = id
	return scenario.Pass("_id=%s", id)
}

func (s *serveRest) createInvalidEmail(ctx context.Context, env *scenario.Env) scenario.Outcome {
	payload, err := s.cfg.Fixtures.ServeRestUser(fixture.WithInvalidEmail())
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := s.cfg.Client.Send(ctx, httpclient.Request{
		Method:           http.MethodPost,
		Path:             usuariosPath,
		Body:             payload,
		Headers:          env.Session.Headers(),
		AllowErrorStatus: true,
	})
	outcome, err := contract.ClassifyNegative(resp, err)
	if err != nil {
		return scenario.Fail(err)
	}
	switch outcome {
	case contract.AcceptedNonCompliant:
		return scenario.Lenient("malformed email accepted with status %d", resp.StatusCode)
	case contract.Rejected:
		if resp.StatusCode != http.StatusBadRequest {
			return scenario.Failf("malformed email rejected with %d, expected 400", resp.StatusCode)
		}
		if err := contract.AnyMessageContains(resp.Body, msgInvalidEmail, "email", "message"); err != nil {
			return scenario.Fail(err)
		}
	}
	return scenario.Pass("rejected with 400")
}

func (s *serveRest) target(ctx context.Context, env *scenario.Env) (string, error) {
	return resolveTarget(ctx, s.cfg, env, usuariosPath, "usuarios.0._id", "_id", func() (fixture.Payload, error) {
		return s.cfg.Fixtures.ServeRestUser()
	})
}

func (s *serveRest) update(ctx context.Context, env *scenario.Env) scenario.Outcome {
	id, err := s.target(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	payload, err := s.cfg.Fixtures.ServeRestUser()
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := s.cfg.Client.Put(ctx, usuariosPath+"/"+id, payload, env.Session.Headers())
	if err != nil {
		return scenario.Fail(err)
	}
	if resp.StatusCode != http.StatusOK {
		return scenario.Failf("PUT %s/%s: expected 200, got %d", usuariosPath, id, resp.StatusCode)
	}
	if err := contract.MessageEquals(resp.Body, "message", msgUpdated); err != nil {
		return scenario.Fail(err)
	}
	if err := s.detailIncludes(ctx, env, id, payload); err != nil {
		return scenario.Fail(fmt.Errorf("updated user %s: %w", id, err))
	}
	return scenario.Pass("_id=%s", id)
}

func (s *serveRest) delete(ctx context.Context, env *scenario.Env) scenario.Outcome {
	id, err := s.target(ctx, env)
	if err != nil {
		return scenario.Fail(err)
	}
	resp, err := s.cfg.Client.Send(ctx, httpclient.Request{
		Method:           http.MethodDelete,
		Path:             usuariosPath + "/" + id,
		Headers:          env.Session.Headers(),
		AllowErrorStatus: true,
	})
	if err != nil {
		return scenario.Fail(err)
	}
	outcome, err := contract.ClassifyDelete(resp)
	if err != nil {
		return scenario.Fail(err)
	}
	if outcome == contract.Conflict {
		return scenario.Pass("_id=%s %s idCarrinho=%s", id, outcome, resp.Get("idCarrinho").String())
	}
	return scenario.Pass("_id=%s %s", id, outcome)
}
