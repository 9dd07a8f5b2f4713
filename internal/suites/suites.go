// Package suites defines the contract suites for each service under test.
package suites

import (
	"context"
	"fmt"
	"sort"

	"github.com/leicam1995/teste-api-ebac/internal/auth"
	"github.com/leicam1995/teste-api-ebac/internal/fixture"
	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/scenario"
)

// TargetStrategy picks the entity that update and delete operate on.
type TargetStrategy string

const (
	// StrategyFirst takes the first element of the list endpoint. Against a
	// shared store that may be someone else's record.
	StrategyFirst TargetStrategy = "first"
	// StrategyOwn creates a fresh entity and uses the id it returned.
	StrategyOwn TargetStrategy = "own"
)

// ParseStrategy validates s. Empty means the suite default.
func ParseStrategy(s string) (TargetStrategy, error) {
	switch TargetStrategy(s) {
	case "", StrategyFirst, StrategyOwn:
		return TargetStrategy(s), nil
	}
	return "", fmt.Errorf("unknown target strategy %q (want %q or %q)", s, StrategyFirst, StrategyOwn)
}

// Config is what a suite needs to run against one service.
type Config struct {
	Client   *httpclient.Client
	Fixtures *fixture.Generator
	Strategy TargetStrategy
	// Credentials are used by suites that log in.
	Credentials auth.Credentials
}

type definition struct {
	build           func(Config) *scenario.Suite
	defaultStrategy TargetStrategy
}

var registry = map[string]definition{
	ServeRestName:       {build: ServeRest, defaultStrategy: StrategyOwn},
	JSONPlaceholderName: {build: JSONPlaceholder, defaultStrategy: StrategyFirst},
}

// Names returns every suite name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultStrategy returns the strategy a suite uses when none is set.
func DefaultStrategy(name string) TargetStrategy {
	return registry[name].defaultStrategy
}

// Build returns the named suite. Missing Fixtures and Strategy are filled
// with a random generator and the suite default.
func Build(name string, cfg Config) (*scenario.Suite, error) {
	def, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown suite %q (known: %v)", name, Names())
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("suite %s: no HTTP client", name)
	}
	if cfg.Fixtures == nil {
		cfg.Fixtures = fixture.NewGenerator(0)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = def.defaultStrategy
	}
	return def.build(cfg), nil
}

// resolveTarget returns the id update/delete should act on. With StrategyOwn
// it POSTs create() to collectionPath and reads createdPath from the reply;
// with StrategyFirst it GETs collectionPath and reads firstIDPath.
func resolveTarget(ctx context.Context, cfg Config, env *scenario.Env, collectionPath, firstIDPath, createdPath string, create func() (fixture.Payload, error)) (string, error) {
	headers := env.Session.Headers()
	if cfg.Strategy == StrategyOwn {
		payload, err := create()
		if err != nil {
			return "", err
		}
		resp, err := cfg.Client.Post(ctx, collectionPath, payload, headers)
		if err != nil {
			return "", fmt.Errorf("creating target: %w", err)
		}
		id := resp.Get(createdPath).String()
		if id == "" {
			return "", fmt.Errorf("creating target: response has no %q: %s", createdPath, resp.Body)
		}
		return id, nil
	}

	resp, err := cfg.Client.Get(ctx, collectionPath, headers)
	if err != nil {
		return "", fmt.Errorf("listing targets: %w", err)
	}
	id := resp.Get(firstIDPath).String()
	if id == "" {
		return "", fmt.Errorf("listing targets: no entity at %q", firstIDPath)
	}
	return id, nil
}
