package executor

import (
	"context"
	"errors"
	"sync"
	"testing"

	hclv2 "github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mz/nerfnavgo/internal/config"
	"github.com/mz/nerfnavgo/internal/dag"
	"github.com/mz/nerfnavgo/internal/hcl"
	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parseExpr(t *testing.T, src string) hclv2.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hclv2.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

type echoInput struct {
	Message string `nng:"message"`
}

type echoOutput struct {
	Message string `cty:"message"`
}

// registerEcho wires a runner that records invocations and echoes its message.
func registerEcho(r *registry.Registry, calls *[]string, mu *sync.Mutex) {
	r.DefinitionRegistry["echo"] = &config.RunnerDefinition{
		Type:      "echo",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunEcho"},
		Inputs: map[string]*config.InputDefinition{
			"message": {Name: "message", Type: cty.String},
		},
		Outputs: map[string]*config.OutputDefinition{
			"message": {Name: "message", Type: cty.String},
		},
	}
	r.RegisterRunner("OnRunEcho", &registry.RegisteredRunner{
		NewInput: func() any { return new(echoInput) },
		NewDeps:  func() any { return &struct{}{} },
		Fn: func(ctx context.Context, deps *struct{}, input *echoInput) (*echoOutput, error) {
			mu.Lock()
			*calls = append(*calls, input.Message)
			mu.Unlock()
			return &echoOutput{Message: input.Message}, nil
		},
	})
}

func buildAndRun(t *testing.T, model *config.Model, r *registry.Registry) error {
	t.Helper()
	graph, err := dag.Build(context.Background(), model, r)
	require.NoError(t, err)
	exec := New(graph, 4, r, hcl.NewConverter())
	return exec.Execute(context.Background())
}

func TestExecute_OrderAndOutputPassing(t *testing.T) {
	t.Parallel()

	var calls []string
	var mu sync.Mutex
	r := registry.New()
	registerEcho(r, &calls, &mu)

	first := &config.Step{
		RunnerType: "echo", Name: "first",
		Arguments: map[string]hclv2.Expression{"message": parseExpr(t, `"one"`)},
	}
	second := &config.Step{
		RunnerType: "echo", Name: "second",
		Arguments: map[string]hclv2.Expression{"message": parseExpr(t, `step.echo.first.output.message`)},
	}

	model := &config.Model{Mission: &config.Mission{Steps: []*config.Step{first, second}}}
	require.NoError(t, buildAndRun(t, model, r))

	require.Equal(t, []string{"one", "one"}, calls)
}

func TestExecute_FailureSkipsDependents(t *testing.T) {
	t.Parallel()

	var calls []string
	var mu sync.Mutex
	r := registry.New()
	registerEcho(r, &calls, &mu)

	r.DefinitionRegistry["boom"] = &config.RunnerDefinition{
		Type:      "boom",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunBoom"},
		Inputs:    map[string]*config.InputDefinition{},
	}
	r.RegisterRunner("OnRunBoom", &registry.RegisteredRunner{
		NewDeps: func() any { return &struct{}{} },
		Fn: func(ctx context.Context, deps *struct{}, input *struct{}) (*echoOutput, error) {
			return nil, errors.New("simulated failure")
		},
	})

	failing := &config.Step{RunnerType: "boom", Name: "bad"}
	downstream := &config.Step{
		RunnerType: "echo", Name: "after",
		Arguments: map[string]hclv2.Expression{"message": parseExpr(t, `"never"`)},
		DependsOn: []string{"boom.bad"},
	}

	model := &config.Model{Mission: &config.Mission{Steps: []*config.Step{failing, downstream}}}
	err := buildAndRun(t, model, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated failure")
	assert.Empty(t, calls)
}

type fakeResource struct {
	mu        sync.Mutex
	created   bool
	destroyed bool
}

func (f *fakeResource) Ping() string { return "pong" }

type pingDeps struct {
	Client *fakeResource `nng:"client"`
}

func TestExecute_ResourceLifecycle(t *testing.T) {
	t.Parallel()

	r := registry.New()
	resource := &fakeResource{}

	r.AssetDefinitionRegistry["fake"] = &config.AssetDefinition{
		Type:      "fake",
		Lifecycle: &config.AssetLifecycle{Create: "FakeAsset", Destroy: "FakeAsset"},
		Inputs:    map[string]*config.InputDefinition{},
	}
	r.RegisterAssetHandler("FakeAsset", &registry.RegisteredAsset{
		NewInput: func() any { return &struct{}{} },
		CreateFn: func(ctx context.Context, input *struct{}) (*fakeResource, error) {
			resource.mu.Lock()
			resource.created = true
			resource.mu.Unlock()
			return resource, nil
		},
		DestroyFn: func(res *fakeResource) {
			res.mu.Lock()
			res.destroyed = true
			res.mu.Unlock()
		},
	})

	var got string
	r.DefinitionRegistry["ping"] = &config.RunnerDefinition{
		Type:      "ping",
		Lifecycle: &config.Lifecycle{OnRun: "OnRunPing"},
		Inputs:    map[string]*config.InputDefinition{},
		Uses:      map[string]*config.UsesDefinition{"client": {LocalName: "client", AssetType: "fake"}},
	}
	r.RegisterRunner("OnRunPing", &registry.RegisteredRunner{
		NewDeps: func() any { return new(pingDeps) },
		Fn: func(ctx context.Context, deps *pingDeps, input *struct{}) (*echoOutput, error) {
			got = deps.Client.Ping()
			return nil, nil
		},
	})

	res := &config.Resource{AssetType: "fake", Name: "shared"}
	step := &config.Step{
		RunnerType: "ping", Name: "check",
		Uses: map[string]hclv2.Expression{"client": parseExpr(t, `resource.fake.shared`)},
	}

	model := &config.Model{Mission: &config.Mission{
		Steps:     []*config.Step{step},
		Resources: []*config.Resource{res},
	}}
	require.NoError(t, buildAndRun(t, model, r))

	assert.Equal(t, "pong", got)
	resource.mu.Lock()
	defer resource.mu.Unlock()
	assert.True(t, resource.created)
	assert.True(t, resource.destroyed)
}
