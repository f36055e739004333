package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/mz/nerfnavgo/internal/testutil"
)

type echoInput struct {
	Msg string `nng:"msg"`
}

// Leaving out a required argument fails the step at decode time.
func TestErrorHandling_MissingRequiredArgument(t *testing.T) {
	t.Parallel()

	echo := &testutil.SimpleModule{
		RunnerName: "OnRunEcho",
		Runner: &registry.RegisteredRunner{
			NewInput: func() any { return new(echoInput) },
			NewDeps:  func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *echoInput) (any, error) {
				return nil, nil
			},
		},
	}

	files := map[string]string{
		"modules/echo/manifest.hcl": `
			runner "echo" {
			  lifecycle { on_run = "OnRunEcho" }
			  input "msg" { type = string }
			}
		`,
		"mission/main.hcl": `
			step "echo" "quiet" {}
		`,
	}

	result := testutil.RunMission(t, files, echo)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `missing required argument "msg"`)
	assert.Contains(t, result.Err.Error(), "step.echo.quiet")
}
