package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/testutil"
)

// A failing step fails the run and its dependents never execute.
func TestErrorHandling_StepFailureSkipsDependents(t *testing.T) {
	t.Parallel()

	spy := &spyModule{}
	files := map[string]string{
		"modules/failer/manifest.hcl": failerManifestHCL,
		"modules/spy/manifest.hcl":    spyManifestHCL,
		"mission/main.hcl": `
			step "failer" "boom" {}

			step "spy" "after" {
				depends_on = ["failer.boom"]
			}
		`,
	}

	result := testutil.RunMission(t, files, &failerModule{}, spy)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "handler exploded on purpose")
	assert.Contains(t, result.Err.Error(), "step.failer.boom")
	assert.False(t, spy.didRun(), "dependent step should have been skipped")
	assert.Contains(t, result.LogOutput, "Skipping dependent node")
}

// An independent step already picked up by a worker completes even though an
// unrelated step fails the run.
func TestErrorHandling_UnrelatedStepsStillRun(t *testing.T) {
	t.Parallel()

	spy := &spyModule{}
	files := map[string]string{
		"modules/failer/manifest.hcl": failerManifestHCL,
		"modules/spy/manifest.hcl":    spyManifestHCL,
		"mission/main.hcl": `
			step "failer" "boom" {}

			step "spy" "independent" {}
		`,
	}

	// Delay the failure so the independent step is in flight before the
	// run is cancelled.
	result := testutil.RunMission(t, files, &failerModule{delay: 100 * time.Millisecond}, spy)

	require.Error(t, result.Err)
	assert.True(t, spy.didRun(), "independent step should not be affected by the failure")
}
