package integration_tests

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/planner"
	"github.com/mz/nerfnavgo/internal/testutil"
	"github.com/mz/nerfnavgo/modules/plan"
	"github.com/mz/nerfnavgo/modules/simulate"
)

// End-to-end: plan a short trajectory, write the poses, and replay them
// through the simulator. Overrides keep the optimization small.
func TestMissionExecution_PlanAndSimulate(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"modules/plan/manifest.hcl":     shippedFile(t, "modules/plan/manifest.hcl"),
		"modules/simulate/manifest.hcl": shippedFile(t, "modules/simulate/manifest.hcl"),
		"profiles/planner.hcl":          shippedFile(t, "profiles/planner.hcl"),
		"mission/main.hcl": `
			step "plan" "flight" {
				arguments {
					start_pos  = [0, -0.4, 0.2]
					end_pos    = [0.6, 0.4, 0.2]
					poses_path = "@ROOT@/poses.json"
					overrides = {
						steps          = "6"
						epochs_init    = "30"
						fade_out_epoch = "0"
					}
				}
			}

			step "simulate" "replay" {
				arguments {
					poses_path = step.plan.flight.output.poses_path
					dt         = 0.4
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, &plan.Module{}, &simulate.Module{})

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Execution finished")

	poses, err := planner.LoadPoses(filepath.Join(result.Root, "poses.json"))
	require.NoError(t, err)
	// 6 reduced states plus the propagated boundary states on each end.
	assert.Len(t, poses, 8)
}

// An unknown planner override key is rejected by profile resolution.
func TestMissionExecution_PlanRejectsUnknownOverride(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"modules/plan/manifest.hcl": shippedFile(t, "modules/plan/manifest.hcl"),
		"profiles/planner.hcl":      shippedFile(t, "profiles/planner.hcl"),
		"mission/main.hcl": `
			step "plan" "flight" {
				arguments {
					start_pos  = [0, 0, 0.2]
					end_pos    = [1, 0, 0.2]
					poses_path = "@ROOT@/poses.json"
					overrides = {
						warp_factor = "9"
					}
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, &plan.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `unknown key "warp_factor"`)
}
