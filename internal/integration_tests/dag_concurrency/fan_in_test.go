package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/testutil"
)

// A step that fans in from several dependencies starts only after every one
// of them has finished.
func TestDagConcurrency_FanInWaitsForAllDependencies(t *testing.T) {
	t.Parallel()

	module := newSleeperModule(100 * time.Millisecond)
	files := map[string]string{
		"modules/sleeper/manifest.hcl": sleeperManifestHCL,
		"mission/main.hcl": `
			step "sleeper" "a" {
				arguments { id = "a" }
			}

			step "sleeper" "b" {
				arguments { id = "b" }
			}

			step "sleeper" "c" {
				arguments { id = "c" }
			}

			step "sleeper" "join" {
				arguments { id = "join" }
				depends_on = ["sleeper.a", "sleeper.b", "sleeper.c"]
			}
		`,
	}

	result := testutil.RunMission(t, files, module)
	require.NoError(t, result.Err)

	join, ok := module.record("join")
	require.True(t, ok)

	for _, name := range []string{"a", "b", "c"} {
		dep, ok := module.record(name)
		require.True(t, ok, "missing execution record for %s", name)
		assert.False(t, join.Start.Before(dep.End), "join started before dependency %s finished", name)
	}
}
