package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/app"
	"github.com/mz/nerfnavgo/internal/hcl"
	"github.com/mz/nerfnavgo/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App

	// Root is the temp directory the fixtures were written into.
	Root string
}

// RootPlaceholder is replaced with the harness temp root in every fixture
// file, so mission HCL can reference sibling fixtures by absolute path.
const RootPlaceholder = "@ROOT@"

// RunMission drives the whole application against a set of inline fixture
// files and returns the outcome. File map keys are paths relative to the
// test root; the harness reserves "mission/", "modules/", and "profiles/"
// as the directories the app is pointed at.
func RunMission(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runHarness(context.Background(), t, files, false, modules...)
}

// RunMissionWithContext is RunMission with a caller-provided context, for
// cancellation tests.
func RunMissionWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runHarness(ctx, t, files, false, modules...)
}

// ValidateMission runs the app in validate-only mode against the fixtures.
func ValidateMission(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runHarness(context.Background(), t, files, true, modules...)
}

func runHarness(ctx context.Context, t *testing.T, files map[string]string, validateOnly bool, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for _, sub := range []string{"mission", "modules", "profiles"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, sub), 0755))
	}
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		content = strings.ReplaceAll(content, RootPlaceholder, tmpDir)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	appConfig := &app.Config{
		MissionPath:  filepath.Join(tmpDir, "mission"),
		ModulesPath:  filepath.Join(tmpDir, "modules"),
		ProfilesPath: filepath.Join(tmpDir, "profiles"),
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  4,
		ValidateOnly: validateOnly,
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl.NewLoader(), modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			Root:      tmpDir,
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("NNG_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Root:      tmpDir,
	}
}
