package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/testutil"
	"github.com/mz/nerfnavgo/modules/trainconfig"
)

func validationFixtures(configTxt string) map[string]string {
	return map[string]string{
		"modules/trainconfig/manifest.hcl": trainconfigManifestHCL,
		"profiles/nerf.hcl":                nerfProfileHCL,
		"configs/exp.txt":                  configTxt,
		"mission/main.hcl": `
			step "trainconfig" "exp" {
				arguments {
					path = "@ROOT@/configs/exp.txt"
				}
			}
		`,
	}
}

func TestValidateMode_ValidConfigPasses(t *testing.T) {
	t.Parallel()

	files := validationFixtures("expname = lego\ndatadir = ./data/lego\nN_samples = 64\n")

	result := testutil.ValidateMission(t, files, &trainconfig.Module{})

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Mission is valid")
	assert.Contains(t, result.LogOutput, "Training configuration is valid")
}

func TestValidateMode_MissingRequiredKey(t *testing.T) {
	t.Parallel()

	// datadir has no default, so leaving it out must fail resolution.
	files := validationFixtures("expname = lego\n")

	result := testutil.ValidateMission(t, files, &trainconfig.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `missing required key "datadir"`)
}

func TestValidateMode_UnknownKeyRejected(t *testing.T) {
	t.Parallel()

	files := validationFixtures("expname = lego\ndatadir = ./data/lego\nmystery_knob = 7\n")

	result := testutil.ValidateMission(t, files, &trainconfig.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `unknown key "mystery_knob"`)
}

func TestValidateMode_OverridesFillMissingKeys(t *testing.T) {
	t.Parallel()

	// datadir is absent from the file but supplied as a step override.
	files := validationFixtures("expname = lego\n")
	files["mission/main.hcl"] = `
		step "trainconfig" "exp" {
			arguments {
				path = "@ROOT@/configs/exp.txt"
				overrides = {
					datadir = "./data/lego"
				}
			}
		}
	`

	result := testutil.ValidateMission(t, files, &trainconfig.Module{})

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Mission is valid")
}

func TestValidateMode_MissingFileFails(t *testing.T) {
	t.Parallel()

	files := validationFixtures("expname = lego\ndatadir = ./data/lego\n")
	files["mission/main.hcl"] = `
		step "trainconfig" "exp" {
			arguments {
				path = "/definitely/not/here.txt"
			}
		}
	`

	result := testutil.ValidateMission(t, files, &trainconfig.Module{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to open config file")
}
