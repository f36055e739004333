package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything the application loaded:
// runner/asset definitions, hyperparameter profiles, and the mission.
type Model struct {
	Runners  map[string]*RunnerDefinition
	Assets   map[string]*AssetDefinition
	Profiles map[string]*ProfileDefinition
	Mission  *Mission
}

// Mission represents the user's experiment pipeline definition.
type Mission struct {
	Steps     []*Step
	Resources []*Resource
}

// Step is the format-agnostic representation of a `step` block.
type Step struct {
	RunnerType string
	Name       string
	Arguments  map[string]hcl.Expression
	Uses       map[string]hcl.Expression
	DependsOn  []string
}

// Resource is the format-agnostic representation of a `resource` block.
type Resource struct {
	AssetType string
	Name      string
	Arguments map[string]hcl.Expression
	DependsOn []string
}

// --- Module manifest models ---

// RunnerDefinition is the format-agnostic representation of a runner's manifest.
type RunnerDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
	Uses        map[string]*UsesDefinition
}

// AssetDefinition is the format-agnostic representation of an asset's manifest.
type AssetDefinition struct {
	Type        string
	Description string
	Lifecycle   *AssetLifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a runner's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// AssetLifecycle maps an asset's events to Go handler names.
type AssetLifecycle struct {
	Create  string
	Destroy string
}

// InputDefinition defines a single input argument for a runner or asset.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value from a runner.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}

// UsesDefinition defines an asset dependency for a runner.
type UsesDefinition struct {
	LocalName string
	AssetType string
}

// --- Hyperparameter profile models ---

// ProfileDefinition declares the legal hyperparameter surface of one external
// trainer: which keys its configuration files may carry, their types, and
// their defaults.
type ProfileDefinition struct {
	Name        string
	Description string
	Params      map[string]*ParamDefinition
}

// ParamDefinition defines a single hyperparameter in a profile. A param with
// a non-null default is optional; one without is required.
type ParamDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}
