package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	MissionPath  string // hcl files declaring steps and resources
	ModulesPath  string // runner/asset manifests + Go handlers
	ProfilesPath string // hyperparameter profile manifests

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int

	// ValidateOnly resolves every training configuration referenced by the
	// mission and builds the graph, without executing anything.
	ValidateOnly bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.MissionPath == "" {
		return nil, errors.New("MissionPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
