// Package config defines the unified, format-agnostic model of the
// application's declarative inputs: runner and asset manifests, hyperparameter
// profiles, and the mission itself. The HCL front-end translates into this
// model; nothing downstream of it depends on HCL file layout.
package config
