// Package registry provides the central "glue" for the module system.
//
// The Registry stores the mappings between the string identifiers used in
// manifests (e.g., "OnRunPlan") and the compiled Go functions and types that
// implement the module's logic, alongside the parsed, format-agnostic
// definitions from the manifests and hyperparameter profiles themselves.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code, the module manifests, and the declared profiles
// are in sync, preventing a wide class of runtime errors.
package registry
