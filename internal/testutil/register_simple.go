package testutil

import (
	"reflect"

	"github.com/mz/nerfnavgo/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single runner, asset handler, or profile struct.
type SimpleModule struct {
	RunnerName string
	Runner     *registry.RegisteredRunner

	AssetName string
	Asset     *registry.RegisteredAsset

	AssetInterfaceName string
	AssetInterface     reflect.Type

	ProfileName   string
	ProfileStruct reflect.Type
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.RunnerName != "" && m.Runner != nil {
		r.RegisterRunner(m.RunnerName, m.Runner)
	}
	if m.AssetName != "" && m.Asset != nil {
		r.RegisterAssetHandler(m.AssetName, m.Asset)
	}
	if m.AssetInterfaceName != "" && m.AssetInterface != nil {
		r.RegisterAssetInterface(m.AssetInterfaceName, m.AssetInterface)
	}
	if m.ProfileName != "" && m.ProfileStruct != nil {
		r.RegisterProfileStruct(m.ProfileName, m.ProfileStruct)
	}
}
