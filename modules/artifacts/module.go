package artifacts

import (
	"net/http"
	"reflect"

	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the asset and runner handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateHTTPClient", &registry.RegisteredAsset{
		NewInput: func() any { return new(AssetInput) },
		CreateFn: CreateHTTPClient,
	})
	r.RegisterAssetHandler("DestroyHTTPClient", &registry.RegisteredAsset{
		DestroyFn: DestroyHTTPClient,
	})
	r.RegisterAssetInterface("http_client", reflect.TypeOf((*http.Client)(nil)))

	r.RegisterRunner("OnRunArtifactUpload", &registry.RegisteredRunner{
		NewInput: func() any { return new(UploadInput) },
		NewDeps:  func() any { return new(UploadDeps) },
		Fn:       OnRunArtifactUpload,
	})
	r.RegisterRunner("OnRunHTTPFetch", &registry.RegisteredRunner{
		NewInput: func() any { return new(FetchInput) },
		NewDeps:  func() any { return new(FetchDeps) },
		Fn:       OnRunHTTPFetch,
	})
}
