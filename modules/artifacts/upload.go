package artifacts

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mz/nerfnavgo/internal/ctxlog"
)

// UploadInput defines the arguments for the artifact_upload runner.
type UploadInput struct {
	SourcePath string `nng:"source_path"`
	UploadURL  string `nng:"upload_url"`
}

// UploadDeps defines the injected resources from the 'uses' HCL block.
type UploadDeps struct {
	Client *http.Client `nng:"client"`
}

// UploadOutput defines the data structure returned by the runner.
type UploadOutput struct {
	Status string `cty:"status"`
	Size   int64  `cty:"size"`
}

// OnRunArtifactUpload PUTs a run artifact (poses, resolved configs) to a
// pre-signed URL through the shared http_client resource.
func OnRunArtifactUpload(ctx context.Context, deps *UploadDeps, input *UploadInput) (*UploadOutput, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "artifact_upload", "source", input.SourcePath)

	if deps.Client == nil {
		return nil, fmt.Errorf("http client dependency was not injected")
	}

	file, err := os.Open(input.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file '%s': %w", input.SourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats for '%s': %w", input.SourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.UploadURL, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(input.SourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading artifact", "size", stat.Size(), "contentType", contentType)

	resp, err := deps.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded artifact", "status", resp.Status)
	return &UploadOutput{Status: resp.Status, Size: stat.Size()}, nil
}
