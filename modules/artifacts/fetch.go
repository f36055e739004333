package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mz/nerfnavgo/internal/ctxlog"
)

// FetchInput defines the arguments for the http_fetch runner.
type FetchInput struct {
	URL      string `nng:"url"`
	DestPath string `nng:"dest_path"`
}

// FetchDeps defines the injected resources from the 'uses' HCL block.
type FetchDeps struct {
	Client *http.Client `nng:"client"`
}

// FetchOutput defines the data structure returned by the runner.
type FetchOutput struct {
	StatusCode int    `cty:"status_code"`
	Body       string `cty:"body"`
	Bytes      int64  `cty:"bytes"`
}

// OnRunHTTPFetch GETs a URL through the shared http_client resource. With a
// dest_path the body streams to disk (density grids, checkpoints); without
// one it is returned in the output for downstream expressions.
func OnRunHTTPFetch(ctx context.Context, deps *FetchDeps, input *FetchInput) (*FetchOutput, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "http_fetch", "url", input.URL)

	if deps.Client == nil {
		return nil, fmt.Errorf("http client dependency was not injected")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := deps.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch failed with status: %s", resp.Status)
	}

	if input.DestPath != "" {
		out, err := os.Create(input.DestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create '%s': %w", input.DestPath, err)
		}
		defer out.Close()

		n, err := io.Copy(out, resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to write '%s': %w", input.DestPath, err)
		}
		return &FetchOutput{StatusCode: resp.StatusCode, Bytes: n}, nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &FetchOutput{StatusCode: resp.StatusCode, Body: string(bodyBytes), Bytes: int64(len(bodyBytes))}, nil
}
