package artifacts

import (
	"context"
	"net/http"
	"time"
)

// AssetInput defines the arguments for creating an http_client resource.
type AssetInput struct {
	Timeout string `nng:"timeout"`
}

// CreateHTTPClient is the 'create' handler for the http_client asset. It
// returns a live *http.Client shared across every step that uses it.
func CreateHTTPClient(ctx context.Context, input *AssetInput) (*http.Client, error) {
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return client, nil
}

// DestroyHTTPClient is the 'destroy' handler. For an http.Client we just
// need to close idle connections.
func DestroyHTTPClient(client *http.Client) error {
	client.CloseIdleConnections()
	return nil
}
