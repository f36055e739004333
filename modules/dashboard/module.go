package dashboard

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the dashboard_wait runner.
type Input struct {
	URL                string         `nng:"url"`
	Namespace          string         `nng:"namespace"`
	WaitEvent          string         `nng:"wait_event"`
	SubscribeEvent     string         `nng:"subscribe_event"`
	SubscribeData      map[string]any `nng:"subscribe_data"`
	Timeout            string         `nng:"timeout"`
	InsecureSkipVerify bool           `nng:"insecure_skip_verify"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	Payload string `cty:"payload"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value *Output
	err   error
}

// OnRunDashboardWait connects to a training dashboard's socket.io endpoint,
// optionally emits a subscribe event, and blocks until the awaited event
// arrives or the timeout elapses. The event payload is returned JSON-encoded.
func OnRunDashboardWait(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "dashboard_wait", "url", input.URL, "waitEvent", input.WaitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected to dashboard", "namespace", input.Namespace, "sid", io.Id())
		if input.SubscribeEvent != "" {
			logger.Info("Emitting subscribe event", "event", input.SubscribeEvent)
			io.Emit(input.SubscribeEvent, input.SubscribeData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.On(types.EventName(input.WaitEvent), func(data ...any) {
		payload := ""
		if len(data) > 0 {
			encoded, err := json.Marshal(data[0])
			if err != nil {
				done <- opResult{err: fmt.Errorf("failed to encode event payload: %w", err)}
				return
			}
			payload = string(encoded)
		}
		done <- opResult{value: &Output{Payload: payload}}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.WaitEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunDashboardWait", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunDashboardWait,
	})
}
