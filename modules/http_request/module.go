package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL     string            `weft:"url"`
	Method  string            `weft:"method"`
	Body    string            `weft:"body"`
	Headers map[string]string `weft:"headers"`
	Timeout string            `weft:"timeout"`
}

// OnRunHttpRequest is the handler for the 'http_request' component's
// on_run event.
func OnRunHttpRequest(ctx context.Context, input any) (cty.Value, error) {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", in.Method, "url", in.URL)

	timeout, err := time.ParseDuration(in.Timeout)
	if err != nil {
		return cty.NilVal, fmt.Errorf("invalid timeout %q: %w", in.Timeout, err)
	}

	var bodyReader io.Reader
	if in.Body != "" {
		bodyReader = strings.NewReader(in.Body)
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, in.URL, bodyReader)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range in.Headers {
		req.Header.Set(name, value)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to read response body: %w", err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"status_code": cty.NumberIntVal(int64(resp.StatusCode)),
		"body":        cty.StringVal(string(bodyBytes)),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent("OnRunHttpRequest", &registry.RegisteredComponent{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunHttpRequest,
	})
}
