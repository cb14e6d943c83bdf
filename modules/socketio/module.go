package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio component.
type Input struct {
	URL                string         `weft:"url"`
	Namespace          string         `weft:"namespace"`
	OnEvent            string         `weft:"on_event"`
	EmitEvent          string         `weft:"emit_event"`
	EmitData           map[string]any `weft:"emit_data"`
	Timeout            string         `weft:"timeout"`
	InsecureSkipVerify bool           `weft:"insecure_skip_verify"`
}

// opResult is a private struct to safely pass results through the done
// channel.
type opResult struct {
	value cty.Value
	err   error
}

// OnRunSocketIO is the handler for the 'socketio' component's on_run
// lifecycle event. It connects, optionally emits an event, and waits for
// a named response event until the timeout elapses.
func OnRunSocketIO(ctx context.Context, input any) (cty.Value, error) {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx).With("component", "socketio", "url", in.URL, "onEvent", in.OnEvent, "emitEvent", in.EmitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(in.Timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", in.Timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(in.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	// --- Event Listeners ---
	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", in.Namespace, "sid", io.Id())
		if in.EmitEvent != "" {
			jsonData, _ := json.Marshal(in.EmitData)
			logger.Info("Emitting event", "event", in.EmitEvent, "data", string(jsonData))
			io.Emit(in.EmitEvent, in.EmitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.On(types.EventName(in.OnEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		val, err := toCtyValue(responseData)
		done <- opResult{value: val, err: err}
	})

	// --- Execution Block ---
	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return cty.NilVal, fmt.Errorf("timed out after connecting while waiting for event '%s'", in.OnEvent)
		}
		return cty.NilVal, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return cty.NilVal, res.err
		}
		return cty.ObjectVal(map[string]cty.Value{"response": res.value}), nil
	}
}

// toCtyValue converts an arbitrary event payload into a cty value by
// round-tripping through JSON.
func toCtyValue(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to encode event payload: %w", err)
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to type event payload: %w", err)
	}
	return ctyjson.Unmarshal(raw, ty)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent("OnRunSocketIO", &registry.RegisteredComponent{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunSocketIO,
	})
}
