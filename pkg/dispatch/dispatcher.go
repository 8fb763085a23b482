// Package dispatch executes tool specifications: native Go functions,
// HTTP API endpoints, and inline expressions.
package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/metricskey"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/nirb28/dsp-adk2/pkg/validate"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "dispatch")

const (
	// DefaultHTTPTimeout bounds API tool calls.
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultCodeTimeout bounds inline expression evaluation.
	DefaultCodeTimeout = 5 * time.Second
)

// Dispatcher executes tools by variant.
type Dispatcher struct {
	funcs       *FuncRegistry
	client      *http.Client
	codeTimeout time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithFuncRegistry sets the native function registry.
func WithFuncRegistry(reg *FuncRegistry) DispatcherOption {
	return func(d *Dispatcher) {
		d.funcs = reg
	}
}

// WithHTTPClient sets the client used for API tools.
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithCodeTimeout sets the evaluation ceiling for code tools.
func WithCodeTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.codeTimeout = timeout
	}
}

// NewDispatcher returns a Dispatcher with an empty function registry
// and default timeouts.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		funcs:       NewFuncRegistry(),
		client:      &http.Client{Timeout: DefaultHTTPTimeout},
		codeTimeout: DefaultCodeTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Funcs returns the native function registry.
func (d *Dispatcher) Funcs() *FuncRegistry {
	return d.funcs
}

// Execute validates the arguments and runs the tool. It always returns
// a result; failures are reported through Success and Error rather than
// an error return, so one bad tool call never aborts an agent run.
func (d *Dispatcher) Execute(ctx context.Context, tool *spec.ToolSpec, args map[string]any) *spec.ExecutionResult {
	started := time.Now()
	res := &spec.ExecutionResult{
		ToolName: tool.Name,
	}

	defer func() {
		res.Elapsed = time.Since(started).Seconds()
		metricskey.PerfToolCall.MeasureSince(started, tool.Name)
		if res.Success {
			metricskey.StatsToolCallsSucceeded.IncrCounter(1, tool.Name)
		} else {
			metricskey.StatsToolCallsFailed.IncrCounter(1, tool.Name)
		}
	}()

	validated, err := validate.Arguments(tool.Parameters, args)
	if err != nil {
		res.Error = err.Error()
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "invalid_arguments",
			"tool", tool.Name,
			"err", err.Error(),
		)
		return res
	}

	out, err := d.execute(ctx, tool, validated)
	if err != nil {
		res.Error = err.Error()
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_failed",
			"tool", tool.Name,
			"type", tool.Type,
			"err", err.Error(),
		)
		return res
	}

	res.Success = true
	res.Result = out
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tool_executed",
		"tool", tool.Name,
		"type", tool.Type,
		"elapsed", time.Since(started).String(),
	)
	return res
}

func (d *Dispatcher) execute(ctx context.Context, tool *spec.ToolSpec, args map[string]any) (any, error) {
	switch tool.Type {
	case spec.ToolTypeFunction:
		return d.executeFunction(ctx, tool, args)
	case spec.ToolTypeAPI:
		return d.executeAPI(ctx, tool, args)
	case spec.ToolTypeCode:
		return d.executeCode(ctx, tool, args)
	default:
		return nil, NewError(tool.Name, CategoryExecution, errors.Newf("unsupported tool type: %s", tool.Type))
	}
}

// executeFunction calls a registered native function. Panics inside the
// function are recovered into execution errors.
func (d *Dispatcher) executeFunction(ctx context.Context, tool *spec.ToolSpec, args map[string]any) (out any, err error) {
	fn, ok := d.funcs.Lookup(tool.ModulePath, tool.FunctionName)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, tool.Name)
		return nil, NewError(tool.Name, CategoryNotFound,
			errors.Newf("function %s is not registered", funcKey(tool.ModulePath, tool.FunctionName)))
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = NewError(tool.Name, CategoryExecution, errors.Newf("panic: %v", r))
		}
	}()

	out, err = fn(ctx, args)
	if err != nil {
		return nil, NewError(tool.Name, CategoryExecution, err)
	}
	return out, nil
}
