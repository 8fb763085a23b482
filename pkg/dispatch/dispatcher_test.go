package dispatch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/dispatch/builtin"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T, opts ...dispatch.DispatcherOption) *dispatch.Dispatcher {
	t.Helper()
	d := dispatch.NewDispatcher(opts...)
	require.NoError(t, builtin.Register(d.Funcs()))
	return d
}

func Test_ExecuteFunction(t *testing.T) {
	d := newDispatcher(t)

	tool := &spec.ToolSpec{
		Name:         "calculator",
		Type:         spec.ToolTypeFunction,
		FunctionName: "calculator",
		Parameters: []spec.ParameterSpec{
			{Name: "expression", Type: spec.ParamString, Required: true},
		},
	}

	res := d.Execute(context.Background(), tool, map[string]any{"expression": "10 * 5 + 2"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "calculator", res.ToolName)
	assert.EqualValues(t, 52, res.Result)
	assert.GreaterOrEqual(t, res.Elapsed, 0.0)
}

func Test_ExecuteFunction_InvalidArguments(t *testing.T) {
	d := newDispatcher(t)

	tool := &spec.ToolSpec{
		Name:         "calculator",
		Type:         spec.ToolTypeFunction,
		FunctionName: "calculator",
		Parameters: []spec.ParameterSpec{
			{Name: "expression", Type: spec.ParamString, Required: true},
		},
	}

	res := d.Execute(context.Background(), tool, map[string]any{})
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "expression")

	res = d.Execute(context.Background(), tool, map[string]any{"expression": 42})
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "expression")
}

func Test_ExecuteFunction_NotRegistered(t *testing.T) {
	d := dispatch.NewDispatcher()

	tool := &spec.ToolSpec{
		Name:         "missing",
		Type:         spec.ToolTypeFunction,
		FunctionName: "no_such_func",
	}

	res := d.Execute(context.Background(), tool, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "NotFound")
	assert.Contains(t, res.Error, "no_such_func")
}

func Test_ExecuteFunction_DefaultsApplied(t *testing.T) {
	d := dispatch.NewDispatcher()
	require.NoError(t, d.Funcs().Register("echo", func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	}))

	tool := &spec.ToolSpec{
		Name:         "echo",
		Type:         spec.ToolTypeFunction,
		FunctionName: "echo",
		Parameters: []spec.ParameterSpec{
			{Name: "greeting", Type: spec.ParamString, Default: "hello"},
		},
	}

	res := d.Execute(context.Background(), tool, map[string]any{})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]any{"greeting": "hello"}, res.Result)
}

func Test_ExecuteFunction_PanicRecovered(t *testing.T) {
	d := dispatch.NewDispatcher()
	require.NoError(t, d.Funcs().Register("boom", func(_ context.Context, _ map[string]any) (any, error) {
		panic("kaboom")
	}))

	tool := &spec.ToolSpec{
		Name:         "boom",
		Type:         spec.ToolTypeFunction,
		FunctionName: "boom",
	}

	res := d.Execute(context.Background(), tool, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "kaboom")
}

func Test_ExecuteAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/weather/london", r.URL.Path)
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"city": "london", "temp": 14.5}`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok": true}`))
		}
	}))
	defer srv.Close()

	d := dispatch.NewDispatcher()

	t.Run("get_with_path_and_query", func(t *testing.T) {
		tool := &spec.ToolSpec{
			Name:        "weather",
			Type:        spec.ToolTypeAPI,
			APIEndpoint: srv.URL + "/weather/{city}",
			APIMethod:   "GET",
			Parameters: []spec.ParameterSpec{
				{Name: "city", Type: spec.ParamString, Required: true},
				{Name: "units", Type: spec.ParamString, Default: "metric"},
			},
		}

		res := d.Execute(context.Background(), tool, map[string]any{"city": "london"})
		require.True(t, res.Success, res.Error)
		assert.Equal(t, map[string]any{"city": "london", "temp": 14.5}, res.Result)
	})

	t.Run("post_with_headers", func(t *testing.T) {
		tool := &spec.ToolSpec{
			Name:        "submit",
			Type:        spec.ToolTypeAPI,
			APIEndpoint: srv.URL + "/submit",
			APIMethod:   "POST",
			APIHeaders:  map[string]string{"X-Api-Key": "secret"},
			Parameters: []spec.ParameterSpec{
				{Name: "payload", Type: spec.ParamString, Required: true},
			},
		}

		res := d.Execute(context.Background(), tool, map[string]any{"payload": "data"})
		require.True(t, res.Success, res.Error)
		assert.Equal(t, map[string]any{"ok": true}, res.Result)
	})
}

func Test_ExecuteAPI_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such resource", http.StatusNotFound)
	}))
	defer srv.Close()

	d := dispatch.NewDispatcher()
	tool := &spec.ToolSpec{
		Name:        "lookup",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: srv.URL + "/things",
		APIMethod:   "GET",
	}

	res := d.Execute(context.Background(), tool, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "HTTPStatusError")
	assert.Contains(t, res.Error, "404")
}

func Test_ExecuteAPI_ConnectionError(t *testing.T) {
	d := dispatch.NewDispatcher()
	tool := &spec.ToolSpec{
		Name:        "unreachable",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: "http://127.0.0.1:1/nope",
		APIMethod:   "GET",
	}

	res := d.Execute(context.Background(), tool, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "ConnectionError")
}

func Test_ExecuteCode(t *testing.T) {
	d := dispatch.NewDispatcher()

	tool := &spec.ToolSpec{
		Name: "discount",
		Type: spec.ToolTypeCode,
		Code: `parameters.price * (1 - parameters.rate)`,
		Parameters: []spec.ParameterSpec{
			{Name: "price", Type: spec.ParamNumber, Required: true},
			{Name: "rate", Type: spec.ParamNumber, Default: 0.1},
		},
	}

	res := d.Execute(context.Background(), tool, map[string]any{"price": 200.0})
	require.True(t, res.Success, res.Error)
	assert.InDelta(t, 180.0, res.Result, 0.0001)
}

func Test_ExecuteCode_CompileError(t *testing.T) {
	d := dispatch.NewDispatcher()

	tool := &spec.ToolSpec{
		Name: "broken",
		Type: spec.ToolTypeCode,
		Code: `parameters.x +* 2`,
	}

	res := d.Execute(context.Background(), tool, map[string]any{"x": 1})
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "failed to compile code")
}

func Test_ExecuteCode_Timeout(t *testing.T) {
	d := dispatch.NewDispatcher(dispatch.WithCodeTimeout(time.Nanosecond))

	tool := &spec.ToolSpec{
		Name: "slow",
		Type: spec.ToolTypeCode,
		Code: `len(filter(1..1000000, # > 0))`,
	}

	res := d.Execute(context.Background(), tool, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "Timeout")
}

func Test_DispatchError(t *testing.T) {
	err := dispatch.NewError("calculator", dispatch.CategoryExecution, errors.New("division by zero"))
	assert.Equal(t, "ExecutionError: tool calculator: division by zero", err.Error())

	de, ok := dispatch.AsError(err)
	require.True(t, ok)
	assert.Equal(t, dispatch.CategoryExecution, de.Category)
	assert.Equal(t, "calculator", de.Tool)

	_, ok = dispatch.AsError(errors.New("plain"))
	assert.False(t, ok)
}

func Test_FuncRegistry(t *testing.T) {
	reg := dispatch.NewFuncRegistry()

	require.Error(t, reg.Register("", func(_ context.Context, _ map[string]any) (any, error) { return nil, nil }))
	require.Error(t, reg.Register("nilfn", nil))

	require.NoError(t, reg.Register("mytools.add", func(_ context.Context, _ map[string]any) (any, error) { return 3, nil }))
	require.NoError(t, reg.Register("sub", func(_ context.Context, _ map[string]any) (any, error) { return 1, nil }))

	_, ok := reg.Lookup("mytools", "add")
	assert.True(t, ok)
	// fallback to bare name when the module-qualified key is absent
	_, ok = reg.Lookup("othermodule", "sub")
	assert.True(t, ok)
	_, ok = reg.Lookup("", "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"mytools.add", "sub"}, reg.Names())
}
