package builtin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/dispatch/builtin"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Register(t *testing.T) {
	reg := dispatch.NewFuncRegistry()
	require.NoError(t, builtin.Register(reg))

	for _, name := range []string{
		"calculator", "text_length", "uppercase", "lowercase", "reverse",
		"http_get", "http_post", "json_parse", "json_stringify",
	} {
		_, ok := reg.Lookup("", name)
		assert.True(t, ok, "missing builtin: %s", name)
	}
}

func Test_Specs(t *testing.T) {
	reg := spec.NewRegistry()
	funcs := dispatch.NewFuncRegistry()
	require.NoError(t, builtin.Register(funcs))

	for _, ts := range builtin.Specs() {
		require.NoError(t, ts.Validate(), ts.Name)
		require.NoError(t, reg.AddTool(ts), ts.Name)

		// every spec resolves to a registered function by its own
		// module path and function name
		assert.Equal(t, builtin.ModulePath, ts.ModulePath, ts.Name)
		_, ok := funcs.Lookup(ts.ModulePath, ts.FunctionName)
		assert.True(t, ok, "unresolved builtin: %s", ts.Name)
	}
	assert.Len(t, reg.ToolNames(), len(builtin.Specs()))
}

func Test_Specs_Execute(t *testing.T) {
	reg := spec.NewRegistry()
	for _, ts := range builtin.Specs() {
		require.NoError(t, reg.AddTool(ts))
	}

	d := dispatch.NewDispatcher()
	require.NoError(t, builtin.Register(d.Funcs()))

	res := d.Execute(context.Background(), reg.Tool("calculator"), map[string]any{
		"expression": "10 * 5 + 2",
	})
	require.True(t, res.Success, res.Error)
	assert.EqualValues(t, 52, res.Result)
}

func Test_Calculator(t *testing.T) {
	ctx := context.Background()

	out, err := builtin.Calculator(ctx, map[string]any{"expression": "10 * 5 + 2"})
	require.NoError(t, err)
	assert.EqualValues(t, 52, out)

	out, err = builtin.Calculator(ctx, map[string]any{"expression": "(25 + 17) / 2"})
	require.NoError(t, err)
	assert.EqualValues(t, 21, out)

	_, err = builtin.Calculator(ctx, map[string]any{"expression": "1 +* 2"})
	require.Error(t, err)

	_, err = builtin.Calculator(ctx, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required argument")
}

func Test_TextTools(t *testing.T) {
	ctx := context.Background()

	out, err := builtin.TextLength(ctx, map[string]any{"text": "héllo"})
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	out, err = builtin.Uppercase(ctx, map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", out)

	out, err = builtin.Lowercase(ctx, map[string]any{"text": "HeLLo"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = builtin.Reverse(ctx, map[string]any{"text": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "cba", out)

	_, err = builtin.Uppercase(ctx, map[string]any{"text": 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}

func Test_JSONTools(t *testing.T) {
	ctx := context.Background()

	out, err := builtin.JSONParse(ctx, map[string]any{"json_string": `{"a": [1, 2]}`})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, out)

	_, err = builtin.JSONParse(ctx, map[string]any{"json_string": `{broken`})
	require.Error(t, err)

	out, err = builtin.JSONStringify(ctx, map[string]any{"value": map[string]any{"b": true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b": true}`, out.(string))
}

func Test_HTTPTools(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"pong": true}`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`created`))
		}
	}))
	defer srv.Close()

	out, err := builtin.HTTPGet(ctx, map[string]any{"url": srv.URL + "/ping"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pong": true}, out)

	out, err = builtin.HTTPPost(ctx, map[string]any{
		"url":  srv.URL + "/items",
		"data": map[string]any{"name": "widget"},
	})
	require.NoError(t, err)
	assert.Equal(t, "created", out)

	_, err = builtin.HTTPGet(ctx, map[string]any{"url": "http://127.0.0.1:1/nope"})
	require.Error(t, err)
}
