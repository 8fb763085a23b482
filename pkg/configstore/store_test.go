package configstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nirb28/dsp-adk2/pkg/configstore"
	"github.com/nirb28/dsp-adk2/pkg/envresolver"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, env map[string]string) *configstore.Store {
	t.Helper()
	s, err := configstore.NewStore(t.TempDir(), configstore.WithEnv(envresolver.Map(env)))
	require.NoError(t, err)
	return s
}

func Test_SaveLoadTool(t *testing.T) {
	s := newStore(t, nil)

	tool := &spec.ToolSpec{
		Name:        "weather",
		Description: "Look up the weather",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: "https://api.example.com/weather/{city}",
		APIMethod:   "GET",
		Parameters: []spec.ParameterSpec{
			{Name: "city", Type: spec.ParamString, Required: true},
			{Name: "units", Type: spec.ParamString, Default: "metric"},
		},
	}
	require.NoError(t, s.SaveTool(tool))

	loaded, err := s.LoadTool("weather")
	require.NoError(t, err)
	assert.Equal(t, tool, loaded)

	names, err := s.ListTools()
	require.NoError(t, err)
	assert.Equal(t, []string{"weather"}, names)

	require.NoError(t, s.DeleteTool("weather"))
	_, err = s.LoadTool("weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather not found")

	// deleting again is fine
	require.NoError(t, s.DeleteTool("weather"))
}

func Test_SaveTool_Invalid(t *testing.T) {
	s := newStore(t, nil)

	err := s.SaveTool(&spec.ToolSpec{
		Name: "nofunc",
		Type: spec.ToolTypeFunction,
	})
	require.Error(t, err)
}

func Test_LoadTool_EnvResolution(t *testing.T) {
	s := newStore(t, map[string]string{
		"API_BASE": "https://api.example.com",
		"API_KEY":  "secret-token",
	})

	require.NoError(t, s.SaveTool(&spec.ToolSpec{
		Name:        "lookup",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: "${API_BASE}/v1/lookup",
		APIMethod:   "GET",
		APIHeaders: map[string]string{
			"Authorization": "Bearer ${API_KEY}",
		},
	}))

	loaded, err := s.LoadTool("lookup")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/lookup", loaded.APIEndpoint)
	assert.Equal(t, "Bearer secret-token", loaded.APIHeaders["Authorization"])
}

func Test_LoadTool_MissingEnvVar(t *testing.T) {
	s := newStore(t, nil)

	require.NoError(t, s.SaveTool(&spec.ToolSpec{
		Name:        "lookup",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: "${UNDEFINED_BASE}/v1/lookup",
		APIMethod:   "GET",
	}))

	_, err := s.LoadTool("lookup")
	require.Error(t, err)
	assert.True(t, envresolver.IsMissingVariable(err))
	assert.Contains(t, err.Error(), "UNDEFINED_BASE")
}

func Test_SaveLoadAgent(t *testing.T) {
	s := newStore(t, map[string]string{"OPENAI_API_KEY": "sk-test"})

	a := &spec.AgentSpec{
		Name:         "math_assistant",
		SystemPrompt: "You are a math assistant.",
		LLM: spec.LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			APIKey:   "${OPENAI_API_KEY}",
		},
		Tools:         []string{"calculator"},
		MaxIterations: 5,
	}
	require.NoError(t, s.SaveAgent(a))

	loaded, err := s.LoadAgent("math_assistant")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", loaded.LLM.APIKey)
	assert.Equal(t, []string{"calculator"}, loaded.Tools)
	assert.Equal(t, 5, loaded.MaxIterations)
}

func Test_LoadRegistry(t *testing.T) {
	s := newStore(t, nil)

	require.NoError(t, s.SaveTool(&spec.ToolSpec{
		Name:         "calculator",
		Type:         spec.ToolTypeFunction,
		FunctionName: "calculator",
	}))
	require.NoError(t, s.SaveAgent(&spec.AgentSpec{
		Name:          "math_assistant",
		SystemPrompt:  "prompt",
		LLM:           spec.LLMConfig{Provider: "openai", Model: "gpt-4o"},
		Tools:         []string{"calculator"},
		MaxIterations: 3,
	}))

	reg, err := s.LoadRegistry()
	require.NoError(t, err)
	assert.NotNil(t, reg.Tool("calculator"))
	assert.NotNil(t, reg.Agent("math_assistant"))
}

func Test_LoadRegistry_BadFile(t *testing.T) {
	dir := t.TempDir()
	s, err := configstore.NewStore(dir, configstore.WithEnv(envresolver.Map(nil)))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "tools", "broken.yaml"),
		[]byte("name: broken\ntype: [not, a, scalar\n"), 0o644))

	_, err = s.LoadRegistry()
	require.Error(t, err)
}

func Test_YmlExtension(t *testing.T) {
	dir := t.TempDir()
	s, err := configstore.NewStore(dir, configstore.WithEnv(envresolver.Map(nil)))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "tools", "echo.yml"),
		[]byte("name: echo\ntype: function\nfunction_name: echo\n"), 0o644))

	names, err := s.ListTools()
	require.NoError(t, err)
	assert.Equal(t, []string{"echo"}, names)

	loaded, err := s.LoadTool("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", loaded.FunctionName)
}
