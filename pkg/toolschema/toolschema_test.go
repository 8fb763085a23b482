package toolschema_test

import (
	"encoding/json"
	"testing"

	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/nirb28/dsp-adk2/pkg/toolschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parameters(t *testing.T) {
	tool := &spec.ToolSpec{
		Name:        "get_weather",
		Description: "Get current weather for a city",
		Type:        spec.ToolTypeAPI,
		APIEndpoint: "https://api.example.com/weather",
		Parameters: []spec.ParameterSpec{
			{Name: "city", Type: spec.ParamString, Description: "City name", Required: true},
			{Name: "unit", Type: spec.ParamString, Enum: []any{"celsius", "fahrenheit"}, Default: "celsius"},
			{Name: "days", Type: spec.ParamNumber},
			{Name: "alerts", Type: spec.ParamArray},
		},
	}

	sc := toolschema.Parameters(tool)
	assert.Equal(t, "object", sc.Type)
	assert.Equal(t, []string{"city"}, sc.Required)

	// declaration order is preserved
	var order []string
	for pair := sc.Properties.Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	assert.Equal(t, []string{"city", "unit", "days", "alerts"}, order)

	city, ok := sc.Properties.Get("city")
	require.True(t, ok)
	assert.Equal(t, "string", city.Type)
	assert.Equal(t, "City name", city.Description)

	unit, ok := sc.Properties.Get("unit")
	require.True(t, ok)
	assert.Equal(t, []any{"celsius", "fahrenheit"}, unit.Enum)
	assert.Equal(t, "celsius", unit.Default)

	alerts, ok := sc.Properties.Get("alerts")
	require.True(t, ok)
	require.NotNil(t, alerts.Items)
	assert.Equal(t, "object", alerts.Items.Type)
}

func Test_Definition_Marshal(t *testing.T) {
	tool := &spec.ToolSpec{
		Name:         "calculator",
		Description:  "Evaluate a mathematical expression",
		Type:         spec.ToolTypeFunction,
		ModulePath:   "builtin",
		FunctionName: "calculator",
		Parameters: []spec.ParameterSpec{
			{Name: "expression", Type: spec.ParamString, Description: "Expression to evaluate", Required: true},
		},
	}

	def := toolschema.Definition(tool)
	assert.Equal(t, "function", def.Type)
	require.NotNil(t, def.Function)
	assert.Equal(t, "calculator", def.Function.Name)

	bs, err := json.Marshal(def.Function.Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"expression": {"type": "string", "description": "Expression to evaluate"}
		},
		"required": ["expression"]
	}`, string(bs))
}
