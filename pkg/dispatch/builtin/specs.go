package builtin

import "github.com/nirb28/dsp-adk2/pkg/spec"

// ModulePath is the module key declared by the builtin tool
// specifications. The functions are registered under their bare names,
// which FuncRegistry.Lookup resolves as a fallback.
const ModulePath = "builtin"

// Specs returns tool specifications for the builtin functions, ready to
// be added to a registry.
func Specs() []*spec.ToolSpec {
	textParam := []spec.ParameterSpec{
		{Name: "text", Type: spec.ParamString, Description: "Input text", Required: true},
	}
	return []*spec.ToolSpec{
		{
			Name:         "calculator",
			Description:  "Evaluate a math expression and return the numeric result",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "calculator",
			Parameters: []spec.ParameterSpec{
				{Name: "expression", Type: spec.ParamString, Description: "Math expression to evaluate, e.g. '10 * 5 + 2'", Required: true},
			},
		},
		{
			Name:         "text_length",
			Description:  "Return the number of characters in the text",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "text_length",
			Parameters:   textParam,
		},
		{
			Name:         "uppercase",
			Description:  "Convert text to upper case",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "uppercase",
			Parameters:   textParam,
		},
		{
			Name:         "lowercase",
			Description:  "Convert text to lower case",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "lowercase",
			Parameters:   textParam,
		},
		{
			Name:         "reverse",
			Description:  "Reverse the text",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "reverse",
			Parameters:   textParam,
		},
		{
			Name:         "http_get",
			Description:  "Fetch a URL with HTTP GET and return the response body",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "http_get",
			Parameters: []spec.ParameterSpec{
				{Name: "url", Type: spec.ParamString, Description: "URL to fetch", Required: true},
			},
		},
		{
			Name:         "http_post",
			Description:  "Post JSON data to a URL and return the response body",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "http_post",
			Parameters: []spec.ParameterSpec{
				{Name: "url", Type: spec.ParamString, Description: "URL to post to", Required: true},
				{Name: "data", Type: spec.ParamObject, Description: "JSON body", Required: false},
			},
		},
		{
			Name:         "json_parse",
			Description:  "Parse a JSON string into a structured value",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "json_parse",
			Parameters: []spec.ParameterSpec{
				{Name: "json_string", Type: spec.ParamString, Description: "JSON text to parse", Required: true},
			},
		},
		{
			Name:         "json_stringify",
			Description:  "Encode a value as a JSON string",
			Type:         spec.ToolTypeFunction,
			ModulePath:   ModulePath,
			FunctionName: "json_stringify",
			Parameters: []spec.ParameterSpec{
				{Name: "value", Type: spec.ParamObject, Description: "Value to encode", Required: true},
			},
		},
	}
}
