// Package toolschema derives JSON-schema function definitions from
// declarative tool specs, in the shape LLM providers expect for
// function calling.
package toolschema

import (
	"github.com/invopop/jsonschema"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parameters builds the parameters schema for a tool: an object schema
// with one property per declared parameter, in declaration order.
func Parameters(t *spec.ToolSpec) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string

	for _, p := range t.Parameters {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Type == spec.ParamArray {
			prop.Items = &jsonschema.Schema{Type: "object"}
		}
		if len(p.Enum) > 0 {
			prop.Enum = p.Enum
		}
		if p.Default != nil {
			prop.Default = p.Default
		}
		props.Set(p.Name, prop)
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// Definition builds the llms.Tool function definition for a tool.
func Definition(t *spec.ToolSpec) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  Parameters(t),
		},
	}
}

// Definitions builds function definitions for a tool list, preserving
// order.
func Definitions(tools []*spec.ToolSpec) []llms.Tool {
	defs := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, Definition(t))
	}
	return defs
}
