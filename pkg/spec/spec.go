// Package spec defines the declarative records this engine executes:
// tool descriptions, agent descriptions, and the result envelopes
// returned from their invocations.
package spec

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ToolType selects the execution variant of a tool.
type ToolType string

const (
	// ToolTypeFunction invokes a registered native function.
	ToolTypeFunction ToolType = "function"
	// ToolTypeAPI issues an outbound HTTP request.
	ToolTypeAPI ToolType = "api"
	// ToolTypeCode evaluates an inline expression in a sandbox.
	ToolTypeCode ToolType = "code"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	ParamArray   ParamType = "array"
)

// ParameterSpec describes one parameter of a tool.
type ParameterSpec struct {
	Name        string    `json:"name" yaml:"name" validate:"required"`
	Type        ParamType `json:"type" yaml:"type" validate:"required,oneof=string number boolean object array"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []any     `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// ToolSpec is the declarative description of a callable capability.
// The variant payload fields required by Type must be present;
// Validate enforces that.
type ToolSpec struct {
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Description string          `json:"description" yaml:"description"`
	Type        ToolType        `json:"type" yaml:"type" validate:"required,oneof=function api code"`
	Parameters  []ParameterSpec `json:"parameters,omitempty" yaml:"parameters,omitempty" validate:"dive"`

	// function variant
	FunctionName string `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	ModulePath   string `json:"module_path,omitempty" yaml:"module_path,omitempty"`

	// api variant
	APIEndpoint string            `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty"`
	APIMethod   string            `json:"api_method,omitempty" yaml:"api_method,omitempty"`
	APIHeaders  map[string]string `json:"api_headers,omitempty" yaml:"api_headers,omitempty"`

	// code variant
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// LLMConfig is the model configuration of an agent. String fields may
// carry ${VAR} placeholders until the config store resolves them.
type LLMConfig struct {
	Provider    string         `json:"provider" yaml:"provider" validate:"required"`
	Model       string         `json:"model" yaml:"model" validate:"required"`
	APIKey      string         `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string         `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature float64        `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int            `json:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	Extra       map[string]any `json:"additional_params,omitempty" yaml:"additional_params,omitempty"`
}

// LLMOverride carries per-request overrides merged over an agent's LLMConfig.
type LLMOverride struct {
	Provider    *string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model       *string  `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey      *string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     *string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// Apply returns a copy of cfg with the non-nil override fields applied.
func (o *LLMOverride) Apply(cfg LLMConfig) LLMConfig {
	if o == nil {
		return cfg
	}
	if o.Provider != nil {
		cfg.Provider = *o.Provider
	}
	if o.Model != nil {
		cfg.Model = *o.Model
	}
	if o.APIKey != nil {
		cfg.APIKey = *o.APIKey
	}
	if o.BaseURL != nil {
		cfg.BaseURL = *o.BaseURL
	}
	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		cfg.MaxTokens = *o.MaxTokens
	}
	return cfg
}

// AgentSpec is the declarative description of an LLM-driven actor.
type AgentSpec struct {
	Name          string         `json:"name" yaml:"name" validate:"required"`
	Description   string         `json:"description" yaml:"description"`
	LLM           LLMConfig      `json:"llm_config" yaml:"llm_config"`
	SystemPrompt  string         `json:"system_prompt" yaml:"system_prompt" validate:"required"`
	Tools         []string       `json:"tools,omitempty" yaml:"tools,omitempty"`
	MaxIterations int            `json:"max_iterations" yaml:"max_iterations" validate:"gt=0"`
	Framework     string         `json:"framework,omitempty" yaml:"framework,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural invariants of the tool: the variant
// payload matches Type, parameter names are unique, and required
// parameters carry no default.
func (t *ToolSpec) Validate() error {
	if err := validate.Struct(t); err != nil {
		return errors.WithMessagef(err, "invalid tool %q", t.Name)
	}
	switch t.Type {
	case ToolTypeFunction:
		if t.ModulePath == "" || t.FunctionName == "" {
			return errors.Newf("tool %q: function tool requires module_path and function_name", t.Name)
		}
	case ToolTypeAPI:
		if t.APIEndpoint == "" {
			return errors.Newf("tool %q: api tool requires api_endpoint", t.Name)
		}
	case ToolTypeCode:
		if strings.TrimSpace(t.Code) == "" {
			return errors.Newf("tool %q: code tool requires code", t.Name)
		}
	}
	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if seen[p.Name] {
			return errors.Newf("tool %q: duplicate parameter %q", t.Name, p.Name)
		}
		seen[p.Name] = true
		if p.Required && p.Default != nil {
			return errors.Newf("tool %q: required parameter %q must not declare a default", t.Name, p.Name)
		}
	}
	return nil
}

// Validate checks the structural invariants of the agent. Tool name
// resolution is a registry concern, see Registry.BuildAgentTools.
func (a *AgentSpec) Validate() error {
	if err := validate.Struct(a); err != nil {
		return errors.WithMessagef(err, "invalid agent %q", a.Name)
	}
	return nil
}
