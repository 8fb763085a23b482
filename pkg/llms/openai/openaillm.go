// Package openai adapts any OpenAI-compatible chat-completions backend
// (OpenAI, Azure OpenAI, Groq, NVIDIA, self-hosted gateways) to the
// llms.Model contract.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleTool      = "tool"
)

// LLM is an OpenAI-compatible chat model.
type LLM struct {
	client   *goopenai.Client
	model    string
	provider llms.ProviderType
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI-compatible LLM.
func New(opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)
	if o.token == "" {
		return nil, errors.New("openai: API key is not set")
	}
	if o.model == "" {
		return nil, errors.New("openai: model is not set")
	}
	cfg := goopenai.DefaultConfig(o.token)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	return &LLM{
		client:   goopenai.NewClientWithConfig(cfg),
		model:    o.model,
		provider: o.provider,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.provider
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{Model: o.model}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg, err := convertMessage(m)
		if err != nil {
			return nil, err
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    chatMsgs,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
	}
	for _, tool := range opts.Tools {
		t, err := toolFromTool(tool)
		if err != nil {
			return nil, err
		}
		req.Tools = append(req.Tools, t)
	}
	if opts.ToolChoice != nil {
		req.ToolChoice = opts.ToolChoice
	}
	if opts.JSONResponse {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, o.wrapError(err)
	}
	if len(result.Choices) == 0 {
		return nil, llms.NewProviderError(o.provider, llms.CauseMalformedResponse, 0,
			errors.New("empty response: no choices"))
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: fmt.Sprint(c.FinishReason),
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
			},
		}
		for _, tool := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: string(tool.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

func convertMessage(m llms.Message) (goopenai.ChatCompletionMessage, error) {
	msg := goopenai.ChatCompletionMessage{}
	switch m.Role {
	case llms.RoleSystem:
		msg.Role = RoleSystem
	case llms.RoleAI:
		msg.Role = RoleAssistant
	case llms.RoleHuman:
		msg.Role = RoleUser
	case llms.RoleTool:
		msg.Role = RoleTool
		if len(m.Parts) != 1 {
			return msg, errors.Newf("expected exactly one part for role %v, got %d", m.Role, len(m.Parts))
		}
		resp, ok := m.Parts[0].(llms.ToolCallResponse)
		if !ok {
			return msg, errors.Newf("expected part of type ToolCallResponse for role %v, got %T", m.Role, m.Parts[0])
		}
		msg.ToolCallID = resp.ToolCallID
		msg.Name = resp.Name
		msg.Content = resp.Content
		return msg, nil
	default:
		return msg, errors.Newf("role %v not supported", m.Role)
	}

	for _, part := range m.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			if msg.Content != "" {
				msg.Content += "\n"
			}
			msg.Content += p.Text
		case llms.ToolCall:
			msg.ToolCalls = append(msg.ToolCalls, goopenai.ToolCall{
				ID:   p.ID,
				Type: goopenai.ToolType(p.Type),
				Function: goopenai.FunctionCall{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		default:
			return msg, errors.Newf("content part %T not supported", part)
		}
	}
	return msg, nil
}

func toolFromTool(t llms.Tool) (goopenai.Tool, error) {
	if t.Type != "function" || t.Function == nil {
		return goopenai.Tool{}, errors.Newf("tool type %q not supported", t.Type)
	}
	// go through JSON so the provider sees the plain schema shape
	var params map[string]any
	if t.Function.Parameters != nil {
		bs, err := json.Marshal(t.Function.Parameters)
		if err != nil {
			return goopenai.Tool{}, errors.Wrapf(err, "failed to marshal parameters for tool %s", t.Function.Name)
		}
		if err := json.Unmarshal(bs, &params); err != nil {
			return goopenai.Tool{}, errors.Wrapf(err, "failed to unmarshal parameters for tool %s", t.Function.Name)
		}
	}
	return goopenai.Tool{
		Type: goopenai.ToolTypeFunction,
		Function: &goopenai.FunctionDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  params,
		},
	}, nil
}

func (o *LLM) wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		cause := llms.CauseMalformedResponse
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			cause = llms.CauseAuth
		case 429:
			cause = llms.CauseRateLimit
		default:
			if apiErr.HTTPStatusCode >= 500 {
				cause = llms.CauseNetwork
			}
		}
		return llms.NewProviderError(o.provider, cause, apiErr.HTTPStatusCode, err)
	}
	return llms.NewProviderError(o.provider, llms.CauseNetwork, 0, err)
}
