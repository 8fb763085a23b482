package anthropic

import (
	"net/http"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestNew(t *testing.T) {
	t.Setenv(TokenEnvVarName, "")

	tests := []struct {
		name        string
		opts        []Option
		wantErr     bool
		errContains string
	}{
		{
			name:        "missing token",
			opts:        []Option{WithModel("claude-sonnet-4-5")},
			wantErr:     true,
			errContains: "missing API key",
		},
		{
			name:        "missing model",
			opts:        []Option{WithToken("fake-token")},
			wantErr:     true,
			errContains: "model is required",
		},
		{
			name: "valid configuration",
			opts: []Option{
				WithToken("fake-token"),
				WithModel("claude-sonnet-4-5"),
			},
		},
		{
			name: "with custom base URL and client",
			opts: []Option{
				WithToken("fake-token"),
				WithModel("claude-sonnet-4-5"),
				WithBaseURL("https://custom.anthropic.com"),
				WithHTTPClient(&http.Client{}),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			llm, err := New(tc.opts...)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, llms.ProviderAnthropic, llm.GetProviderType())
			assert.Equal(t, "claude-sonnet-4-5", llm.GetName())
		})
	}
}

func TestProcessMessages(t *testing.T) {
	t.Parallel()

	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "system-1"),
		llms.MessageFromTextParts(llms.RoleSystem, "system-2"),
		llms.MessageFromTextParts(llms.RoleHuman, "Calculate 25 + 17"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:   "toolu_01",
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      "calculator",
				Arguments: `{"expression": "25 + 17"}`,
			},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "toolu_01",
			Name:       "calculator",
			Content:    "42",
		}),
	}

	chatMessages, systemPrompt, err := processMessages(messages)
	require.NoError(t, err)

	assert.Equal(t, "system-1\nsystem-2", systemPrompt)
	require.Len(t, chatMessages, 3)
	assert.Equal(t, "user", string(chatMessages[0].Role))
	assert.Equal(t, "assistant", string(chatMessages[1].Role))
	// tool results go back as user messages
	assert.Equal(t, "user", string(chatMessages[2].Role))
}

func TestProcessMessages_InvalidToolArguments(t *testing.T) {
	t.Parallel()

	_, _, err := processMessages([]llms.Message{
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:   "toolu_02",
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      "calculator",
				Arguments: `{not json`,
			},
		}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal tool call arguments")
}

func TestToTools(t *testing.T) {
	t.Parallel()

	assert.Nil(t, toTools(nil))

	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("expression", &jsonschema.Schema{
		Type:        "string",
		Description: "Math expression to evaluate",
	})

	sdkTools := toTools([]llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "calculator",
				Description: "Evaluate a math expression",
				Parameters: &jsonschema.Schema{
					Type:       "object",
					Properties: props,
					Required:   []string{"expression"},
				},
			},
		},
	})
	require.Len(t, sdkTools, 1)
	require.NotNil(t, sdkTools[0].OfTool)
	assert.Equal(t, "calculator", sdkTools[0].OfTool.Name)
	assert.Equal(t, []string{"expression"}, sdkTools[0].OfTool.InputSchema.Required)
	assert.Contains(t, sdkTools[0].OfTool.InputSchema.Properties, "expression")
}
