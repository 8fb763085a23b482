// Package agent runs declarative agents: a bounded loop of LLM turns
// where each turn either requests tool executions or produces the final
// answer.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/llmfactory"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/llmutils"
	"github.com/nirb28/dsp-adk2/pkg/metricskey"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/nirb28/dsp-adk2/pkg/toolschema"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "agent")

// FrameworkNative is the built-in reasoning loop. It is the default and
// currently the only framework; other names are rejected at run time.
const FrameworkNative = "native"

// Runner executes agents against a registry, an LLM factory, and a tool
// dispatcher.
type Runner struct {
	registry   *spec.Registry
	factory    llmfactory.Factory
	dispatcher *dispatch.Dispatcher
}

// NewRunner returns a Runner.
func NewRunner(registry *spec.Registry, factory llmfactory.Factory, dispatcher *dispatch.Dispatcher) *Runner {
	return &Runner{
		registry:   registry,
		factory:    factory,
		dispatcher: dispatcher,
	}
}

// RunOption configures a single agent run.
type RunOption func(*runConfig)

type runConfig struct {
	override *spec.LLMOverride
}

// WithLLMOverride substitutes LLM settings for this run only.
func WithLLMOverride(override *spec.LLMOverride) RunOption {
	return func(c *runConfig) {
		c.override = override
	}
}

// Run executes the named agent on the input. Lookup failures and
// terminal LLM failures are returned as errors; everything else is
// reported through the run record.
func (r *Runner) Run(ctx context.Context, agentName, input string, opts ...RunOption) (*spec.AgentRun, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	a := r.registry.Agent(agentName)
	if a == nil {
		return nil, errors.Newf("agent %s not found", agentName)
	}

	fw, err := lookupFramework(a.Framework)
	if err != nil {
		return nil, err
	}

	tools, err := r.registry.BuildAgentTools(a)
	if err != nil {
		return nil, err
	}

	llmCfg := cfg.override.Apply(a.LLM)
	model, err := r.factory.Model(&llmCfg)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	run := &spec.AgentRun{
		RunID:     uuid.New().String(),
		AgentName: a.Name,
	}

	defer func() {
		run.Elapsed = time.Since(started).Seconds()
		metricskey.PerfAgentRun.MeasureSince(started, a.Name)
		if run.Success {
			metricskey.StatsAgentRunsSucceeded.IncrCounter(1, a.Name)
		} else {
			metricskey.StatsAgentRunsFailed.IncrCounter(1, a.Name)
		}
	}()

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "agent_run_started",
		"agent", a.Name,
		"run_id", run.RunID,
		"model", llmCfg.Model,
		"tools", len(tools),
	)

	if err := fw(r, ctx, a, &llmCfg, model, tools, input, run); err != nil {
		run.Error = err.Error()
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "agent_run_failed",
			"agent", a.Name,
			"run_id", run.RunID,
			"err", err.Error(),
		)
		return run, err
	}
	return run, nil
}

func (r *Runner) loop(ctx context.Context, a *spec.AgentSpec, llmCfg *spec.LLMConfig, model llms.Model, tools []*spec.ToolSpec, input string, run *spec.AgentRun) error {
	toolsByName := make(map[string]*spec.ToolSpec, len(tools))
	toolNames := make([]string, 0, len(tools))
	for _, t := range tools {
		toolsByName[strings.ToLower(t.Name)] = t
		toolNames = append(toolNames, t.Name)
	}

	callOpts := []llms.CallOption{
		llms.WithModel(llmCfg.Model),
	}
	if llmCfg.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(llmCfg.Temperature))
	}
	if llmCfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(llmCfg.MaxTokens))
	}
	if len(tools) > 0 {
		prov := model.GetProviderType()
		if !prov.Supports(llms.CapabilityFunctionCalling) {
			return errors.Newf("agent %s: provider %s does not support function calling", a.Name, prov)
		}
		callOpts = append(callOpts, llms.WithTools(toolschema.Definitions(tools)))
	}

	history := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, a.SystemPrompt),
		llms.MessageFromTextParts(llms.RoleHuman, input),
	}

	modelName := model.GetName()
	for iteration := 1; iteration <= a.MaxIterations; iteration++ {
		llmStarted := time.Now()
		metricskey.StatsLLMCalls.IncrCounter(1, a.Name, modelName)

		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "llm_call",
			"run_id", run.RunID,
			"iteration", iteration,
			"model", modelName,
			"request_size", llmutils.CountMessagesContentSize(history),
		)
		resp, err := model.GenerateContent(ctx, history, callOpts...)
		metricskey.PerfLLMCall.MeasureSince(llmStarted, a.Name, modelName)
		if err != nil {
			metricskey.StatsLLMCallsFailed.IncrCounter(1, a.Name, modelName)
			return errors.WithMessagef(err, "agent %s: failed to generate content", a.Name)
		}
		if len(resp.Choices) == 0 {
			metricskey.StatsLLMCallsFailed.IncrCounter(1, a.Name, modelName)
			return llms.NewProviderError(model.GetProviderType(), llms.CauseMalformedResponse, 0,
				errors.Newf("agent %s: LLM returned no choices", a.Name))
		}

		choice := resp.Choices[0]
		if choice.Content != "" || len(choice.ToolCalls) > 0 {
			step := spec.Step{
				Type:    spec.StepReasoning,
				Content: choice.Content,
			}
			for _, tc := range choice.ToolCalls {
				step.ToolCalls = append(step.ToolCalls, tc.FunctionCall.Name)
			}
			run.Steps = append(run.Steps, step)
		}

		if len(choice.ToolCalls) == 0 {
			run.Output = choice.Content
			run.Success = true
			logger.ContextKV(ctx, xlog.DEBUG,
				"status", "agent_run_completed",
				"agent", a.Name,
				"run_id", run.RunID,
				"iterations", iteration,
				"steps", len(run.Steps),
			)
			return nil
		}

		history = append(history, llms.MessageFromToolCalls(llms.RoleAI, choice.ToolCalls...))
		for _, tc := range choice.ToolCalls {
			history = append(history, r.executeToolCall(ctx, toolsByName, toolNames, tc, run))
		}
	}

	metricskey.StatsAgentIterationLimit.IncrCounter(1, a.Name)
	return errors.Newf("agent %s: reached maximum iterations (%d) without a final answer", a.Name, a.MaxIterations)
}

// executeToolCall runs one requested tool, records the step, and
// returns the tool response message for the conversation. Failures are
// reported back to the model rather than aborting the run.
func (r *Runner) executeToolCall(ctx context.Context, toolsByName map[string]*spec.ToolSpec, toolNames []string, tc llms.ToolCall, run *spec.AgentRun) llms.Message {
	toolName := tc.FunctionCall.Name

	var args map[string]any
	if tc.FunctionCall.Arguments != "" {
		raw := llmutils.CleanJSON([]byte(tc.FunctionCall.Arguments))
		if err := ljson.Unmarshal(raw, &args); err != nil {
			run.Steps = append(run.Steps, spec.Step{
				Type:     spec.StepToolExecution,
				ToolName: toolName,
				Error:    fmt.Sprintf("invalid arguments: %s", err.Error()),
			})
			return toolResponse(tc, fmt.Sprintf("Error: invalid tool arguments: %s", err.Error()))
		}
	}

	tool := toolsByName[strings.ToLower(toolName)]
	if tool == nil {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, toolName)
		available := strings.Join(toolNames, ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"run_id", run.RunID,
			"tool", toolName,
			"available_tools", available,
		)
		run.Steps = append(run.Steps, spec.Step{
			Type:      spec.StepToolExecution,
			ToolName:  toolName,
			Arguments: args,
			Error:     "tool not found",
		})
		return toolResponse(tc, fmt.Sprintf("Error: tool `%s` not found. Available tools: %s", toolName, available))
	}

	res := r.dispatcher.Execute(ctx, tool, args)
	run.Steps = append(run.Steps, spec.Step{
		Type:      spec.StepToolExecution,
		ToolName:  tool.Name,
		Arguments: args,
		Result:    res.Result,
		Success:   res.Success,
		Error:     res.Error,
	})

	if !res.Success {
		return toolResponse(tc, "Error: "+res.Error)
	}
	return toolResponse(tc, llmutils.Stringify(res.Result))
}

func toolResponse(tc llms.ToolCall, content string) llms.Message {
	return llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
		ToolCallID: tc.ID,
		Name:       tc.FunctionCall.Name,
		Content:    content,
	})
}
