package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/effective-security/xlog"

	"github.com/nirb28/dsp-adk2/pkg/agent"
	"github.com/nirb28/dsp-adk2/pkg/configstore"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/runstore"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

type handlers struct {
	registry   *spec.Registry
	dispatcher *dispatch.Dispatcher
	runner     *agent.Runner
	store      *configstore.Store
	runs       runstore.RunStore
	version    string
}

type executeToolRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

type executeAgentRequest struct {
	AgentName   string            `json:"agent_name"`
	Input       string            `json:"input"`
	LLMOverride *spec.LLMOverride `json:"llm_override,omitempty"`
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"tools":   len(h.registry.ToolNames()),
		"agents":  len(h.registry.AgentNames()),
	})
}

func (h *handlers) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	var req executeToolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	if req.ToolName == "" {
		writeError(w, http.StatusBadRequest, "tool_name is required")
		return
	}

	tool := h.registry.Tool(req.ToolName)
	if tool == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("tool %s not found", req.ToolName))
		return
	}

	res := h.dispatcher.Execute(r.Context(), tool, req.Arguments)
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleExecuteAgent(w http.ResponseWriter, r *http.Request) {
	var req executeAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	if req.AgentName == "" {
		writeError(w, http.StatusBadRequest, "agent_name is required")
		return
	}
	if h.registry.Agent(req.AgentName) == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %s not found", req.AgentName))
		return
	}

	var opts []agent.RunOption
	if req.LLMOverride != nil {
		opts = append(opts, agent.WithLLMOverride(req.LLMOverride))
	}

	run, err := h.runner.Run(r.Context(), req.AgentName, req.Input, opts...)
	h.recordRun(r.Context(), run)
	if err != nil {
		if _, ok := llms.AsProviderError(err); ok {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if run != nil {
			// loop-level failures such as the iteration bound are part
			// of the run record
			writeJSON(w, http.StatusOK, run)
			return
		}
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// recordRun stores the run record when a run store is configured.
// History is best effort and never fails the request.
func (h *handlers) recordRun(ctx context.Context, run *spec.AgentRun) {
	if h.runs == nil || run == nil {
		return
	}
	if err := h.runs.Add(ctx, run); err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "record_run_failed",
			"agent", run.AgentName,
			"run_id", run.RunID,
			"err", err.Error(),
		)
	}
}

func (h *handlers) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	agentName := r.PathValue("agent")
	if h.registry.Agent(agentName) == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %s not found", agentName))
		return
	}
	runs, err := h.runs.List(r.Context(), agentName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*spec.AgentRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *handlers) handleResetRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	agentName := r.PathValue("agent")
	if err := h.runs.Reset(r.Context(), agentName); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
