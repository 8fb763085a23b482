package server

import (
	"fmt"
	"net/http"

	"github.com/nirb28/dsp-adk2/pkg/spec"
)

// Specification management. Changes apply to the live registry and,
// when a store is configured, are persisted to disk.

func (h *handlers) handleListTools(w http.ResponseWriter, r *http.Request) {
	names := h.registry.ToolNames()
	tools := make([]*spec.ToolSpec, 0, len(names))
	for _, name := range names {
		tools = append(tools, h.registry.Tool(name))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

func (h *handlers) handleGetTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tool := h.registry.Tool(name)
	if tool == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("tool %s not found", name))
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (h *handlers) handlePutTool(w http.ResponseWriter, r *http.Request) {
	var tool spec.ToolSpec
	if err := decodeJSON(r, &tool); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	name := r.PathValue("name")
	if tool.Name == "" {
		tool.Name = name
	}
	if tool.Name != name {
		writeError(w, http.StatusBadRequest, "tool name in body does not match URL")
		return
	}

	if err := h.registry.AddTool(&tool); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.store != nil {
		if err := h.store.SaveTool(&tool); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, &tool)
}

func (h *handlers) handleDeleteTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !h.registry.RemoveTool(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("tool %s not found", name))
		return
	}
	if h.store != nil {
		if err := h.store.DeleteTool(name); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleListAgents(w http.ResponseWriter, r *http.Request) {
	names := h.registry.AgentNames()
	agents := make([]*spec.AgentSpec, 0, len(names))
	for _, name := range names {
		agents = append(agents, h.registry.Agent(name))
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}

func (h *handlers) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	a := h.registry.Agent(name)
	if a == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %s not found", name))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) handlePutAgent(w http.ResponseWriter, r *http.Request) {
	var a spec.AgentSpec
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	name := r.PathValue("name")
	if a.Name == "" {
		a.Name = name
	}
	if a.Name != name {
		writeError(w, http.StatusBadRequest, "agent name in body does not match URL")
		return
	}

	if err := h.registry.AddAgent(&a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.store != nil {
		if err := h.store.SaveAgent(&a); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, &a)
}

func (h *handlers) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !h.registry.RemoveAgent(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("agent %s not found", name))
		return
	}
	if h.store != nil {
		if err := h.store.DeleteAgent(name); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
