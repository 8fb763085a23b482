package spec

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry holds the process-wide tool and agent specs. It is populated
// by the configuration store before requests begin and read-mostly
// afterwards; updates replace whole entries under the lock so a running
// execution keeps the snapshot it started with.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*ToolSpec
	agents map[string]*AgentSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]*ToolSpec),
		agents: make(map[string]*AgentSpec),
	}
}

// AddTool validates and registers a tool. An existing tool with the
// same name is replaced.
func (r *Registry) AddTool(t *ToolSpec) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.tools[strings.ToLower(t.Name)] = t
	r.mu.Unlock()
	return nil
}

// AddAgent validates and registers an agent.
func (r *Registry) AddAgent(a *AgentSpec) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.agents[strings.ToLower(a.Name)] = a
	r.mu.Unlock()
	return nil
}

// Tool returns the named tool, or nil when unknown. Lookup is
// case-insensitive, matching how models echo tool names back.
func (r *Registry) Tool(name string) *ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[strings.ToLower(name)]
}

// Agent returns the named agent, or nil when unknown.
func (r *Registry) Agent(name string) *AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[strings.ToLower(name)]
}

// RemoveTool deletes a tool by name, reporting whether it existed.
func (r *Registry) RemoveTool(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	_, ok := r.tools[key]
	delete(r.tools, key)
	return ok
}

// RemoveAgent deletes an agent by name, reporting whether it existed.
func (r *Registry) RemoveAgent(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(name)
	_, ok := r.agents[key]
	delete(r.agents, key)
	return ok
}

// ToolNames returns the registered tool names sorted.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// AgentNames returns the registered agent names sorted.
func (r *Registry) AgentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for _, a := range r.agents {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// BuildAgentTools resolves the agent's tool list against the registry.
// Every referenced name must exist; this is the agent-build-time check.
func (r *Registry) BuildAgentTools(a *AgentSpec) ([]*ToolSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*ToolSpec, 0, len(a.Tools))
	for _, name := range a.Tools {
		t := r.tools[strings.ToLower(name)]
		if t == nil {
			return nil, errors.Newf("agent %q references unknown tool %q", a.Name, name)
		}
		list = append(list, t)
	}
	return list, nil
}
