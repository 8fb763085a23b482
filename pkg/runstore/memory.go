package runstore

import (
	"context"
	"strings"
	"sync"

	"github.com/nirb28/dsp-adk2/pkg/spec"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]*spec.AgentRun
}

// NewMemoryStore returns a RunStore backed by process memory.
func NewMemoryStore() RunStore {
	return &inMemory{}
}

func (m *inMemory) Add(_ context.Context, run *spec.AgentRun) error {
	key := strings.ToLower(run.AgentName)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]*spec.AgentRun)
	}
	runs := append(m.storage[key], run)
	if len(runs) > MaxRunsPerAgent {
		runs = runs[len(runs)-MaxRunsPerAgent:]
	}
	m.storage[key] = runs
	return nil
}

func (m *inMemory) List(_ context.Context, agentName string) ([]*spec.AgentRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := m.storage[strings.ToLower(agentName)]
	// most recent first
	out := make([]*spec.AgentRun, len(runs))
	for i, r := range runs {
		out[len(runs)-1-i] = r
	}
	return out, nil
}

func (m *inMemory) Reset(_ context.Context, agentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, strings.ToLower(agentName))
	}
	return nil
}
