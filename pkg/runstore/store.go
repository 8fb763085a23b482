// Package runstore keeps a bounded history of agent run records, per
// agent, so recent runs can be inspected after the response has been
// returned.
package runstore

import (
	"context"

	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "runstore")

// MaxRunsPerAgent caps the history kept per agent. Older runs are
// evicted first.
const MaxRunsPerAgent = 50

// RunStore records completed agent runs.
type RunStore interface {
	// Add records a completed run for run.AgentName.
	Add(ctx context.Context, run *spec.AgentRun) error
	// List returns the recorded runs for the agent, most recent first.
	List(ctx context.Context, agentName string) ([]*spec.AgentRun, error)
	// Reset drops the recorded history for the agent.
	Reset(ctx context.Context, agentName string) error
}
