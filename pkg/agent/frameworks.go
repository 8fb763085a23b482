package agent

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

// Framework is one reasoning-loop implementation. An agent selects its
// framework by name; the empty name means FrameworkNative.
type Framework func(r *Runner, ctx context.Context, a *spec.AgentSpec, llmCfg *spec.LLMConfig, model llms.Model, tools []*spec.ToolSpec, input string, run *spec.AgentRun) error

var (
	frameworksMu sync.RWMutex
	frameworks   = map[string]Framework{
		FrameworkNative: (*Runner).loop,
	}
)

// RegisterFramework adds a loop implementation under the given name,
// replacing any previous registration.
func RegisterFramework(name string, fw Framework) error {
	if name == "" {
		return errors.New("framework name is required")
	}
	if fw == nil {
		return errors.Newf("framework %s: nil implementation", name)
	}
	frameworksMu.Lock()
	frameworks[strings.ToLower(name)] = fw
	frameworksMu.Unlock()
	return nil
}

// FrameworkNames returns the registered framework names, sorted.
func FrameworkNames() []string {
	frameworksMu.RLock()
	names := make([]string, 0, len(frameworks))
	for name := range frameworks {
		names = append(names, name)
	}
	frameworksMu.RUnlock()
	sort.Strings(names)
	return names
}

func lookupFramework(name string) (Framework, error) {
	if name == "" {
		name = FrameworkNative
	}
	frameworksMu.RLock()
	fw := frameworks[strings.ToLower(name)]
	frameworksMu.RUnlock()
	if fw == nil {
		return nil, errors.Newf("unsupported framework: %s", name)
	}
	return fw, nil
}
