package spec

// ExecutionResult is the envelope returned from one tool execution.
// Result is opaque to the engine. Elapsed is in seconds, matching the
// wire contract of the request API.
type ExecutionResult struct {
	ToolName string  `json:"tool_name"`
	Success  bool    `json:"success"`
	Result   any     `json:"result"`
	Error    string  `json:"error,omitempty"`
	Elapsed  float64 `json:"execution_time"`
}

// StepType discriminates the two kinds of agent run steps.
type StepType string

const (
	StepReasoning     StepType = "reasoning"
	StepToolExecution StepType = "tool_execution"
)

// Step is one recorded unit of an agent run: either a reasoning message
// or a tool execution with its outcome.
type Step struct {
	Type StepType `json:"type"`

	// reasoning
	Content   string   `json:"content,omitempty"`
	ToolCalls []string `json:"tool_calls,omitempty"`

	// tool_execution
	ToolName  string         `json:"tool_name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
}

// AgentRun is the full record of one agent invocation. It is returned
// to the caller and optionally recorded in a run store.
type AgentRun struct {
	RunID     string  `json:"run_id"`
	AgentName string  `json:"agent_name"`
	Success   bool    `json:"success"`
	Output    string  `json:"output"`
	Steps     []Step  `json:"steps"`
	Error     string  `json:"error,omitempty"`
	Elapsed   float64 `json:"execution_time"`
}
