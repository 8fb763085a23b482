package dispatch

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

// executeCode evaluates an inline expression tool. The expression sees
// the validated arguments as `parameters` and its value becomes the
// tool result. Evaluation runs in its own goroutine so a hung
// expression cannot block the dispatcher past the configured timeout.
func (d *Dispatcher) executeCode(ctx context.Context, tool *spec.ToolSpec, args map[string]any) (any, error) {
	env := map[string]any{
		"parameters": args,
	}

	program, err := expr.Compile(tool.Code, expr.Env(env))
	if err != nil {
		return nil, NewError(tool.Name, CategoryExecution, errors.Wrap(err, "failed to compile code"))
	}

	ctx, cancel := context.WithTimeout(ctx, d.codeTimeout)
	defer cancel()

	type evalResult struct {
		out any
		err error
	}
	resultChan := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChan <- evalResult{err: errors.Newf("panic: %v", r)}
			}
		}()
		out, err := expr.Run(program, env)
		resultChan <- evalResult{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(tool.Name, CategoryTimeout, errors.New("code evaluation timed out"))
		}
		return nil, NewError(tool.Name, CategoryExecution, ctx.Err())
	case res := <-resultChan:
		if res.err != nil {
			return nil, NewError(tool.Name, CategoryExecution, res.err)
		}
		return res.out, nil
	}
}
