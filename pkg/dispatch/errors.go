package dispatch

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Category classifies a tool execution failure.
type Category string

const (
	// CategoryConnection is a failure to reach the tool endpoint.
	CategoryConnection Category = "ConnectionError"
	// CategoryTimeout is a deadline exceeded while calling the tool.
	CategoryTimeout Category = "Timeout"
	// CategoryHTTPStatus is a non-2xx response from an API tool.
	CategoryHTTPStatus Category = "HTTPStatusError"
	// CategoryExecution is a failure inside the tool itself.
	CategoryExecution Category = "ExecutionError"
	// CategoryNotFound is a reference to an unregistered function.
	CategoryNotFound Category = "NotFound"
)

// Error is a categorized tool execution failure.
type Error struct {
	Tool     string
	Category Category
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: tool %s", e.Category, e.Tool)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns a categorized dispatch error with a stack.
func NewError(tool string, category Category, err error) error {
	return errors.WithStack(&Error{
		Tool:     tool,
		Category: category,
		Err:      err,
	})
}

// AsError extracts a dispatch Error from the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
