// Package validate checks caller-supplied arguments against a tool's
// declared parameter list before dispatch.
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

// ValidationError reports a missing or mis-typed argument. Param names
// the offending parameter so the caller (or the model, when surfaced
// inside an agent run) can correct it.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Arguments validates args against params and returns the effective
// argument mapping: declared defaults injected for absent optional
// parameters, unknown keys passed through unchanged. The input map is
// not mutated.
func Arguments(params []spec.ParameterSpec, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args)+len(params))
	for k, v := range args {
		out[k] = v
	}

	for _, p := range params {
		val, present := out[p.Name]
		if !present {
			if p.Required {
				return nil, errors.WithStack(&ValidationError{
					Param:  p.Name,
					Reason: "required parameter is missing",
				})
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		if val == nil && p.Required {
			return nil, errors.WithStack(&ValidationError{
				Param:  p.Name,
				Reason: "required parameter must not be null",
			})
		}
		if !compatible(p.Type, val) {
			return nil, errors.WithStack(&ValidationError{
				Param:  p.Name,
				Reason: fmt.Sprintf("expected %s, got %T", p.Type, val),
			})
		}
		if len(p.Enum) > 0 && !enumContains(p.Enum, val) {
			return nil, errors.WithStack(&ValidationError{
				Param:  p.Name,
				Reason: fmt.Sprintf("value %v is not one of the allowed values", val),
			})
		}
	}
	return out, nil
}

// compatible reports whether the runtime value matches the declared
// type. Numbers accept any numeric kind, strings any textual value,
// object and array any structured value of the right shape.
func compatible(t spec.ParamType, v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case spec.ParamString:
		_, ok := v.(string)
		return ok
	case spec.ParamNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
			return true
		}
		return false
	case spec.ParamBoolean:
		_, ok := v.(bool)
		return ok
	case spec.ParamObject:
		return reflect.ValueOf(v).Kind() == reflect.Map
	case spec.ParamArray:
		k := reflect.ValueOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	}
	return false
}

func enumContains(enum []any, v any) bool {
	for _, e := range enum {
		if reflect.DeepEqual(e, v) {
			return true
		}
		// JSON decoding yields float64 for every number; compare
		// numerics by value so enum: [1, 2] matches 2.0.
		if ef, ok := asFloat(e); ok {
			if vf, ok := asFloat(v); ok && ef == vf {
				return true
			}
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
