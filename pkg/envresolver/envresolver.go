// Package envresolver substitutes ${VAR} placeholders in declarative
// configuration trees against a process-wide environment snapshot.
package envresolver

import (
	"os"
	"regexp"

	"github.com/cockroachdb/errors"
)

// Lookup resolves a variable name to its value.
type Lookup func(name string) (string, bool)

// OS returns a Lookup backed by the process environment.
func OS() Lookup {
	return os.LookupEnv
}

// Map returns a Lookup backed by a fixed map, used in tests and for
// snapshot semantics.
func Map(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// MissingVariableError reports a ${VAR} reference with no value and no
// default. Unresolved placeholders are a hard error: passing literal
// `${API_KEY}` downstream tends to fail much later and much less clearly.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return "unresolved variable: ${" + e.Name + "}"
}

// IsMissingVariable reports whether err is a MissingVariableError.
func IsMissingVariable(err error) bool {
	var mv *MissingVariableError
	return errors.As(err, &mv)
}

// placeholder syntax: ${NAME} or ${NAME:-default}
var placeholderRE = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// Resolve walks node and substitutes every ${NAME} occurrence in string
// values from env. Maps and slices are rebuilt, never mutated in place,
// so the input stays usable as the raw form. Resolving an already
// resolved tree returns an equal tree.
func Resolve(node any, env Lookup) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := Resolve(item, env)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := Resolve(item, env)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	case string:
		return ResolveString(v, env)
	default:
		return node, nil
	}
}

// ResolveString substitutes placeholders in a single string value.
func ResolveString(s string, env Lookup) (string, error) {
	var missing *MissingVariableError
	result := placeholderRE.ReplaceAllStringFunc(s, func(match string) string {
		groups := placeholderRE.FindStringSubmatch(match)
		name := groups[1]
		if val, ok := env(name); ok {
			return val
		}
		if groups[2] != "" {
			return groups[3]
		}
		if missing == nil {
			missing = &MissingVariableError{Name: name}
		}
		return match
	})
	if missing != nil {
		return "", errors.WithStack(missing)
	}
	return result, nil
}
