package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// NativeFunc is a Go function callable as a tool. Arguments arrive
// validated, with defaults applied.
type NativeFunc func(ctx context.Context, args map[string]any) (any, error)

// FuncRegistry maps function tool references to native Go functions.
// A tool with a module path resolves as "<module_path>.<function_name>",
// otherwise by function name alone.
type FuncRegistry struct {
	lock  sync.RWMutex
	funcs map[string]NativeFunc
}

// NewFuncRegistry returns an empty function registry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{
		funcs: make(map[string]NativeFunc),
	}
}

// Register binds a name to a native function, replacing any previous
// binding.
func (r *FuncRegistry) Register(name string, fn NativeFunc) error {
	if name == "" {
		return errors.New("function name is required")
	}
	if fn == nil {
		return errors.Newf("function %s is nil", name)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.funcs[name] = fn
	return nil
}

// Lookup resolves a function reference.
func (r *FuncRegistry) Lookup(modulePath, name string) (NativeFunc, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	fn, ok := r.funcs[funcKey(modulePath, name)]
	if !ok && modulePath != "" {
		fn, ok = r.funcs[name]
	}
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *FuncRegistry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func funcKey(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}
