// Package configstore persists tool and agent specifications as YAML
// files, one file per record, with environment variable substitution
// applied at load time.
package configstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/envresolver"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "configstore")

const (
	toolsSubdir  = "tools"
	agentsSubdir = "agents"
)

// Store reads and writes specification files under a root directory:
// <root>/tools/<name>.yaml and <root>/agents/<name>.yaml.
type Store struct {
	toolsDir  string
	agentsDir string
	env       envresolver.Lookup
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEnv overrides the variable lookup used during load.
func WithEnv(env envresolver.Lookup) StoreOption {
	return func(s *Store) {
		s.env = env
	}
}

// NewStore creates a Store rooted at dir, creating the subdirectories
// if needed.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		toolsDir:  filepath.Join(dir, toolsSubdir),
		agentsDir: filepath.Join(dir, agentsSubdir),
		env:       envresolver.OS(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, sub := range []string{s.toolsDir, s.agentsDir} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory %s", sub)
		}
	}
	return s, nil
}

// LoadTool reads a tool specification by name.
func (s *Store) LoadTool(name string) (*spec.ToolSpec, error) {
	var t spec.ToolSpec
	if err := s.load(findPath(s.toolsDir, name), &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid tool %s", name)
	}
	return &t, nil
}

// LoadAgent reads an agent specification by name.
func (s *Store) LoadAgent(name string) (*spec.AgentSpec, error) {
	var a spec.AgentSpec
	if err := s.load(findPath(s.agentsDir, name), &a); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid agent %s", name)
	}
	return &a, nil
}

// SaveTool writes the tool specification. Placeholders are stored
// verbatim; resolution happens on load.
func (s *Store) SaveTool(t *spec.ToolSpec) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return save(filepath.Join(s.toolsDir, t.Name+".yaml"), t)
}

// SaveAgent writes the agent specification.
func (s *Store) SaveAgent(a *spec.AgentSpec) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return save(filepath.Join(s.agentsDir, a.Name+".yaml"), a)
}

// DeleteTool removes a tool file. It is not an error if the file does
// not exist.
func (s *Store) DeleteTool(name string) error {
	return remove(filepath.Join(s.toolsDir, name+".yaml"))
}

// DeleteAgent removes an agent file.
func (s *Store) DeleteAgent(name string) error {
	return remove(filepath.Join(s.agentsDir, name+".yaml"))
}

// ListTools returns the names of all stored tools, sorted.
func (s *Store) ListTools() ([]string, error) {
	return list(s.toolsDir)
}

// ListAgents returns the names of all stored agents, sorted.
func (s *Store) ListAgents() ([]string, error) {
	return list(s.agentsDir)
}

// LoadRegistry loads every stored tool and agent into a fresh registry.
// A single malformed file fails the whole load so a bad deploy is
// caught at startup rather than at call time.
func (s *Store) LoadRegistry() (*spec.Registry, error) {
	reg := spec.NewRegistry()

	toolNames, err := s.ListTools()
	if err != nil {
		return nil, err
	}
	for _, name := range toolNames {
		t, err := s.LoadTool(name)
		if err != nil {
			return nil, err
		}
		if err := reg.AddTool(t); err != nil {
			return nil, err
		}
	}

	agentNames, err := s.ListAgents()
	if err != nil {
		return nil, err
	}
	for _, name := range agentNames {
		a, err := s.LoadAgent(name)
		if err != nil {
			return nil, err
		}
		if err := reg.AddAgent(a); err != nil {
			return nil, err
		}
	}

	logger.KV(xlog.INFO,
		"status", "registry_loaded",
		"tools", len(toolNames),
		"agents", len(agentNames),
	)
	return reg, nil
}

// load reads YAML, substitutes ${VAR} placeholders against the
// environment, and decodes the resolved tree into out.
func (s *Store) load(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("%s not found", specName(path))
		}
		return errors.Wrapf(err, "failed to read %s", path)
	}

	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	resolved, err := envresolver.Resolve(tree, s.env)
	if err != nil {
		return errors.WithMessagef(err, "failed to resolve %s", path)
	}

	bs, err := yaml.Marshal(resolved)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	if err := yaml.Unmarshal(bs, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

func save(path string, v any) error {
	bs, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode spec")
	}
	if err := os.WriteFile(path, bs, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", path)
	}
	return nil
}

func list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	sort.Strings(names)
	return names, nil
}

// findPath prefers name.yaml but falls back to name.yml.
func findPath(dir, name string) string {
	path := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	alt := filepath.Join(dir, name+".yml")
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return path
}

func specName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
