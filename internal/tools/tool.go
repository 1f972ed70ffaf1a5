package tools

import (
	"context"
	"sort"
	"sync"
)

// Tool defines the interface for every whitelisted capability a plan can invoke.
// Implementations must be deterministic: the same input always yields the same output.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)
}

// Func is the plain function form of a tool.
type Func func(ctx context.Context, input map[string]any) (map[string]any, error)

type funcTool struct {
	name        string
	description string
	fn          Func
}

func (f *funcTool) Name() string        { return f.name }
func (f *funcTool) Description() string { return f.description }

func (f *funcTool) Parameters() map[string]any {
	return map[string]any{"type": "object"}
}

func (f *funcTool) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	return f.fn(ctx, input)
}

// Registry manages the set of available tools.
// It is written during setup and only read once plans start executing.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register binds t under t.Name(). A later registration under the same name replaces
// the earlier one; use Has first if that must not happen.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// RegisterFunc binds fn under name.
func (r *Registry) RegisterFunc(name, description string, fn Func) {
	r.Register(&funcTool{name: name, description: description, fn: fn})
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered tools sorted by name.
func (r *Registry) All() []Tool {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	toolList := make([]Tool, 0, len(names))
	for _, name := range names {
		toolList = append(toolList, r.tools[name])
	}
	return toolList
}
