package toolregistry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// Registry is the tool registry consumed by the agent turn loop. It
// satisfies the external interface of §6: Definitions() and Execute().
type Registry struct {
	mu    sync.RWMutex
	cwd   string
	tools map[string]Tool
}

// NewRegistry creates a registry rooted at cwd, which is passed to every
// tool execution as the base for relative paths.
func NewRegistry(cwd string) *Registry {
	return &Registry{cwd: cwd, tools: make(map[string]Tool)}
}

// Register adds a tool, keyed case-insensitively by name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[strings.ToLower(t.Name())] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(name)]
	return t, ok
}

// Definitions returns the schema list used to build a model request.
func (r *Registry) Definitions() []modelclient.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]modelclient.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, toSchema(t))
	}
	return out
}

// Execute runs a tool by name. A missing tool yields the not-found text
// with is_error=true, as required by the registry contract.
func (r *Registry) Execute(ctx context.Context, name string, input []byte) Result {
	t, ok := r.Get(name)
	if !ok {
		return ErrorResult(fmt.Sprintf("Tool not found: %s", name))
	}

	params, err := message.ParseToolInput(input)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Error parsing tool input: %v", err))
	}

	return t.Execute(ctx, params, r.cwd)
}

// New builds the standard registry: file tools, search tools, bash.
func New(cwd string) *Registry {
	r := NewRegistry(cwd)
	r.Register(&ReadTool{})
	r.Register(&WriteTool{})
	r.Register(&EditTool{})
	r.Register(&GlobTool{})
	r.Register(&GrepTool{})
	r.Register(&BashTool{})
	return r
}
