package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/rahul/compileagent/internal/observability"
	"github.com/rahul/compileagent/internal/plan"
	"github.com/rahul/compileagent/internal/tools"
)

// ToolLookup is the read-only view of the tool registry the runtime needs.
type ToolLookup interface {
	Get(name string) (tools.Tool, bool)
}

// LogEntry records one executed node.
type LogEntry struct {
	Node   string         `json:"node" yaml:"node"`
	Tool   string         `json:"tool" yaml:"tool"`
	Input  map[string]any `json:"input" yaml:"input"`
	Output map[string]any `json:"output" yaml:"output"`
}

// Result is the outcome of a complete run: every node's output keyed by node id,
// plus the log in execution order.
type Result struct {
	Context map[string]map[string]any `json:"result" yaml:"result"`
	Logs    []LogEntry                `json:"logs" yaml:"logs"`
}

// Runtime executes plans one node at a time, in plan order.
type Runtime struct {
	tools  ToolLookup
	logger *observability.Logger
}

type RuntimeOption func(*Runtime)

func WithRuntimeLogger(l *observability.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = l }
}

func NewRuntime(lookup ToolLookup, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		tools:  lookup,
		logger: observability.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type runIDKey struct{}

// WithRunID tags ctx so runtime log events can be correlated with a pipeline run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func runIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Run executes p. Given the same plan and deterministic tools it always produces
// the same Result. Any failure aborts the run and no Result is returned; the
// *ExecutionError carries the log up to the failing node.
func (r *Runtime) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("run: nil plan")
	}

	runID := runIDFrom(ctx)
	execCtx := make(map[string]map[string]any, p.Len())
	logs := make([]LogEntry, 0, p.Len())

	abort := func(node plan.Node, err error) (*Result, error) {
		return nil, &ExecutionError{NodeID: node.ID, Completed: logs, Err: err}
	}

	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return abort(node, err)
		}

		input, err := resolveInputs(node, execCtx)
		if err != nil {
			return abort(node, err)
		}

		tool, ok := r.tools.Get(node.Tool)
		if !ok {
			return abort(node, &ToolNotFoundError{NodeID: node.ID, Tool: node.Tool})
		}

		r.logger.LogToolCall(runID, node.ID, node.Tool, input)
		output, err := tool.Execute(ctx, input)
		if err != nil {
			return abort(node, &ToolError{NodeID: node.ID, Tool: node.Tool, Err: err})
		}
		if output == nil {
			output = map[string]any{}
		}
		r.logger.LogToolResult(runID, node.ID, node.Tool, output)

		execCtx[node.ID] = output
		logs = append(logs, LogEntry{
			Node:   node.ID,
			Tool:   node.Tool,
			Input:  input,
			Output: output,
		})
	}

	return &Result{Context: execCtx, Logs: logs}, nil
}

// resolveInputs replaces references with values from earlier outputs. Keys are
// visited in sorted order so the reported failure is stable.
func resolveInputs(node plan.Node, execCtx map[string]map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(node.Input))
	for k := range node.Input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resolved := make(map[string]any, len(node.Input))
	for _, k := range keys {
		v := node.Input[k]
		ref, isRef, err := plan.ParseRef(v)
		if !isRef {
			resolved[k] = v
			continue
		}
		if err != nil {
			return nil, &ReferenceResolutionError{NodeID: node.ID, Key: k, Ref: fmt.Sprint(v), Reason: err.Error()}
		}

		out, ok := execCtx[ref.Node]
		if !ok {
			return nil, &ReferenceResolutionError{NodeID: node.ID, Key: k, Ref: ref.String(), Reason: fmt.Sprintf("node %q has not executed", ref.Node)}
		}
		val, ok := out[ref.Field]
		if !ok {
			return nil, &ReferenceResolutionError{NodeID: node.ID, Key: k, Ref: ref.String(), Reason: fmt.Sprintf("node %q has no output field %q", ref.Node, ref.Field)}
		}
		resolved[k] = val
	}
	return resolved, nil
}
