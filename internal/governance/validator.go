package governance

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rahul/compileagent/internal/plan"
)

// ToolLookup is the read-only view of the tool registry the validator needs.
type ToolLookup interface {
	Has(name string) bool
}

// Validator statically checks a plan before anything executes. It never invokes a tool.
type Validator struct {
	tools  ToolLookup
	policy PolicyEngine
	strict bool
	logger *zap.Logger
}

type Option func(*Validator)

// WithStrict additionally rejects duplicate node ids and references that do not point
// at an earlier node.
func WithStrict() Option {
	return func(v *Validator) { v.strict = true }
}

// WithPolicy consults p for every node after the whitelist check.
func WithPolicy(p PolicyEngine) Option {
	return func(v *Validator) { v.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

func NewValidator(tools ToolLookup, opts ...Option) *Validator {
	v := &Validator{
		tools:  tools,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate walks the nodes in plan order and returns the first violation.
func (v *Validator) Validate(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return fmt.Errorf("validate: nil plan")
	}
	seen := make(map[string]int, p.Len())

	for i, node := range p.Nodes {
		if !v.tools.Has(node.Tool) {
			v.logger.Warn("policy check failed",
				zap.String("node", node.ID), zap.String("tool", node.Tool), zap.String("reason", "not registered"))
			return &ToolNotAllowedError{NodeID: node.ID, Tool: node.Tool}
		}

		if v.strict {
			if err := v.checkStructure(node, i, seen); err != nil {
				return err
			}
		}

		if v.policy != nil {
			if err := v.checkPolicy(ctx, node); err != nil {
				return err
			}
		}

		if _, dup := seen[node.ID]; !dup {
			seen[node.ID] = i
		}
	}

	v.logger.Debug("plan validated", zap.Int("nodes", p.Len()), zap.Bool("strict", v.strict))
	return nil
}

func (v *Validator) checkStructure(node plan.Node, index int, seen map[string]int) error {
	if _, dup := seen[node.ID]; dup {
		return &DuplicateNodeError{NodeID: node.ID, Index: index}
	}

	keys := make([]string, 0, len(node.Input))
	for k := range node.Input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := node.Input[k]
		ref, ok, err := plan.ParseRef(raw)
		if !ok {
			continue
		}
		if err != nil {
			return &ForwardReferenceError{NodeID: node.ID, Key: k, Ref: fmt.Sprint(raw), Reason: "malformed"}
		}
		if ref.Node == node.ID {
			return &ForwardReferenceError{NodeID: node.ID, Key: k, Ref: ref.String(), Reason: "node references itself"}
		}
		if _, ok := seen[ref.Node]; !ok {
			return &ForwardReferenceError{NodeID: node.ID, Key: k, Ref: ref.String(), Reason: "target does not run earlier in the plan"}
		}
	}
	return nil
}

func (v *Validator) checkPolicy(ctx context.Context, node plan.Node) error {
	refKeys := make(map[string]bool)
	for k, raw := range node.Input {
		if _, isRef, _ := plan.ParseRef(raw); isRef {
			refKeys[k] = true
		}
	}

	args, err := literalArguments(node.Input, refKeys)
	if err != nil {
		return fmt.Errorf("node %q: %w", node.ID, err)
	}

	res, err := v.policy.Evaluate(ctx, Request{NodeID: node.ID, Tool: node.Tool, Arguments: args})
	if err != nil {
		return fmt.Errorf("policy evaluation for node %q: %w", node.ID, err)
	}
	v.logger.Debug("policy check",
		zap.String("node", node.ID), zap.String("tool", node.Tool),
		zap.String("effect", string(res.Effect)), zap.String("reason", res.Reason))

	if res.Effect == EffectDeny {
		return &ToolNotAllowedError{NodeID: node.ID, Tool: node.Tool, Reason: res.Reason}
	}
	return nil
}
