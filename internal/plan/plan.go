// Package plan holds the static execution plan produced by the intent compiler:
// an ordered list of tool invocations whose inputs are literals or references to
// the outputs of earlier nodes.
package plan

import (
	"errors"
	"fmt"
	"strings"
)

// RefPrefix marks a string input value as a reference to another node's output.
const RefPrefix = "@"

// ErrMalformedRef is returned by ParseRef for a reference that is not of the form @node.field.
var ErrMalformedRef = errors.New("malformed reference")

// Plan represents a sequence of tool invocations. It is pure data and is never
// mutated once compiled.
type Plan struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Node is a single planned tool invocation.
type Node struct {
	ID    string         `json:"id" yaml:"id"`
	Tool  string         `json:"tool" yaml:"tool"`
	Input map[string]any `json:"input" yaml:"input"`
}

// Ref points at a field of an earlier node's output.
type Ref struct {
	Node  string
	Field string
}

func (r Ref) String() string {
	return RefPrefix + r.Node + "." + r.Field
}

// ParseRef reports whether v is a reference. Only strings starting with "@" are
// references; anything else is a literal and ok is false. The text after "@" is split
// at the first ".", so the field may itself contain dots.
func ParseRef(v any) (ref Ref, ok bool, err error) {
	s, isString := v.(string)
	if !isString || !strings.HasPrefix(s, RefPrefix) {
		return Ref{}, false, nil
	}
	node, field, found := strings.Cut(strings.TrimPrefix(s, RefPrefix), ".")
	if !found || node == "" || field == "" {
		return Ref{}, true, fmt.Errorf("%w: %q", ErrMalformedRef, s)
	}
	return Ref{Node: node, Field: field}, true, nil
}

// Len returns the number of nodes in the plan.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}

// Tools returns the tool name of every node, in plan order.
func (p *Plan) Tools() []string {
	names := make([]string, 0, p.Len())
	for _, n := range p.Nodes {
		names = append(names, n.Tool)
	}
	return names
}

// Refs returns the references in the node's input, keyed by input name.
// Malformed references are reported through the error.
func (n Node) Refs() (map[string]Ref, error) {
	refs := make(map[string]Ref)
	for k, v := range n.Input {
		ref, ok, err := ParseRef(v)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", k, err)
		}
		if ok {
			refs[k] = ref
		}
	}
	return refs, nil
}
