// Package intent compiles free-text intent lines into a static plan.
//
// The compiler is keyword based, not a grammar for natural language. Each recognised
// intent is a Kind in a small rule table; adding an intent means adding a Rule.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rahul/compileagent/internal/plan"
)

// ErrParse is the sentinel wrapped by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a line that matched a known intent but whose arguments could not be extracted.
type ParseError struct {
	Line   int // 1-based, counted over non-blank lines
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on intent line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Kind discriminates the recognised intents.
type Kind string

const (
	KindFetchWeather       Kind = "fetch_weather"
	KindConvertTemperature Kind = "convert_temperature"
)

// Intent is one recognised line together with the arguments extracted from it.
type Intent struct {
	Kind Kind
	Line int
	Text string
	Args map[string]string
}

// Rule recognises one intent kind by its literal prefix and lowers it into a plan node.
type Rule struct {
	Kind   Kind
	Prefix string
	// Extract pulls the rule's arguments out of a matching line.
	Extract func(line string) (map[string]string, error)
	// Build turns the extracted arguments into a node.
	Build func(args map[string]string) plan.Node
}

var cityPattern = regexp.MustCompile(`weather from (.*)`)

// DefaultRules returns the built-in grammar.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:   KindFetchWeather,
			Prefix: "get weather",
			Extract: func(line string) (map[string]string, error) {
				m := cityPattern.FindStringSubmatch(line)
				if m == nil {
					return nil, fmt.Errorf("expected %q followed by a city", "weather from ")
				}
				return map[string]string{"city": m[1]}, nil
			},
			Build: func(args map[string]string) plan.Node {
				return plan.Node{
					ID:    "fetch_weather",
					Tool:  "WeatherAPI",
					Input: map[string]any{"city": args["city"]},
				}
			},
		},
		{
			Kind:   KindConvertTemperature,
			Prefix: "convert temperature",
			Extract: func(string) (map[string]string, error) {
				return map[string]string{}, nil
			},
			Build: func(map[string]string) plan.Node {
				return plan.Node{
					ID:    "convert_units",
					Tool:  "UnitConverter",
					Input: map[string]any{"temp_c": plan.Ref{Node: "fetch_weather", Field: "temp_c"}.String()},
				}
			},
		},
	}
}

// Compiler converts intent text into a plan using its rule table.
type Compiler struct {
	rules []Rule
}

// NewCompiler returns a compiler with the given rules, or DefaultRules when none are given.
func NewCompiler(rules ...Rule) *Compiler {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Compiler{rules: rules}
}

// Lines splits text on newlines, trims each line and drops blank ones.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Parse recognises the intents in text. Lines that match no rule are skipped.
// Every rule is tried against every line, so one line can yield several intents.
func (c *Compiler) Parse(text string) ([]Intent, error) {
	var intents []Intent
	for i, line := range Lines(text) {
		for _, rule := range c.rules {
			if !strings.HasPrefix(line, rule.Prefix) {
				continue
			}
			args, err := rule.Extract(line)
			if err != nil {
				return nil, &ParseError{Line: i + 1, Text: line, Reason: err.Error()}
			}
			intents = append(intents, Intent{Kind: rule.Kind, Line: i + 1, Text: line, Args: args})
		}
	}
	return intents, nil
}

// Compile converts text into a plan. An empty plan (no nodes) is not an error.
func (c *Compiler) Compile(text string) (*plan.Plan, error) {
	intents, err := c.Parse(text)
	if err != nil {
		return nil, err
	}

	p := &plan.Plan{Nodes: make([]plan.Node, 0, len(intents))}
	for _, in := range intents {
		rule, ok := c.rule(in.Kind)
		if !ok {
			return nil, fmt.Errorf("no rule for intent kind %q", in.Kind)
		}
		p.Nodes = append(p.Nodes, rule.Build(in.Args))
	}
	return p, nil
}

func (c *Compiler) rule(kind Kind) (Rule, bool) {
	for _, r := range c.rules {
		if r.Kind == kind {
			return r, true
		}
	}
	return Rule{}, false
}
