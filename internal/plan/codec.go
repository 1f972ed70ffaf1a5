package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Format selects the textual encoding of a plan.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

//go:embed plan.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal plan schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("plan.schema.json", doc); err != nil {
			schemaErr = fmt.Errorf("add plan schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("plan.schema.json")
	})
	return schema, schemaErr
}

// Encode writes v (a plan or a run result) to w. JSON output is indented and does not escape HTML characters.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Decode reads a plan from r. JSON documents are checked against the plan schema
// before they are decoded; numbers are kept as json.Number.
func Decode(r io.Reader, format Format) (*Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var p Plan
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
	default:
		sch, err := compiledSchema()
		if err != nil {
			return nil, err
		}
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
		if err := sch.Validate(inst); err != nil {
			return nil, fmt.Errorf("plan does not match schema: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
	}

	for i := range p.Nodes {
		if p.Nodes[i].Input == nil {
			p.Nodes[i].Input = map[string]any{}
		}
	}
	return &p, nil
}

// LoadFile reads a plan from a JSON or YAML file.
func LoadFile(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatFromPath(path))
}

// SaveFile writes p to path, choosing the encoding from the extension.
func SaveFile(p *Plan, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p, FormatFromPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}
	return nil
}
