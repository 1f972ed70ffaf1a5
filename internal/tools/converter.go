package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// ConverterTool converts a Celsius temperature to Fahrenheit, rounded to two decimals.
type ConverterTool struct{}

func NewConverterTool() *ConverterTool {
	return &ConverterTool{}
}

func (c *ConverterTool) Name() string {
	return "UnitConverter"
}

func (c *ConverterTool) Description() string {
	return "Convert a temperature from Celsius to Fahrenheit."
}

func (c *ConverterTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"temp_c": map[string]any{
				"type":        "number",
				"description": "Temperature in degrees Celsius",
			},
		},
		"required": []string{"temp_c"},
	}
}

func (c *ConverterTool) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	raw, ok := input["temp_c"]
	if !ok {
		return nil, fmt.Errorf("invalid input: temp_c is required")
	}
	celsius, err := toFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid input: temp_c: %w", err)
	}

	f := celsius*9/5 + 32
	return map[string]any{
		"fahrenheit": math.Round(f*100) / 100,
	}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// RegisterDefaults registers the built-in example tools.
func RegisterDefaults(r *Registry) {
	r.Register(NewWeatherTool())
	r.Register(NewConverterTool())
}
