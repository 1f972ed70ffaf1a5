package tools

import (
	"context"
	"fmt"
)

type weatherReport struct {
	TempC int
	Desc  string
}

// WeatherTool is a mock weather lookup backed by a fixed table. It never touches the network.
type WeatherTool struct {
	reports map[string]weatherReport
}

func NewWeatherTool() *WeatherTool {
	return &WeatherTool{
		reports: map[string]weatherReport{
			"Beijing":  {TempC: 28, Desc: "Sunny"},
			"Shanghai": {TempC: 22, Desc: "Cloudy"},
		},
	}
}

func (w *WeatherTool) Name() string {
	return "WeatherAPI"
}

func (w *WeatherTool) Description() string {
	return "Look up the current temperature (Celsius) and a short description for a city."
}

func (w *WeatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "The city to look up",
			},
		},
		"required": []string{"city"},
	}
}

func (w *WeatherTool) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	city, ok := input["city"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid input: city must be a string, got %T", input["city"])
	}

	report, ok := w.reports[city]
	if !ok {
		report = weatherReport{TempC: 0, Desc: "Unknown"}
	}
	return map[string]any{
		"temp_c": report.TempC,
		"desc":   report.Desc,
	}, nil
}
