package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	w, ok := r.Get("WeatherAPI")
	require.True(t, ok)
	assert.Equal(t, "WeatherAPI", w.Name())

	_, ok = r.Get("EvilTool")
	assert.False(t, ok)
	assert.Equal(t, []string{"UnitConverter", "WeatherAPI"}, r.Names())
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.RegisterFunc("echo", "first", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{"v": 1}, nil
	})
	r.RegisterFunc("echo", "second", func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{"v": 2}, nil
	})

	tool, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "second", tool.Description())

	out, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out["v"])
	assert.Len(t, r.All(), 1)
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	RegisterDefaults(a)

	assert.True(t, a.Has("UnitConverter"))
	assert.False(t, b.Has("UnitConverter"))
}

func TestWeatherTool_Execute(t *testing.T) {
	w := NewWeatherTool()
	ctx := context.Background()

	tests := []struct {
		city string
		want map[string]any
	}{
		{"Beijing", map[string]any{"temp_c": 28, "desc": "Sunny"}},
		{"Shanghai", map[string]any{"temp_c": 22, "desc": "Cloudy"}},
		{"Unknown", map[string]any{"temp_c": 0, "desc": "Unknown"}},
		{"Atlantis", map[string]any{"temp_c": 0, "desc": "Unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			got, err := w.Execute(ctx, map[string]any{"city": tt.city})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := w.Execute(ctx, map[string]any{"city": 42})
	assert.Error(t, err)
}

func TestConverterTool_Execute(t *testing.T) {
	c := NewConverterTool()
	ctx := context.Background()

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"int", 28, 82.4},
		{"float", 22.0, 71.6},
		{"zero", 0, 32},
		{"negative", -40, -40},
		{"rounded", 37.123, 98.82},
		{"json number", json.Number("100"), 212},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Execute(ctx, map[string]any{"temp_c": tt.in})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got["fahrenheit"], 1e-9)
		})
	}

	_, err := c.Execute(ctx, map[string]any{})
	assert.Error(t, err)
	_, err = c.Execute(ctx, map[string]any{"temp_c": "hot"})
	assert.Error(t, err)
}

func TestLangchainAdapter(t *testing.T) {
	lc := AsLangchainTool(NewWeatherTool())
	assert.Equal(t, "WeatherAPI", lc.Name())

	out, err := lc.Call(context.Background(), `{"city":"Beijing"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp_c":28,"desc":"Sunny"}`, out)

	_, err = lc.Call(context.Background(), `not json`)
	assert.Error(t, err)
}

func TestRegistry_FunctionDefinitions(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	defs := r.FunctionDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "UnitConverter", defs[0].Function.Name)
	assert.Equal(t, "WeatherAPI", defs[1].Function.Name)
}
