package intent

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/compileagent/internal/plan"
)

func TestCompile_SingleWeatherLine(t *testing.T) {
	p, err := NewCompiler().Compile("get weather from Beijing")
	require.NoError(t, err)

	want := &plan.Plan{Nodes: []plan.Node{
		{ID: "fetch_weather", Tool: "WeatherAPI", Input: map[string]any{"city": "Beijing"}},
	}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_WeatherThenConvert(t *testing.T) {
	text := `
    get weather from Beijing
    convert temperature to Fahrenheit
    `
	p, err := NewCompiler().Compile(text)
	require.NoError(t, err)

	want := &plan.Plan{Nodes: []plan.Node{
		{ID: "fetch_weather", Tool: "WeatherAPI", Input: map[string]any{"city": "Beijing"}},
		{ID: "convert_units", Tool: "UnitConverter", Input: map[string]any{"temp_c": "@fetch_weather.temp_c"}},
	}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_CityIsRestOfLine(t *testing.T) {
	p, err := NewCompiler().Compile("get weather from New York City\r\n")
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, "New York City", p.Nodes[0].Input["city"])
}

func TestCompile_UnknownLinesAreIgnored(t *testing.T) {
	p, err := NewCompiler().Compile("hello there\nplease make coffee\n\n   \nweather from Beijing")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.NotNil(t, p.Nodes)
}

func TestCompile_OrderFollowsLines(t *testing.T) {
	p, err := NewCompiler().Compile("convert temperature now\nget weather from Shanghai\nconvert temperature again")
	require.NoError(t, err)
	assert.Equal(t, []string{"UnitConverter", "WeatherAPI", "UnitConverter"}, p.Tools())
}

func TestCompile_MalformedWeatherLine(t *testing.T) {
	p, err := NewCompiler().Compile("convert temperature\nget weather in Paris")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "get weather in Paris", pe.Text)
}

func TestCompile_WeatherFromWithoutCity(t *testing.T) {
	_, err := NewCompiler().Compile("get weather from   ")
	assert.True(t, errors.Is(err, ErrParse))
}

func TestParse_LineMatchingTwoRules(t *testing.T) {
	rules := append(DefaultRules(), Rule{
		Kind:    "shout",
		Prefix:  "get",
		Extract: func(string) (map[string]string, error) { return nil, nil },
		Build:   func(map[string]string) plan.Node { return plan.Node{ID: "shout", Tool: "Shout"} },
	})
	c := NewCompiler(rules...)

	intents, err := c.Parse("get weather from Beijing")
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, KindFetchWeather, intents[0].Kind)
	assert.Equal(t, Kind("shout"), intents[1].Kind)

	p, err := c.Compile("get weather from Beijing")
	require.NoError(t, err)
	assert.Equal(t, []string{"WeatherAPI", "Shout"}, p.Tools())
}

func TestSanitize_HTMLIntent(t *testing.T) {
	doc := `<html><body><p>get weather from <b>Beijing</b></p><p>convert temperature to Fahrenheit</p></body></html>`
	text, err := ReadSource(strings.NewReader(doc), SourceOptions{})
	require.NoError(t, err)
	assert.NotContains(t, text, "<")

	p, err := NewCompiler().Compile(text)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "Beijing", p.Nodes[0].Input["city"])
}

func TestReadSource_PlainTextUntouched(t *testing.T) {
	text, err := ReadSource(strings.NewReader("get weather from A & B"), SourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, "get weather from A & B", text)
}

func TestReadSource_TooLarge(t *testing.T) {
	_, err := ReadSource(strings.NewReader(strings.Repeat("x", 20)), SourceOptions{MaxBytes: 10})
	assert.Error(t, err)
}

func TestLibrary_LoadSorted(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.intent": "convert temperature",
		"a.txt":    "get weather from Shanghai",
		"c.html":   "<p>get weather from Beijing</p>",
		"notes.md": "ignored",
		"z.INTENT": "get weather from Unknown",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	docs, err := NewLibrary(dir).Load()
	require.NoError(t, err)

	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.intent", "c.html", "z.INTENT"}, names)
	assert.Equal(t, "get weather from Beijing", strings.TrimSpace(docs[2].Text))
}

func TestLibrary_Empty(t *testing.T) {
	_, err := NewLibrary(t.TempDir()).Load()
	assert.Error(t, err)

	_, err = NewLibrary(filepath.Join(t.TempDir(), "missing")).Load()
	assert.Error(t, err)
}
