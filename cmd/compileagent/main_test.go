package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/compileagent/internal/governance"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{} // a nil slice makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func quietConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	return writeFile(t, dir, "config.toml", "[log]\nlevel = \"error\"\n"+extra)
}

func TestDemo(t *testing.T) {
	for _, args := range [][]string{nil, {"demo"}} {
		out, err := execute(t, "", args...)
		require.NoError(t, err)

		sections := []string{
			"=== COMPILE AGENT: COMPILE INTENT ===",
			"=== VALIDATING PLAN ===\nOK",
			"=== EXECUTING DETERMINISTIC RUNTIME ===",
			"=== DONE ===",
		}
		last := -1
		for _, s := range sections {
			idx := strings.Index(out, s)
			require.Greater(t, idx, last, "section %q out of order", s)
			last = idx
		}
		assert.Contains(t, out, `"fahrenheit": 82.4`)
		assert.Contains(t, out, `"temp_c": "@fetch_weather.temp_c"`)
	}
}

func TestCompile_StdinAndYAML(t *testing.T) {
	out, err := execute(t, "get weather from Beijing\n", "compile")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"fetch_weather","tool":"WeatherAPI","input":{"city":"Beijing"}}]}`, out)

	out, err = execute(t, "get weather from Beijing\n", "compile", "-", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "tool: WeatherAPI")

	_, err = execute(t, "get weather from Beijing\n", "compile", "--output", "xml")
	assert.Error(t, err)
}

func TestCompileValidateRunPlan(t *testing.T) {
	dir := t.TempDir()
	intentPath := writeFile(t, dir, "weather.intent", "get weather from Shanghai\nconvert temperature\n")
	planPath := filepath.Join(dir, "plan.json")

	out, err := execute(t, "", "compile", intentPath, "--write", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 nodes")

	out, err = execute(t, "", "validate", planPath, "--strict")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = execute(t, "", "run", "--plan", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"fahrenheit": 71.6`)
}

func TestValidate_RejectsUnknownTool(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.json", `{"nodes":[{"id":"x","tool":"Shell","input":{"cmd":"ls"}}]}`)

	_, err := execute(t, "", "validate", planPath)
	assert.ErrorIs(t, err, governance.ErrToolNotAllowed)
}

func TestValidate_PolicyFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := quietConfig(t, dir, "[policy]\ndenied_arguments = [\"Pyongyang\"]\n")
	planPath := writeFile(t, dir, "plan.json", `{"nodes":[{"id":"w","tool":"WeatherAPI","input":{"city":"Pyongyang"}}]}`)

	_, err := execute(t, "", "validate", planPath, "--config", cfg)
	assert.ErrorIs(t, err, governance.ErrToolNotAllowed)
}

func TestRunDirAndHistory(t *testing.T) {
	dir := t.TempDir()
	intents := filepath.Join(dir, "intents")
	require.NoError(t, os.Mkdir(intents, 0755))
	writeFile(t, intents, "a.intent", "get weather from Beijing\nconvert temperature\n")
	writeFile(t, intents, "b.html", "<p>get weather from Shanghai</p><p>convert temperature</p>")
	cfg := quietConfig(t, dir, "[store]\npath = \""+filepath.ToSlash(filepath.Join(dir, "runs.db"))+"\"\n")

	out, err := execute(t, "", "run", "--dir", intents, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "=== a.intent ===")
	assert.Contains(t, out, "=== b.html ===")
	assert.Contains(t, out, `"fahrenheit": 82.4`)
	assert.Contains(t, out, `"fahrenheit": 71.6`)

	out, err = execute(t, "", "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN ID")
	assert.Equal(t, 2, strings.Count(out, "succeeded"))
}

func TestRun_BatchReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.intent", "get weather from Beijing")
	bad := writeFile(t, dir, "bad.intent", "convert temperature")

	out, err := execute(t, "", "run", good, bad, "--config", quietConfig(t, dir, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 runs failed")
	assert.Contains(t, out, "ERROR: ")
}

func TestHistory_Disabled(t *testing.T) {
	_, err := execute(t, "", "history")
	assert.ErrorContains(t, err, "run history is disabled")
}

func TestTools(t *testing.T) {
	out, err := execute(t, "", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "UnitConverter")
	assert.Contains(t, out, "WeatherAPI")

	out, err = execute(t, "", "tools", "--functions")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "function"`)

	out, err = execute(t, "", "tools", "call", "UnitConverter", `{"temp_c": 100}`)
	require.NoError(t, err)
	assert.Equal(t, "{\"fahrenheit\":212}\n", out)

	_, err = execute(t, "", "tools", "call", "Shell", `{}`)
	assert.Error(t, err)
}

func TestServeTelegram_RequiresConfig(t *testing.T) {
	_, err := execute(t, "", "serve", "telegram")
	assert.ErrorContains(t, err, "not enabled")
}
