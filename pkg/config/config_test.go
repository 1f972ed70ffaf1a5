package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
				"app": {"name": "weather"},
				"runtime": {"strict": true, "parallelism": 2},
				"policy": {"denied_tools": ["Shell"]},
				"store": {"path": "runs.db"},
				"gateways": {"telegram": {"token": "t0k", "enabled": true}}
			}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
app:
  name: weather
runtime:
  strict: true
  parallelism: 2
policy:
  denied_tools: [Shell]
store:
  path: runs.db
gateways:
  telegram:
    token: t0k
    enabled: true
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `
[app]
name = "weather"

[runtime]
strict = true
parallelism = 2

[policy]
denied_tools = ["Shell"]

[store]
path = "runs.db"

[gateways.telegram]
token = "t0k"
enabled = true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "weather", cfg.App.Name)
			assert.Equal(t, ".", cfg.App.Workspace, "unset keys keep their defaults")
			assert.Equal(t, "info", cfg.Log.Level)
			assert.True(t, cfg.Runtime.Strict)
			assert.Equal(t, 2, cfg.Runtime.Parallelism)
			assert.Equal(t, []string{"Shell"}, cfg.Policy.DeniedTools)
			assert.Equal(t, "runs.db", cfg.Store.Path)

			tg, ok := cfg.GetTelegramConfig()
			require.True(t, ok)
			assert.Equal(t, "t0k", tg.Token)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "config.ini", "[app]"},
		{"unknown json key", "config.json", `{"memory": {}}`},
		{"unknown yaml key", "config.yaml", "providers: {}\n"},
		{"unknown toml key", "config.toml", "[memory]\ntype = \"sqlite\"\n"},
		{"bad log format", "config.json", `{"log": {"format": "xml"}}`},
		{"negative parallelism", "config.yaml", "runtime:\n  parallelism: -1\n"},
		{"gateway without token", "config.json", `{"gateways": {"telegram": {"enabled": true}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGetTelegramConfig_Disabled(t *testing.T) {
	cfg := Default()
	cfg.Gateways["telegram"] = GatewayConfig{Token: "x", Enabled: false}
	_, ok := cfg.GetTelegramConfig()
	assert.False(t, ok)
}
