package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig                `json:"app" yaml:"app" toml:"app"`
	Log      LogConfig                `json:"log" yaml:"log" toml:"log"`
	Runtime  RuntimeConfig            `json:"runtime" yaml:"runtime" toml:"runtime"`
	Policy   PolicyConfig             `json:"policy" yaml:"policy" toml:"policy"`
	Store    StoreConfig              `json:"store" yaml:"store" toml:"store"`
	Gateways map[string]GatewayConfig `json:"gateways" yaml:"gateways" toml:"gateways"`
}

type AppConfig struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Workspace string `json:"workspace" yaml:"workspace" toml:"workspace"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

type RuntimeConfig struct {
	// Strict also rejects duplicate node ids and references to nodes that do not run earlier.
	Strict bool `json:"strict" yaml:"strict" toml:"strict"`
	// Parallelism bounds concurrent runs in a batch; 0 means unbounded.
	Parallelism int `json:"parallelism" yaml:"parallelism" toml:"parallelism"`
	// Sanitize forces HTML stripping of intent sources.
	Sanitize bool `json:"sanitize" yaml:"sanitize" toml:"sanitize"`
	FailFast bool `json:"fail_fast" yaml:"fail_fast" toml:"fail_fast"`
}

type PolicyConfig struct {
	DeniedTools     []string `json:"denied_tools" yaml:"denied_tools" toml:"denied_tools"`
	DeniedArguments []string `json:"denied_arguments" yaml:"denied_arguments" toml:"denied_arguments"`
}

type StoreConfig struct {
	// Path of the sqlite run history. Empty disables it.
	Path string `json:"path" yaml:"path" toml:"path"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token" toml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:      "compileagent",
			Workspace: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Runtime: RuntimeConfig{
			Parallelism: 4,
		},
		Gateways: map[string]GatewayConfig{},
	}
}

// Load reads the file at path over the defaults. The decoder is chosen by extension:
// .json, .yaml/.yml or .toml. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys: %v", undecoded)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the decoders cannot.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Runtime.Parallelism < 0 {
		return fmt.Errorf("runtime.parallelism must not be negative")
	}
	for name, gw := range c.Gateways {
		if gw.Enabled && gw.Token == "" {
			return fmt.Errorf("gateway %s is enabled but has no token", name)
		}
	}
	return nil
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}
