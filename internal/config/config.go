// Package config handles copilot configuration loading and validation.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/drewfead/copilot/internal/errclass"
)

// Options configures client construction. Exactly one backend is selected:
// a runtime URL for the GraphQL runtime server, or a direct agent URL (or
// named endpoint map) for ag_ui agent servers. Validation happens in the
// client factory, not here.
type Options struct {
	// RuntimeURL points at a GraphQL runtime server.
	RuntimeURL string `yaml:"runtime_url"`

	// PublicAPIKey authenticates against a hosted runtime. Sent as a
	// bearer token; the key format is opaque.
	PublicAPIKey string `yaml:"public_api_key"`

	// AgentURL points a single-agent setup directly at an ag_ui server.
	AgentURL string `yaml:"agent_url"`

	// AgentEndpoints maps agent names to ag_ui server URLs for multi-agent
	// setups. The "default" entry serves agents with no entry of their own.
	AgentEndpoints map[string]string `yaml:"agent_endpoints"`

	// Headers are attached verbatim to every outgoing request.
	Headers map[string]string `yaml:"headers"`

	// Credentials mirrors the fetch credentials mode ("include",
	// "same-origin", "omit"). "omit" disables cookie handling; any other
	// mode keeps a per-client cookie jar.
	Credentials string `yaml:"credentials"`

	// ThreadID pins the conversation thread. Empty means a fresh thread
	// per client.
	ThreadID string `yaml:"thread_id"`

	// Enabled defaults to true. When explicitly false the factory returns
	// an inert client that performs no network activity.
	Enabled *bool `yaml:"enabled"`

	// ShowDevConsole surfaces dev-only errors to the error callback.
	ShowDevConsole bool `yaml:"show_dev_console"`

	// Callbacks for surfaced errors and warnings. Not configurable from
	// file; wired by the embedding program.
	OnError   errclass.ErrorFunc   `yaml:"-"`
	OnWarning errclass.WarningFunc `yaml:"-"`
}

// IsEnabled reports whether the client should perform real work.
func (o *Options) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

// Config is the root configuration for the copilot CLI.
type Config struct {
	Client  Options       `yaml:"client"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	UI      UIConfig      `yaml:"ui"`
}

// LogConfig defines logging and error-forwarding settings.
type LogConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	SentryDSN string `yaml:"sentry_dsn"`
}

// JournalConfig defines the protocol event journal.
type JournalConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Database string `yaml:"database"`
}

// UIConfig defines TUI appearance.
type UIConfig struct {
	Theme          string `yaml:"theme"`
	ShowAgentState bool   `yaml:"show_agent_state"`
	MarkdownWidth  int    `yaml:"markdown_width"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(homeDir, ".local/share/copilot/copilot.log"),
		},
		Journal: JournalConfig{
			Enabled:  false,
			Database: filepath.Join(homeDir, ".local/share/copilot/events.db"),
		},
		UI: UIConfig{
			Theme:          "tokyo-night",
			ShowAgentState: true,
			MarkdownWidth:  100,
		},
	}
}

// Load reads configuration from the default path or creates default config.
func Load() (*Config, error) {
	configPath := DefaultConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.expandEnvVars()
	return cfg, nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	if p := os.Getenv("COPILOT_CONFIG"); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config/copilot/config.yaml")
}

func (c *Config) expandEnvVars() {
	c.Client.PublicAPIKey = os.ExpandEnv(c.Client.PublicAPIKey)
	c.Log.SentryDSN = os.ExpandEnv(c.Log.SentryDSN)
	for k, v := range c.Client.Headers {
		c.Client.Headers[k] = os.ExpandEnv(v)
	}
}
