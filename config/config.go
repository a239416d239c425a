// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appName        = "dicto"
	configFileName = "config.json"

	envKey        = "GROQ_API_KEY"
	envConfigPath = "DICTO_CONFIG_PATH"
)

// Config is read fresh at the start of every recording, so edits take
// effect on the next run without a restart.
type Config struct {
	// Language is the transcription language hint; "auto" lets the
	// service detect it.
	Language string `json:"language"`
	// PasteStrategy is "focus" (check for a focused target first) or
	// "always" (send the paste keystroke unconditionally).
	PasteStrategy string `json:"paste_strategy"`
	// UploadFormat is "wav" or "flac".
	UploadFormat string `json:"upload_format"`
	BaseURL      string `json:"base_url,omitempty"`
	Device       string `json:"device,omitempty"`
	// APIKeyFile points at a file holding the API key, consulted when
	// the environment variable is unset.
	APIKeyFile string `json:"api_key_file,omitempty"`
	AutoPaste  *bool  `json:"auto_paste,omitempty"`
}

// Load reads the config file, returning defaults when it doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path resolves the config file location, honoring DICTO_CONFIG_PATH.
func Path() (string, error) {
	if p := os.Getenv(envConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// AutoPasteEnabled defaults to true when unset.
func (c *Config) AutoPasteEnabled() bool {
	return c.AutoPaste == nil || *c.AutoPaste
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "auto"
	}
	if c.PasteStrategy == "" {
		c.PasteStrategy = "focus"
	}
	if c.UploadFormat == "" {
		c.UploadFormat = "wav"
	}
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Credentials resolves the API key, environment first and the configured
// key file second.
func (c *Config) Credentials() KeySource {
	return KeySource{file: c.APIKeyFile}
}

type KeySource struct {
	file string
}

func (k KeySource) APIKey() (string, bool) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, true
	}
	if k.file == "" {
		return "", false
	}
	data, err := os.ReadFile(k.file)
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(string(data))
	return key, key != ""
}
