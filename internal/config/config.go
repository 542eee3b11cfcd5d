package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDir is the per-workspace state directory.
const DefaultDir = ".formsuggest"

// Config holds all formsuggest configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Completion API
	LLM LLMConfig `yaml:"llm"`

	// Page excerpt limits
	Extract ExtractConfig `yaml:"extract"`

	// Popup behaviour and keyboard chord
	Popup PopupConfig `yaml:"popup"`

	// KV store for main content and settings
	Storage StorageConfig `yaml:"storage"`

	// Main-content file sync
	Content ContentConfig `yaml:"content"`

	// Browser host
	Browser BrowserConfig `yaml:"browser"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	Logging LoggingConfig `yaml:"logging"`
}

// ExtractConfig configures the page-content extractor.
type ExtractConfig struct {
	MaxChars  int      `yaml:"max_chars"`
	Selectors []string `yaml:"selectors"`
}

// StorageConfig configures the sqlite KV store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ContentConfig configures the main-content file watcher.
type ContentConfig struct {
	WatchFile string `yaml:"watch_file"`
	Debounce  string `yaml:"debounce"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	BodyLimitKB  int    `yaml:"body_limit_kb"`
	AllowOrigins string `yaml:"allow_origins"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "formsuggest",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider:    ProviderGroq,
			Timeout:     "30s",
			Temperature: 0.3,
			MaxTokens:   100,
		},

		Extract: ExtractConfig{
			MaxChars: 2000,
		},

		Popup: PopupConfig{
			Shortcut: ShortcutConfig{Key: "s", Alt: true, Shift: true},
			OffsetPx: 5,
		},

		Storage: StorageConfig{
			DatabasePath: filepath.Join(DefaultDir, "formsuggest.db"),
		},

		Content: ContentConfig{
			Debounce: "500ms",
		},

		Browser: BrowserConfig{
			Headless:          false,
			ViewportWidth:     1280,
			ViewportHeight:    800,
			NavigationTimeout: "30s",
			PollInterval:      "200ms",
		},

		Server: ServerConfig{
			Addr:         ":8787",
			BodyLimitKB:  2048,
			AllowOrigins: "*",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the config path inside a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, DefaultDir, "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields defaults; env overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API keys, lowest to highest priority. Each key selects its own provider.
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderGroq
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderOpenAI
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderGemini
	}

	if model := os.Getenv("FORMSUGGEST_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("FORMSUGGEST_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if url := os.Getenv("FORMSUGGEST_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
}

// Validate validates the configuration.
// A missing API key is not an error: requests fail individually instead.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature out of range: %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.Extract.MaxChars <= 0 {
		return fmt.Errorf("extract.max_chars must be positive")
	}
	if c.Popup.Shortcut.Key == "" {
		return fmt.Errorf("popup.shortcut.key is required")
	}
	return nil
}

// GetContentDebounce returns the watcher debounce as a duration.
func (c *Config) GetContentDebounce() time.Duration {
	d, err := time.ParseDuration(c.Content.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ResolvePath makes a relative path absolute against the workspace.
func ResolvePath(workspace, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}
