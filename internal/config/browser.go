package config

import "time"

// BrowserConfig configures the go-rod browser host.
type BrowserConfig struct {
	DebuggerURL       string   `yaml:"debugger_url"` // connect instead of launching
	Launch            []string `yaml:"launch"`       // binary followed by flags
	Headless          bool     `yaml:"headless"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
	PollInterval      string   `yaml:"poll_interval"`
}

// GetNavigationTimeout returns the navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetPollInterval returns the event buffer poll interval.
func (c *Config) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Browser.PollInterval)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}
