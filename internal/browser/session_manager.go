// Package browser hosts the suggestion popup inside a live Chrome page
// driven over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"formsuggest/internal/config"
	"formsuggest/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// ErrNoSession is returned when a page is requested before Start.
var ErrNoSession = errors.New("browser session not started")

// Options configures Chrome and the page hooks.
type Options struct {
	DebuggerURL       string
	Launch            []string
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	PollInterval      time.Duration
	Shortcut          config.ShortcutConfig
}

// OptionsFromConfig reads the browser and popup sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DebuggerURL:       cfg.Browser.DebuggerURL,
		Launch:            cfg.Browser.Launch,
		Headless:          cfg.Browser.Headless,
		ViewportWidth:     cfg.Browser.ViewportWidth,
		ViewportHeight:    cfg.Browser.ViewportHeight,
		NavigationTimeout: cfg.GetNavigationTimeout(),
		PollInterval:      cfg.GetPollInterval(),
		Shortcut:          cfg.Popup.Shortcut,
	}
}

func (o Options) viewport() (int, int) {
	w, h := o.ViewportWidth, o.ViewportHeight
	if w == 0 {
		w = 1280
	}
	if h == 0 {
		h = 800
	}
	return w, h
}

func (o Options) navigationTimeout() time.Duration {
	if o.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return o.NavigationTimeout
}

func (o Options) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return 200 * time.Millisecond
	}
	return o.PollInterval
}

// SessionManager owns the Chrome connection and the pages opened on it.
type SessionManager struct {
	opts       Options
	mu         sync.RWMutex
	browser    *rod.Browser
	controlURL string
	pages      map[string]*PageHost
}

// NewSessionManager creates a manager. Nothing is launched until Start.
func NewSessionManager(opts Options) *SessionManager {
	return &SessionManager{
		opts:  opts,
		pages: make(map[string]*PageHost),
	}
}

// Start connects to an existing Chrome or launches a new one.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("Stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.pages = make(map[string]*PageHost)
	}

	controlURL := m.opts.DebuggerURL
	if controlURL == "" && len(m.opts.Launch) > 0 {
		bin := m.opts.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.opts.Headless)
		for _, rawFlag := range m.opts.Launch[1:] {
			flagStr := strings.TrimLeft(rawFlag, "-")
			name, val, hasVal := strings.Cut(flagStr, "=")
			if hasVal {
				launch = launch.Set(flags.Flag(name), val)
			} else {
				launch = launch.Set(flags.Flag(name))
			}
		}
		url, err := launch.Launch()
		if err != nil {
			fallback := launcher.New().Bin(bin).Headless(m.opts.Headless)
			alt, altErr := fallback.Launch()
			if altErr != nil {
				return fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
			}
			url = alt
		}
		controlURL = url
	}

	if controlURL == "" {
		url, err := launcher.New().Headless(m.opts.Headless).Launch()
		if err != nil {
			return fmt.Errorf("no debugger_url and failed to launch: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	logging.Browser("Connected to Chrome at %s", controlURL)
	return nil
}

// ControlURL returns the DevTools WebSocket URL.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected reports whether Start succeeded.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Open creates a page, installs the hooks and navigates to url.
func (m *SessionManager) Open(ctx context.Context, url string) (*PageHost, error) {
	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return nil, ErrNoSession
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	width, height := m.opts.viewport()
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		logging.BrowserWarn("Failed to set viewport: %v", err)
	}

	host := newPageHost(uuid.NewString(), page, m.opts)
	if err := host.install(ctx); err != nil {
		_ = page.Close()
		return nil, err
	}

	if url != "" {
		nav := page.Context(ctx).Timeout(m.opts.navigationTimeout())
		if err := nav.Navigate(url); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("navigate to %s: %w", url, err)
		}
		if err := nav.WaitLoad(); err != nil {
			logging.BrowserWarn("Page %s did not finish loading: %v", url, err)
		}
	}

	m.mu.Lock()
	m.pages[host.ID] = host
	m.mu.Unlock()

	logging.Browser("Opened page %s (target %s) at %s", host.ID, page.TargetID, url)
	return host, nil
}

// Shutdown closes every page and the browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, host := range m.pages {
		host.close()
		delete(m.pages, id)
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	logging.Browser("Browser shut down")
	return err
}
