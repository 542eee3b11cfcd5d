package config

import "strings"

// PopupConfig configures popup placement and the keyboard trigger.
type PopupConfig struct {
	Shortcut ShortcutConfig `yaml:"shortcut"`
	OffsetPx int            `yaml:"offset_px"`
}

// ShortcutConfig is a keyboard chord such as Alt+Shift+S.
type ShortcutConfig struct {
	Key   string `yaml:"key"`
	Ctrl  bool   `yaml:"ctrl"`
	Alt   bool   `yaml:"alt"`
	Shift bool   `yaml:"shift"`
	Meta  bool   `yaml:"meta"`
}

// String renders the chord as hint text, e.g. "Alt+Shift+S".
func (s ShortcutConfig) String() string {
	var parts []string
	if s.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if s.Alt {
		parts = append(parts, "Alt")
	}
	if s.Shift {
		parts = append(parts, "Shift")
	}
	if s.Meta {
		parts = append(parts, "Meta")
	}
	parts = append(parts, strings.ToUpper(s.Key))
	return strings.Join(parts, "+")
}
