package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trayfolders/internal/errors"
	"trayfolders/internal/menu"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory below ~/.config holding trayfolders files
	AppDir = "trayfolders"
	// SettingsFileName is the YAML settings file
	SettingsFileName = "settings.yaml"
	// RootsFileName is the line-based list of root directories
	RootsFileName = "folders.cfg"

	maxDepthLimit = 32
)

// MenuSettings shape the built menu
type MenuSettings struct {
	MaxDepth     int      `yaml:"max_depth"`     // Deepest level whose contents are listed
	ShowFiles    bool     `yaml:"show_files"`    // List files, not only directories
	FoldersFirst bool     `yaml:"folders_first"` // Directories before files
	Ignore       []string `yaml:"ignore"`        // Glob patterns for names to hide
	// Shortcut extensions; empty uses the platform default
	ShortcutExtensions []string `yaml:"shortcut_extensions,omitempty"`
}

// WatchSettings control filesystem observation
type WatchSettings struct {
	Enabled       bool `yaml:"enabled"`         // Rebuild on filesystem changes
	DebounceMS    int  `yaml:"debounce_ms"`     // Quiet period before a rebuild
	StopTimeoutMS int  `yaml:"stop_timeout_ms"` // Bounded wait on shutdown
}

// LoggingSettings configure internal/log
type LoggingSettings struct {
	Debug bool   `yaml:"debug"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// ThemeSettings pick the terminal colour theme
type ThemeSettings struct {
	Name string `yaml:"name"`
}

// Config represents the settings file.
type Config struct {
	Menu    MenuSettings    `yaml:"menu"`
	Watch   WatchSettings   `yaml:"watch"`
	Logging LoggingSettings `yaml:"logging"`
	Theme   ThemeSettings   `yaml:"theme"`
}

// DefaultDir returns ~/.config/trayfolders
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDir), nil
}

// DefaultSettingsPath returns ~/.config/trayfolders/settings.yaml
func DefaultSettingsPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LoadConfigFile loads settings from a specific file path.
// If the file doesn't exist, returns default settings.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewFileError("error reading config file", path, errors.FileAccessDenied, err)
	}

	// Keys absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig returns the settings used when no file exists
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Menu.MaxDepth = menu.DefaultMaxDepth
	cfg.Menu.ShowFiles = true
	cfg.Menu.FoldersFirst = true
	cfg.Menu.Ignore = []string{"desktop.ini", "Thumbs.db", ".DS_Store"}

	cfg.Watch.Enabled = true
	cfg.Watch.DebounceMS = 400
	cfg.Watch.StopTimeoutMS = 2000

	cfg.Theme.Name = "default"

	return cfg
}

// New returns the default settings
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if c.Menu.MaxDepth < 0 || c.Menu.MaxDepth > maxDepthLimit {
		return errors.NewConfigError(fmt.Sprintf("max depth must be between 0 and %d", maxDepthLimit), "menu.max_depth", errors.InvalidConfig, nil)
	}

	for i, pattern := range c.Menu.Ignore {
		if pattern == "" {
			return errors.NewConfigError(fmt.Sprintf("ignore pattern %d cannot be empty", i), "menu.ignore", errors.InvalidConfig, nil)
		}
	}
	if _, err := menu.CompileIgnore(c.Menu.Ignore); err != nil {
		return err
	}

	if c.Watch.DebounceMS <= 0 {
		return errors.NewConfigError("debounce must be > 0 ms", "watch.debounce_ms", errors.InvalidConfig, nil)
	}
	if c.Watch.StopTimeoutMS <= 0 {
		return errors.NewConfigError("stop timeout must be > 0 ms", "watch.stop_timeout_ms", errors.InvalidConfig, nil)
	}

	if c.Theme.Name != "" {
		if _, ok := themes[c.Theme.Name]; !ok {
			msg := fmt.Sprintf("unknown theme %s, expected one of %s", c.Theme.Name, strings.Join(ListThemes(), ", "))
			return errors.NewConfigError(msg, "theme.name", errors.InvalidConfig, nil)
		}
	}

	return nil
}

// MenuOptions converts the menu section for the tree builder
func (c *Config) MenuOptions() menu.Options {
	return menu.Options{
		MaxDepth:     c.Menu.MaxDepth,
		ShowFiles:    c.Menu.ShowFiles,
		FoldersFirst: c.Menu.FoldersFirst,
		Ignore:       append([]string(nil), c.Menu.Ignore...),
	}
}

// Classifier returns the entry classifier implied by the settings
func (c *Config) Classifier() *menu.Classifier {
	if len(c.Menu.ShortcutExtensions) == 0 {
		return menu.NewClassifier()
	}
	return menu.NewClassifierWithExtensions(c.Menu.ShortcutExtensions)
}

// Debounce returns the coalescing interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// StopTimeout returns the bounded shutdown wait
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Watch.StopTimeoutMS) * time.Millisecond
}

var themes = map[string]map[string]string{
	"default": {
		"primary":  "213", // Purple
		"success":  "114", // Green
		"warning":  "220", // Yellow
		"error":    "196", // Red
		"info":     "39",  // Blue
		"emphasis": "212", // Light Pink
		"border":   "213", // Purple
	},
	"dark": {
		"primary":  "105",
		"success":  "78",
		"warning":  "214",
		"error":    "160",
		"info":     "33",
		"emphasis": "147",
		"border":   "105",
	},
	"light": {
		"primary":  "135",
		"success":  "150",
		"warning":  "222",
		"error":    "210",
		"info":     "117",
		"emphasis": "219",
		"border":   "135",
	},
	"monochrome": {
		"primary":  "245",
		"success":  "252",
		"warning":  "241",
		"error":    "232",
		"info":     "248",
		"emphasis": "255",
		"border":   "245",
	},
}

// GetTheme returns a predefined theme by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
