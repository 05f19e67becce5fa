// Package config loads workbench settings from defaults, an optional TOML
// file and WORKBENCH_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"workbench/internal/errors"
	"workbench/internal/layout"
)

// EnvPrefix prefixes every environment override, with "." replaced by "_":
// WORKBENCH_DOCK_SPLIT_RATIO overrides dock.split_ratio.
const EnvPrefix = "WORKBENCH"

// Config holds application configuration.
type Config struct {
	Dock     DockConfig     `mapstructure:"dock"`
	Store    StoreConfig    `mapstructure:"store"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Log      LogConfig      `mapstructure:"log"`
	OTel     OTelConfig     `mapstructure:"otel"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DockConfig tunes the docking engine.
type DockConfig struct {
	SplitRatio      float64 `mapstructure:"split_ratio"`
	EdgeFraction    float64 `mapstructure:"edge_fraction"`
	EdgeMinPx       int     `mapstructure:"edge_min_px"`
	HeaderHeight    int     `mapstructure:"header_height"`
	DefaultRenderer string  `mapstructure:"default_renderer"`
	// PopoutClose is "discard" or "redock".
	PopoutClose string `mapstructure:"popout_close"`
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SnapshotConfig locates exported layout files.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// OTelConfig holds tracing settings. An empty endpoint disables export.
type OTelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Autosave  bool   `mapstructure:"autosave"`
	Workspace string `mapstructure:"workspace"`
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "workbench", "config.toml")
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "workbench")
	v.SetDefault("dock.split_ratio", 0.5)
	v.SetDefault("dock.edge_fraction", 0.2)
	v.SetDefault("dock.edge_min_px", 1)
	v.SetDefault("dock.header_height", 1)
	v.SetDefault("dock.default_renderer", string(layout.OnlyWhenVisible))
	v.SetDefault("dock.popout_close", "redock")
	v.SetDefault("store.path", filepath.Join(dataDir, "workbench.db"))
	v.SetDefault("snapshot.dir", filepath.Join(dataDir, "layouts"))
	v.SetDefault("log.path", filepath.Join(os.TempDir(), "workbench.log"))
	v.SetDefault("log.debug", false)
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service_name", "workbench")
	v.SetDefault("ui.autosave", true)
	v.SetDefault("ui.workspace", "default")
}

// Load reads configuration. An explicit path must exist; the default path is
// optional. Env vars override both.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); explicit || statErr == nil {
			return Config{}, errors.ConfigLoadFailed(path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.ConfigLoadFailed(path, fmt.Errorf("unmarshal config: %w", err))
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the engine cannot use.
func (c Config) Validate() error {
	switch {
	case c.Dock.SplitRatio <= 0 || c.Dock.SplitRatio >= 1:
		return errors.ConfigInvalid(fmt.Sprintf("dock.split_ratio must be in (0, 1), got %v", c.Dock.SplitRatio))
	case c.Dock.EdgeFraction < 0 || c.Dock.EdgeFraction > 0.5:
		return errors.ConfigInvalid(fmt.Sprintf("dock.edge_fraction must be in [0, 0.5], got %v", c.Dock.EdgeFraction))
	case c.Dock.EdgeMinPx < 0:
		return errors.ConfigInvalid("dock.edge_min_px must not be negative")
	case c.Dock.HeaderHeight < 0:
		return errors.ConfigInvalid("dock.header_height must not be negative")
	case !layout.Renderer(c.Dock.DefaultRenderer).Valid():
		return errors.ConfigInvalid(fmt.Sprintf("dock.default_renderer: unknown renderer %q", c.Dock.DefaultRenderer))
	case c.Dock.PopoutClose != "discard" && c.Dock.PopoutClose != "redock":
		return errors.ConfigInvalid(fmt.Sprintf("dock.popout_close must be discard or redock, got %q", c.Dock.PopoutClose))
	case c.Store.Path == "":
		return errors.ConfigInvalid("store.path is required")
	}
	return nil
}

// Save writes cfg as TOML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	v := viper.New()
	v.SetConfigType("toml")
	v.Set("dock.split_ratio", cfg.Dock.SplitRatio)
	v.Set("dock.edge_fraction", cfg.Dock.EdgeFraction)
	v.Set("dock.edge_min_px", cfg.Dock.EdgeMinPx)
	v.Set("dock.header_height", cfg.Dock.HeaderHeight)
	v.Set("dock.default_renderer", cfg.Dock.DefaultRenderer)
	v.Set("dock.popout_close", cfg.Dock.PopoutClose)
	v.Set("store.path", cfg.Store.Path)
	v.Set("snapshot.dir", cfg.Snapshot.Dir)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("otel.endpoint", cfg.OTel.Endpoint)
	v.Set("otel.service_name", cfg.OTel.ServiceName)
	v.Set("ui.autosave", cfg.UI.Autosave)
	v.Set("ui.workspace", cfg.UI.Workspace)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
