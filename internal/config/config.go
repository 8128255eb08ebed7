// Package config provides configuration management for pomodore.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POMODORE_LOG_LEVEL.
const EnvPrefix = "POMODORE"

// Config holds all configuration for the pomodore application.
// Timer durations are user settings kept in the settings store, not here.
type Config struct {
	Timer         TimerConfig        `mapstructure:"timer"`
	Status        StatusConfig       `mapstructure:"status"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Control       ControlConfig      `mapstructure:"control"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// TimerConfig holds session controller settings.
type TimerConfig struct {
	AutoContinue bool `mapstructure:"auto_continue"`
}

// StatusConfig holds background status reporter settings.
type StatusConfig struct {
	Tray bool `mapstructure:"tray"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// ControlConfig holds the daemon control endpoint settings.
type ControlConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorWork        string `mapstructure:"color_work"`
	ColorShortBreak  string `mapstructure:"color_short_break"`
	ColorLongBreak   string `mapstructure:"color_long_break"`
	ColorPaused      string `mapstructure:"color_paused"`
	ColorCelebration string `mapstructure:"color_celebration"`
	ColorHelp        string `mapstructure:"color_help"`
	IconApp          string `mapstructure:"icon_app"`
	IconPaused       string `mapstructure:"icon_paused"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorWork:        "#E74C3C",
		ColorShortBreak:  "#3498DB",
		ColorLongBreak:   "#9B59B6",
		ColorPaused:      "#6B7280",
		ColorCelebration: "#FFD700",
		ColorHelp:        "#95A5A6",
		IconApp:          "🍅",
		IconPaused:       "⏸",
	}
}

const defaultDataDir = "~/.pomodore"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			AutoContinue: false,
		},
		Status: StatusConfig{
			Tray: false,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Control: ControlConfig{
			Address: "127.0.0.1:7425",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from ~/.pomodore/config.toml, creating it
// with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile loads the configuration from configPath. A .env file in the
// working directory and POMODORE_* variables override file values.
func LoadFile(configPath string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveFile(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandDataDir(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads environment variables from path. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SaveFile writes cfg to configPath as TOML.
func SaveFile(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.Set("timer.auto_continue", cfg.Timer.AutoContinue)
	v.Set("status.tray", cfg.Status.Tray)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("control.address", cfg.Control.Address)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("theme.color_work", cfg.Theme.ColorWork)
	v.Set("theme.color_short_break", cfg.Theme.ColorShortBreak)
	v.Set("theme.color_long_break", cfg.Theme.ColorLongBreak)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_celebration", cfg.Theme.ColorCelebration)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.icon_app", cfg.Theme.IconApp)
	v.Set("theme.icon_paused", cfg.Theme.IconPaused)

	return v.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pomodore", "config.toml"), nil
}

// GetDBPath returns the path to the settings database.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "pomodore.db")
}

// GetLogPath returns the log file used while a TUI owns the terminal.
func GetLogPath(cfg *Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(cfg.Storage.DataDir, "pomodore.log")
}

func (c *Config) expandDataDir() error {
	dir := c.Storage.DataDir
	if dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	if dir == "" {
		dir = defaultDataDir
	}
	c.Storage.DataDir = filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(dir, "~"), "/"))
	return nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("timer.auto_continue", d.Timer.AutoContinue)
	v.SetDefault("status.tray", d.Status.Tray)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("control.address", d.Control.Address)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	// Theme defaults
	v.SetDefault("theme.color_work", d.Theme.ColorWork)
	v.SetDefault("theme.color_short_break", d.Theme.ColorShortBreak)
	v.SetDefault("theme.color_long_break", d.Theme.ColorLongBreak)
	v.SetDefault("theme.color_paused", d.Theme.ColorPaused)
	v.SetDefault("theme.color_celebration", d.Theme.ColorCelebration)
	v.SetDefault("theme.color_help", d.Theme.ColorHelp)
	v.SetDefault("theme.icon_app", d.Theme.IconApp)
	v.SetDefault("theme.icon_paused", d.Theme.IconPaused)
}
