// config/config.go

// Package config loads picklist.yaml (overridable by PICKLIST_* environment
// variables) and keeps the active settings for the handlers.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `mapstructure:"app" yaml:"app" json:"app"`
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend" json:"backend"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache" json:"cache"`
	Import  ImportConfig  `mapstructure:"import" yaml:"import" json:"import"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export" json:"export"`
}

type AppConfig struct {
	Port        int    `mapstructure:"port" yaml:"port" json:"port"`
	Env         string `mapstructure:"env" yaml:"env" json:"env"`
	OpenBrowser bool   `mapstructure:"open_browser" yaml:"open_browser" json:"openBrowser"`
	// BrowserBin is the Chrome binary used for printing; empty lets rod find or download one.
	BrowserBin string `mapstructure:"browser_bin" yaml:"browser_bin" json:"browserBin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`    // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format" json:"format"` // json, console
	Output string `mapstructure:"output" yaml:"output" json:"output"` // stdout, stderr, or file path
}

type BackendConfig struct {
	Kind       string        `mapstructure:"kind" yaml:"kind" json:"kind"` // sheets, table
	ScriptURL  string        `mapstructure:"script_url" yaml:"script_url" json:"scriptUrl"`
	Driver     string        `mapstructure:"driver" yaml:"driver" json:"driver"` // postgres, sqlite3
	DSN        string        `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	Table      string        `mapstructure:"table" yaml:"table" json:"table"`
	NotesTable string        `mapstructure:"notes_table" yaml:"notes_table" json:"notesTable"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

type CacheConfig struct {
	DBPath               string        `mapstructure:"db_path" yaml:"db_path" json:"dbPath"`
	RedisAddr            string        `mapstructure:"redis_addr" yaml:"redis_addr" json:"redisAddr"`
	RedisPassword        string        `mapstructure:"redis_password" yaml:"redis_password" json:"-"`
	RedisDB              int           `mapstructure:"redis_db" yaml:"redis_db" json:"redisDb"`
	SnapshotKey          string        `mapstructure:"snapshot_key" yaml:"snapshot_key" json:"snapshotKey"`
	ReloadOnWriteFailure bool          `mapstructure:"reload_on_write_failure" yaml:"reload_on_write_failure" json:"reloadOnWriteFailure"`
	WriteTimeout         time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"writeTimeout"`
	NotificationLimit    int           `mapstructure:"notification_limit" yaml:"notification_limit" json:"notificationLimit"`
}

type ImportConfig struct {
	WatchFolder string        `mapstructure:"watch_folder" yaml:"watch_folder" json:"watchFolder"`
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type ExportConfig struct {
	// Layout orders the notes export columns: "vfid" or "location" first.
	Layout string `mapstructure:"layout" yaml:"layout" json:"layout"`
}

const (
	DefaultConfigFile = "picklist.yaml"
	envPrefix         = "PICKLIST"
)

var (
	cfg     = Default()
	cfgPath = DefaultConfigFile
	mu      sync.RWMutex
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		App: AppConfig{Port: 8080, Env: "development", OpenBrowser: true},
		Log: LogConfig{Level: "info", Format: "console", Output: "stdout"},
		Backend: BackendConfig{
			Kind:       "sheets",
			Table:      "picklist",
			NotesTable: "item_notes",
			Timeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			DBPath:               "data/picklist.db",
			SnapshotKey:          "picklist:snapshot",
			ReloadOnWriteFailure: true,
			WriteTimeout:         30 * time.Second,
			NotificationLimit:    100,
		},
		Import: ImportConfig{Debounce: 500 * time.Millisecond},
		Export: ExportConfig{Layout: "vfid"},
	}
}

// Load reads path (a missing file is fine), applies PICKLIST_* overrides and validates.
func Load(path string) (Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("app.port", d.App.Port)
	v.SetDefault("app.env", d.App.Env)
	v.SetDefault("app.open_browser", d.App.OpenBrowser)
	v.SetDefault("app.browser_bin", d.App.BrowserBin)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("backend.kind", d.Backend.Kind)
	v.SetDefault("backend.script_url", d.Backend.ScriptURL)
	v.SetDefault("backend.driver", d.Backend.Driver)
	v.SetDefault("backend.dsn", d.Backend.DSN)
	v.SetDefault("backend.table", d.Backend.Table)
	v.SetDefault("backend.notes_table", d.Backend.NotesTable)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("cache.db_path", d.Cache.DBPath)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", d.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.snapshot_key", d.Cache.SnapshotKey)
	v.SetDefault("cache.reload_on_write_failure", d.Cache.ReloadOnWriteFailure)
	v.SetDefault("cache.write_timeout", d.Cache.WriteTimeout)
	v.SetDefault("cache.notification_limit", d.Cache.NotificationLimit)
	v.SetDefault("import.watch_folder", d.Import.WatchFolder)
	v.SetDefault("import.debounce", d.Import.Debounce)
	v.SetDefault("export.layout", d.Export.Layout)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port %d is out of range", c.App.Port)
	}
	switch c.Backend.Kind {
	case "sheets":
	case "table":
		if c.Backend.Driver != "postgres" && c.Backend.Driver != "sqlite3" {
			return fmt.Errorf("backend.driver must be postgres or sqlite3, got %q", c.Backend.Driver)
		}
		if c.Backend.DSN == "" {
			return errors.New("backend.dsn is required for the table backend")
		}
	default:
		return fmt.Errorf("backend.kind must be sheets or table, got %q", c.Backend.Kind)
	}
	if c.Backend.Timeout <= 0 || c.Cache.WriteTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.Export.Layout != "vfid" && c.Export.Layout != "location" {
		return fmt.Errorf("export.layout must be vfid or location, got %q", c.Export.Layout)
	}
	return nil
}

// LoadConfig loads path and makes it the active configuration.
func LoadConfig(path string) (Config, error) {
	c, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	mu.Lock()
	cfg = c
	cfgPath = path
	mu.Unlock()
	return c, nil
}

// SaveConfig validates newCfg, writes it to the loaded file as YAML and activates it.
func SaveConfig(newCfg Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if newCfg.Cache.RedisPassword == "" {
		newCfg.Cache.RedisPassword = cfg.Cache.RedisPassword
	}
	out, err := yaml.Marshal(newCfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(cfgPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(cfgPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfgPath, err)
	}
	cfg = newCfg
	return nil
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// SetConfig activates c without writing it anywhere.
func SetConfig(c Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// Path is the file SaveConfig writes to.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return cfgPath
}
