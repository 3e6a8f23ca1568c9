package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"refdesk/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version   int             `toml:"version"`
	API       APISettings     `toml:"api"`
	UI        UISettings      `toml:"ui"`
	Log       LogSettings     `toml:"log"`
	Storage   StorageSettings `toml:"storage"`
	Resources ResourceSource  `toml:"resources"`
}

// APISettings describes the backend
type APISettings struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	SettleDelay     Duration `toml:"settle_delay"`
	PageSize        int      `toml:"page_size"`
	DefaultResource string   `toml:"default_resource"`
}

// LogSettings controls the file logger
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// StorageSettings holds local state file locations
type StorageSettings struct {
	JournalPath string `toml:"journal_path"`
	TokenPath   string `toml:"token_path"`
}

// ResourceSource points at an optional resource definition override
type ResourceSource struct {
	File string `toml:"file"`
}

// Duration is a time.Duration that reads and writes as "250ms", "30s" in TOML
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// Dir returns the refdesk config directory
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "refdesk")
}

// NewConfigService creates a config service reading path, or the default
// location when path is empty. bus may be nil.
func NewConfigService(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = filepath.Join(Dir(), "config.toml")
	}
	return &configService{filePath: path, bus: bus}
}

func (cs *configService) Path() string { return cs.filePath }

// Load loads the configuration from file, falling back to defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath, BaseURL: cfg.API.BaseURL})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Missing keys keep their defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the program cannot work with
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.Timeout < 0 || c.UI.SettleDelay < 0 {
		return errors.New("durations must not be negative")
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Version: 1,
		API: APISettings{
			BaseURL: "http://localhost:8080",
			Timeout: Duration(30 * time.Second),
		},
		UI: UISettings{
			PageSize:        20,
			DefaultResource: "recommended-questions",
		},
		Log: LogSettings{
			File: filepath.Join(dir, "refdesk.log"),
		},
		Storage: StorageSettings{
			JournalPath: filepath.Join(dir, "journal.db"),
			TokenPath:   filepath.Join(dir, "token"),
		},
	}
}
