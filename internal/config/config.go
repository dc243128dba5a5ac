package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvDir      = "CONTRACT_DESK_DIR"
	EnvPort     = "CONTRACT_DESK_PORT"
	EnvLogLevel = "CONTRACT_DESK_LOG_LEVEL"
)

const (
	configFileName = "config.yaml"
	logDirName     = "logs"

	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultRiskProfile = "standard"
	DefaultDraftDelay  = 2 * time.Second
	DefaultReviewDelay = 2500 * time.Millisecond
)

// Delays are the simulated processing times
type Delays struct {
	Draft    time.Duration `yaml:"draft"`
	Analysis time.Duration `yaml:"analysis"`
}

// Config is the user configuration stored in config.yaml
type Config struct {
	Port               int    `yaml:"port"`
	LibraryDir         string `yaml:"library_dir,omitempty"`
	WatchLibrary       bool   `yaml:"watch_library"`
	LogLevel           string `yaml:"log_level"`
	DefaultRiskProfile string `yaml:"default_risk_profile"`
	Delays             Delays `yaml:"delays"`

	baseDir string
}

// Default returns the built-in configuration rooted at baseDir
func Default(baseDir string) *Config {
	return &Config{
		Port:               DefaultPort,
		LogLevel:           DefaultLogLevel,
		DefaultRiskProfile: DefaultRiskProfile,
		Delays: Delays{
			Draft:    DefaultDraftDelay,
			Analysis: DefaultReviewDelay,
		},
		baseDir: baseDir,
	}
}

// BaseDir resolves the data directory from CONTRACT_DESK_DIR or the home directory
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".contract-desk"), nil
}

// Load reads config.yaml from baseDir (or BaseDir() when empty), falling back
// to defaults when the file does not exist, then applies environment overrides
func Load(baseDir string) (*Config, error) {
	if baseDir == "" {
		var err error
		if baseDir, err = BaseDir(); err != nil {
			return nil, err
		}
	}

	cfg := Default(baseDir)
	data, err := os.ReadFile(cfg.Path())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", cfg.Path(), err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Delays.Draft < 0 || c.Delays.Analysis < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(c.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return os.WriteFile(c.Path(), data, 0644)
}

// BaseDirectory is the data directory the configuration was loaded from
func (c *Config) BaseDirectory() string {
	return c.baseDir
}

// Path is the location of config.yaml
func (c *Config) Path() string {
	return filepath.Join(c.baseDir, configFileName)
}

// LogDir is where file logs are written
func (c *Config) LogDir() string {
	return filepath.Join(c.baseDir, logDirName)
}

// ResolvedLibraryDir expands a relative library_dir against the base directory
func (c *Config) ResolvedLibraryDir() string {
	if c.LibraryDir == "" || filepath.IsAbs(c.LibraryDir) {
		return c.LibraryDir
	}
	return filepath.Join(c.baseDir, c.LibraryDir)
}
