package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Browser BrowserConfig `yaml:"browser" envconfig:"BROWSER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// SourceConfig describes the financial-data site the scraper talks to
type SourceConfig struct {
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://stockanalysis.com"`
	HistoryPath string        `yaml:"history_path" envconfig:"HISTORY_PATH" default:"/stocks/%s/history/"`
	UserAgent   string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// BrowserConfig contains chromedp session configuration
type BrowserConfig struct {
	Headless    bool          `yaml:"headless" envconfig:"HEADLESS" default:"true"`
	WindowSize  string        `yaml:"window_size" envconfig:"WINDOW_SIZE" default:"1920,1080"`
	WaitTimeout time.Duration `yaml:"wait_timeout" envconfig:"WAIT_TIMEOUT" default:"20s"`
	// RenderDelay is the pause after clicking a date-range control, giving
	// the page time to re-render the table.
	RenderDelay time.Duration `yaml:"render_delay" envconfig:"RENDER_DELAY" default:"2s"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/stockhist.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("STOCKHIST", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. Env values win when
// they differ from the envconfig defaults; since envconfig fills every
// field from its default tag, a defaulted env value yields to the file.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()
	merged := envConfig

	mergeString(&merged.Source.BaseURL, fileConfig.Source.BaseURL, def.Source.BaseURL)
	mergeString(&merged.Source.HistoryPath, fileConfig.Source.HistoryPath, def.Source.HistoryPath)
	mergeString(&merged.Source.UserAgent, fileConfig.Source.UserAgent, def.Source.UserAgent)
	mergeDuration(&merged.Source.Timeout, fileConfig.Source.Timeout, def.Source.Timeout)
	mergeString(&merged.Browser.WindowSize, fileConfig.Browser.WindowSize, def.Browser.WindowSize)
	mergeDuration(&merged.Browser.WaitTimeout, fileConfig.Browser.WaitTimeout, def.Browser.WaitTimeout)
	mergeDuration(&merged.Browser.RenderDelay, fileConfig.Browser.RenderDelay, def.Browser.RenderDelay)
	mergeString(&merged.Logging.Level, fileConfig.Logging.Level, def.Logging.Level)
	mergeString(&merged.Logging.Format, fileConfig.Logging.Format, def.Logging.Format)
	mergeString(&merged.Logging.Output, fileConfig.Logging.Output, def.Logging.Output)
	mergeString(&merged.Logging.FilePath, fileConfig.Logging.FilePath, def.Logging.FilePath)
	mergeString(&merged.Paths.ReportsDir, fileConfig.Paths.ReportsDir, def.Paths.ReportsDir)
	mergeString(&merged.Paths.LogsDir, fileConfig.Paths.LogsDir, def.Paths.LogsDir)

	return merged
}

// mergeString keeps the env value when it was set to something other than
// the default; a defaulted or empty env value yields to a set file value.
func mergeString(env *string, file, def string) {
	if *env != "" && *env != def {
		return
	}
	if file != "" {
		*env = file
	}
}

// mergeDuration is mergeString for duration fields.
func mergeDuration(env *time.Duration, file, def time.Duration) {
	if *env != 0 && *env != def {
		return
	}
	if file != 0 {
		*env = file
	}
}

// GetReportPath returns the path of an output file inside the reports dir.
func (c *Config) GetReportPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ReportsDir, name)
}

// EnsureDirectories creates the configured directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ReportsDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source base URL must not be empty")
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}

	if c.Browser.WaitTimeout <= 0 {
		return fmt.Errorf("browser wait timeout must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/stockhist.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:     "https://stockanalysis.com",
			HistoryPath: "/stocks/%s/history/",
			UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timeout:     30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:    true,
			WindowSize:  "1920,1080",
			WaitTimeout: 20 * time.Second,
			RenderDelay: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/stockhist.log",
		},
		Paths: PathsConfig{
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
	}
}
