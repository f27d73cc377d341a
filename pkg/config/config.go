package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PIXELRIPPER_"

// Config holds all configuration options for pixelripper
type Config struct {
	// Page fetching (plain HTTP or scripted browser)
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Per-file download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Link classification
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Stored per-host headers
	Headers HeadersConfig `yaml:"headers" json:"headers"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// FetchConfig controls how the page itself is retrieved
type FetchConfig struct {
	UseBrowser  bool          `yaml:"use_browser" json:"use_browser"`
	Browser     string        `yaml:"browser" json:"browser"`
	Headless    bool          `yaml:"headless" json:"headless"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	InitialWait time.Duration `yaml:"initial_wait" json:"initial_wait"`
	ScrollWait  time.Duration `yaml:"scroll_wait" json:"scroll_wait"`
	MaxScrolls  int           `yaml:"max_scrolls" json:"max_scrolls"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Requests per minute to any one host; 0 means unlimited
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`

	// Extensions appended to saved files whose URL has none
	ImageExtension string `yaml:"image_extension" json:"image_extension"`
	VideoExtension string `yaml:"video_extension" json:"video_extension"`
	AudioExtension string `yaml:"audio_extension" json:"audio_extension"`
}

// ClassifierConfig holds link classification options
type ClassifierConfig struct {
	Strict bool `yaml:"strict" json:"strict"`

	// Optional replacement extension lists, one extension per line
	VideoExtensionsFile string `yaml:"video_extensions_file" json:"video_extensions_file"`
	AudioExtensionsFile string `yaml:"audio_extensions_file" json:"audio_extensions_file"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	// Empty means a folder named after the page's host in the working directory
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// HeadersConfig controls where stored per-host headers live
type HeadersConfig struct {
	UseKeyring bool   `yaml:"use_keyring" json:"use_keyring"`
	StoreDir   string `yaml:"store_dir" json:"store_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Prometheus textfile written after each run; empty disables export
	Textfile string `yaml:"textfile" json:"textfile"`
}

// MissingExtensions returns the substitutes in image, video, audio order
func (d DownloadConfig) MissingExtensions() [3]string {
	return [3]string{d.ImageExtension, d.VideoExtension, d.AudioExtension}
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Fetch: FetchConfig{
			UseBrowser:  false,
			Browser:     "firefox",
			Headless:    true,
			Timeout:     30 * time.Second,
			InitialWait: time.Second,
			ScrollWait:  time.Second,
			MaxScrolls:  50,
		},
		Download: DownloadConfig{
			Timeout:        60 * time.Second,
			ImageExtension: ".jpg",
			VideoExtension: ".mp4",
			AudioExtension: ".mp3",
		},
		Classifier: ClassifierConfig{
			Strict: false,
		},
		Headers: HeadersConfig{
			UseKeyring: true,
			StoreDir:   filepath.Join(home, ".pixelripper"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from PIXELRIPPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if browser := getenv("BROWSER"); browser != "" {
		c.Fetch.Browser = browser
	}
	if v := getenv("USE_BROWSER"); v != "" {
		c.Fetch.UseBrowser = parseBool(v)
	}
	if v := getenv("HEADLESS"); v != "" {
		c.Fetch.Headless = parseBool(v)
	}
	if v := getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sFETCH_TIMEOUT: %w", envPrefix, err))
		} else {
			c.Fetch.Timeout = d
		}
	}
	if v := getenv("MAX_SCROLLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_SCROLLS: %w", envPrefix, err))
		} else {
			c.Fetch.MaxScrolls = n
		}
	}
	if v := getenv("DOWNLOAD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDOWNLOAD_TIMEOUT: %w", envPrefix, err))
		} else {
			c.Download.Timeout = d
		}
	}
	if v := getenv("REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", envPrefix, err))
		} else {
			c.Download.RequestsPerMinute = n
		}
	}
	if v := getenv("STRICT"); v != "" {
		c.Classifier.Strict = parseBool(v)
	}
	if outputDir := getenv("OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if v := getenv("USE_KEYRING"); v != "" {
		c.Headers.UseKeyring = parseBool(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := getenv("METRICS_FILE"); v != "" {
		c.Metrics.Textfile = v
	}

	return errors.Join(errs...)
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes and the first home location searched
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pixelripper", "config.yaml")
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".pixelripper.yaml",
		".pixelripper.yml",
		DefaultPath(),
		filepath.Join(home, ".pixelripper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validBrowsers = map[string]bool{
	"firefox": true, "webkit": true, "chrome": true, "chromium": true, "edge": true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if !validBrowsers[strings.ToLower(c.Fetch.Browser)] {
		errs = append(errs, fmt.Errorf("unsupported browser %q", c.Fetch.Browser))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.InitialWait < 0 || c.Fetch.ScrollWait < 0 {
		errs = append(errs, errors.New("browser waits cannot be negative"))
	}
	if c.Fetch.MaxScrolls <= 0 {
		errs = append(errs, errors.New("max scrolls must be positive"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	for _, ext := range c.Download.MissingExtensions() {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("missing-extension substitute %q must start with a dot", ext))
		}
	}

	if !c.Headers.UseKeyring && c.Headers.StoreDir == "" {
		errs = append(errs, errors.New("header store directory is required when the keyring is disabled"))
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies flags the user explicitly set. Keys are the
// long flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["selenium"].(bool); ok && v {
		c.Fetch.UseBrowser = true
	}
	if v, ok := flags["no_headless"].(bool); ok && v {
		c.Fetch.Headless = false
	}
	if v, ok := flags["browser"].(string); ok && v != "" {
		c.Fetch.Browser = v
	}
	if v, ok := flags["output_path"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["rate-limit"].(int); ok {
		c.Download.RequestsPerMinute = v
	}
	if v, ok := flags["strict"].(bool); ok && v {
		c.Classifier.Strict = true
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["quiet"].(bool); ok && v {
		c.Logging.Level = "error"
	}
	if v, ok := flags["metrics-file"].(string); ok && v != "" {
		c.Metrics.Textfile = v
	}

	c.Fetch.Browser = strings.ToLower(c.Fetch.Browser)
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	home, _ := os.UserHomeDir()
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(home, ".pixelripper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
