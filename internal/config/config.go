package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/kyopro/internal/client"
	"github.com/mcncl/kyopro/internal/problems"
)

// Config represents the complete configuration for kyopro
type Config struct {
	API    APIConfig    `yaml:"api"`
	Browse BrowseConfig `yaml:"browse"`
	Output OutputConfig `yaml:"output"`
	Dev    DevConfig    `yaml:"dev"`
}

// APIConfig controls how the problem API is reached
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	PageSize  int           `yaml:"page_size"`
	Retries   int           `yaml:"retries"`
	StaleTime time.Duration `yaml:"stale_time"`
	Timeout   time.Duration `yaml:"timeout"`
	Backoff   time.Duration `yaml:"backoff"`

	// MaxBodySize caps the size of an API response in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`
}

// BrowseConfig holds the default listing selection
type BrowseConfig struct {
	Platform string `yaml:"platform"`
	// Category "" selects the platform's first category, "all" disables filtering.
	Category string `yaml:"category"`
	Sort     string `yaml:"sort"`
	Desc     bool   `yaml:"desc"`
	PerPage  int    `yaml:"per_page"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format string `yaml:"format"`
	Indent int    `yaml:"indent"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	opts := client.DefaultOptions()
	return &Config{
		API: APIConfig{
			BaseURL:   opts.BaseURL,
			PageSize:  opts.PageSize,
			Retries:   opts.Retries,
			StaleTime: opts.StaleTime,
			Timeout:   opts.Timeout,
			Backoff:   opts.Backoff,

			MaxBodySize: opts.MaxBody,
		},
		Browse: BrowseConfig{
			Platform: string(problems.Atcoder),
			PerPage:  problems.DefaultPageSize,
		},
		Output: OutputConfig{
			Format: FormatTable,
			Indent: 2,
		},
	}
}

// ClientOptions converts the API section into client options.
func (c *Config) ClientOptions() client.Options {
	return client.Options{
		BaseURL:   c.API.BaseURL,
		PageSize:  c.API.PageSize,
		Retries:   c.API.Retries,
		StaleTime: c.API.StaleTime,
		Timeout:   c.API.Timeout,
		Backoff:   c.API.Backoff,
		MaxBody:   c.API.MaxBodySize,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.Errors{
		"api":    c.ClientOptions().Validate(),
		"browse": c.Browse.Validate(),
		"output": c.Output.Validate(),
	}.Filter()
}

// Validate checks the listing defaults
func (b BrowseConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Platform, validation.Required, validation.By(func(value interface{}) error {
			_, err := problems.ParsePlatform(value.(string))
			return err
		})),
		validation.Field(&b.Sort, validation.By(func(value interface{}) error {
			if value.(string) == "" {
				return nil
			}
			_, err := problems.ParseSortKey(value.(string))
			return err
		})),
		validation.Field(&b.PerPage, validation.In(20, 50, 100)),
	)
}

// Validate checks the output options
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.Required, validation.In(FormatTable, FormatJSON)),
		validation.Field(&o.Indent, validation.Min(0), validation.Max(8)),
	)
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".kyopro.yml", ".kyopro.yaml", "kyopro.yml", "kyopro.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides holds values given on the command line. Zero values and nil
// pointers mean "not given".
type Overrides struct {
	BaseURL  string
	Platform string
	Category string
	Sort     string
	Desc     *bool
	PerPage  int
	Format   string
	Indent   *int
	Retries  *int
	Debug    bool
}

// Apply copies every given override onto a copy of c.
func (c *Config) Apply(o Overrides) *Config {
	merged := *c

	if o.BaseURL != "" {
		merged.API.BaseURL = o.BaseURL
	}
	if o.Retries != nil {
		merged.API.Retries = *o.Retries
	}
	if o.Platform != "" {
		merged.Browse.Platform = o.Platform
	}
	if o.Category != "" {
		merged.Browse.Category = o.Category
	}
	if o.Sort != "" {
		merged.Browse.Sort = o.Sort
	}
	if o.Desc != nil {
		merged.Browse.Desc = *o.Desc
	}
	if o.PerPage != 0 {
		merged.Browse.PerPage = o.PerPage
	}
	if o.Format != "" {
		merged.Output.Format = o.Format
	}
	if o.Indent != nil {
		merged.Output.Indent = *o.Indent
	}
	// A debug flag can only turn debugging on.
	if o.Debug {
		merged.Dev.Debug = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI flags > config file > defaults. An empty configPath skips the file.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg = cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
