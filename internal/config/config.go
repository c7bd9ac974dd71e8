package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/searchgate/internal/domain/search/mode"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// Identity drivers.
const (
	DriverStatic = "static"
	DriverRedis  = "redis"
)

// Config holds the searchgate API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Search        SearchConfig        `yaml:"search"`
	LLM           LLMConfig           `yaml:"llm"`
	Auth          AuthConfig          `yaml:"auth"`
	Identity      IdentityConfig      `yaml:"identity"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port              int      `yaml:"port"`
	ReadTimeoutSec    int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int      `yaml:"write_timeout_sec"`
	ShutdownSec       int      `yaml:"shutdown_timeout_sec"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// ElasticsearchConfig holds search backend settings.
type ElasticsearchConfig struct {
	URL                  string         `yaml:"url"`
	APIKey               string         `yaml:"api_key"`
	Index                string         `yaml:"index"`
	SearchApplication    string         `yaml:"search_application"`
	UseSearchApplication bool           `yaml:"use_search_application"`
	TimeoutSec           int            `yaml:"timeout_sec"`
	MaxRetries           int            `yaml:"max_retries"` // 0 = no transport retries
	Semantic             SemanticConfig `yaml:"semantic"`
}

// SemanticConfig holds semantic (hybrid) search defaults.
type SemanticConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Model        string   `yaml:"model"`
	FieldPrefix  string   `yaml:"field_prefix"`
	HybridWeight *float64 `yaml:"hybrid_weight"` // nil = 0.7
}

// SearchConfig holds request limits and ranking switches.
type SearchConfig struct {
	DefaultPageSize  int  `yaml:"default_page_size"`
	MaxPageSize      int  `yaml:"max_page_size"`
	RoleBoostInQuery bool `yaml:"role_boost_in_query"`
}

// LLMConfig holds text-generation provider settings.
// An empty APIKey disables generation; every assistant call then falls back.
type LLMConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"` // nil = 0.7
}

// AuthConfig holds token and directory exposure settings.
type AuthConfig struct {
	JWTSecret       string      `yaml:"jwt_secret"`
	TokenTTLMin     int         `yaml:"token_ttl_min"`
	ExposeDirectory bool        `yaml:"expose_directory"`
	Users           []user.User `yaml:"users"`
}

// IdentityConfig selects the user directory backend.
type IdentityConfig struct {
	Driver           string   `yaml:"driver"` // static, redis (default: static)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestTimeoutSec <= 0 {
		c.HTTP.RequestTimeoutSec = 30
	}
	if c.Elasticsearch.TimeoutSec <= 0 {
		c.Elasticsearch.TimeoutSec = 10
	}
	if c.Elasticsearch.Semantic.FieldPrefix == "" {
		c.Elasticsearch.Semantic.FieldPrefix = "semantic_"
	}
	if c.Elasticsearch.Semantic.HybridWeight == nil {
		w := 0.7
		c.Elasticsearch.Semantic.HybridWeight = &w
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-3.5-turbo"
	}
	if c.LLM.Temperature == nil {
		t := 0.7
		c.LLM.Temperature = &t
	}
	if c.Auth.TokenTTLMin <= 0 {
		c.Auth.TokenTTLMin = 30
	}
	if c.Identity.Driver == "" {
		c.Identity.Driver = DriverStatic
	}
	if c.Identity.KeyPrefix == "" {
		c.Identity.KeyPrefix = "searchgate:"
	}
	if c.Identity.ReadinessTimeout <= 0 {
		c.Identity.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Elasticsearch.URL == "" {
		return errors.New("elasticsearch.url is required")
	}
	if c.SearchMode() == mode.DirectIndex && c.Elasticsearch.Index == "" {
		return errors.New("elasticsearch.index is required unless a search application is in use")
	}
	if c.Elasticsearch.MaxRetries < 0 {
		return fmt.Errorf("elasticsearch.max_retries must not be negative, got %d", c.Elasticsearch.MaxRetries)
	}
	if w := c.HybridWeight(); w < 0 || w > 1 {
		return fmt.Errorf("elasticsearch.semantic.hybrid_weight must be between 0 and 1, got %v", w)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if t := c.Temperature(); t < 0 || t > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", t)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Identity.Driver {
	case DriverStatic:
	case DriverRedis:
		if len(c.Identity.Addrs) == 0 {
			return errors.New("identity.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("identity.driver must be %q or %q, got %q", DriverStatic, DriverRedis, c.Identity.Driver)
	}
	for i, u := range c.Auth.Users {
		if u.Email == "" {
			return fmt.Errorf("auth.users[%d].email is required", i)
		}
	}
	return nil
}

// SearchMode returns the dispatch mode selected by the backend settings.
func (c *Config) SearchMode() mode.Mode {
	return mode.Select(c.Elasticsearch.UseSearchApplication, c.Elasticsearch.SearchApplication)
}

// HybridWeight returns the configured default hybrid weight.
func (c *Config) HybridWeight() float64 {
	if c.Elasticsearch.Semantic.HybridWeight == nil {
		return 0.7
	}
	return *c.Elasticsearch.Semantic.HybridWeight
}

// Temperature returns the configured sampling temperature.
func (c *Config) Temperature() float64 {
	if c.LLM.Temperature == nil {
		return 0.7
	}
	return *c.LLM.Temperature
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
