package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stylegenie/matcher/internal/db"
	"github.com/stylegenie/matcher/internal/domain/ranking"
	"github.com/stylegenie/matcher/internal/domain/request"
)

// Database drivers.
const (
	DriverMemory = db.DriverMemory
	DriverRedis  = db.DriverRedis
)

// Provider names.
const (
	ProviderPlaceholder = "placeholder"
	ProviderStatic      = "static"
	ProviderOpenAI      = "openai"
)

// Config holds the matcher, generator and gateway configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Features   FeaturesConfig   `yaml:"features"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	CORS       CORSConfig       `yaml:"cors"`
	Generation GenerationConfig `yaml:"generation"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds candidate store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds image embedding provider settings.
type EmbeddingConfig struct {
	Provider   string      `yaml:"provider"` // placeholder, openai (default: placeholder)
	APIKey     string      `yaml:"api_key"`
	BaseURL    string      `yaml:"base_url"`
	Model      string      `yaml:"model"`
	Dimensions int         `yaml:"dimensions"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Cache      CacheConfig `yaml:"cache"`
}

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// FeaturesConfig holds design feature extractor settings.
type FeaturesConfig struct {
	Provider   string `yaml:"provider"` // static, openai (default: static)
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RankingConfig holds scoring weights, request defaults and concurrency.
// Weights left out of the YAML keep their production values.
type RankingConfig struct {
	Product        ProductWeights `yaml:"product"`
	Atelier        AtelierWeights `yaml:"atelier"`
	MinSimilarity  *float64       `yaml:"min_similarity"`  // search gate when a request omits it
	ProductResults int            `yaml:"product_results"` // default max_results for /search
	AtelierResults int            `yaml:"atelier_results"` // default max_results for /match
	MaxResults     int            `yaml:"max_results"`     // upper bound for max_results and list limits
	Workers        int            `yaml:"workers"`         // <= 1 scores sequentially
}

// ProductWeights mirrors ranking.ProductWeights.
type ProductWeights struct {
	Similarity   float64 `yaml:"similarity"`
	Price        float64 `yaml:"price"`
	Brand        float64 `yaml:"brand"`
	Availability float64 `yaml:"availability"`
}

// AtelierWeights mirrors ranking.AtelierWeights.
type AtelierWeights struct {
	Category   float64 `yaml:"category"`
	Complexity float64 `yaml:"complexity"`
	Location   float64 `yaml:"location"`
	Budget     float64 `yaml:"budget"`
	Rating     float64 `yaml:"rating"`
	MinScore   float64 `yaml:"min_score"`
}

// CatalogConfig holds the startup seed settings.
type CatalogConfig struct {
	SeedFile string `yaml:"seed_file"` // empty = start with an empty catalog
}

// CORSConfig holds the browser origin allowlist.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GenerationConfig holds the image generation service settings.
type GenerationConfig struct {
	Port       int    `yaml:"port"`
	Provider   string `yaml:"provider"` // placeholder, openai (default: placeholder)
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Size       string `yaml:"size"` // e.g. 1024x1024
	TimeoutSec int    `yaml:"timeout_sec"`
	Workers    int    `yaml:"workers"` // concurrent provider calls per request
}

// GatewayConfig holds the API gateway settings.
type GatewayConfig struct {
	Port                 int    `yaml:"port"`
	SearchURL            string `yaml:"search_url"`
	MatchingURL          string `yaml:"matching_url"`
	GenerationURL        string `yaml:"generation_url"`
	TimeoutSec           int    `yaml:"timeout_sec"`
	GenerationTimeoutSec int    `yaml:"generation_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, applying
// defaults and validating the result.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	// Unmarshal over the defaults so partially specified sections keep
	// production values for the keys they omit.
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config carrying the production scoring weights. Other
// zero-valued settings are filled by ApplyDefaults.
func Defaults() Config {
	var c Config
	c.Ranking.Product = productWeightsFrom(ranking.DefaultProductWeights())
	c.Ranking.Atelier = atelierWeightsFrom(ranking.DefaultAtelierWeights())
	minSim := ranking.DefaultMinSimilarity
	c.Ranking.MinSimilarity = &minSim
	return c
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
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8002
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderPlaceholder
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 20
	}
	if c.Features.Provider == "" {
		c.Features.Provider = ProviderStatic
	}
	if c.Features.TimeoutSec <= 0 {
		c.Features.TimeoutSec = 20
	}
	if c.Ranking.Product == (ProductWeights{}) {
		c.Ranking.Product = productWeightsFrom(ranking.DefaultProductWeights())
	}
	if c.Ranking.Atelier == (AtelierWeights{}) {
		c.Ranking.Atelier = atelierWeightsFrom(ranking.DefaultAtelierWeights())
	}
	if c.Ranking.MinSimilarity == nil {
		minSim := ranking.DefaultMinSimilarity
		c.Ranking.MinSimilarity = &minSim
	}
	limits := request.DefaultLimits()
	if c.Ranking.MaxResults <= 0 {
		c.Ranking.MaxResults = limits.Max
	}
	if c.Ranking.ProductResults <= 0 {
		c.Ranking.ProductResults = min(limits.DefaultProduct, c.Ranking.MaxResults)
	}
	if c.Ranking.AtelierResults <= 0 {
		c.Ranking.AtelierResults = min(limits.DefaultAtelier, c.Ranking.MaxResults)
	}
	if c.Generation.Port <= 0 {
		c.Generation.Port = 8001
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderPlaceholder
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 60
	}
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = 4
	}
	if c.Gateway.Port <= 0 {
		c.Gateway.Port = 8000
	}
	if c.Gateway.TimeoutSec <= 0 {
		c.Gateway.TimeoutSec = 30
	}
	if c.Gateway.GenerationTimeoutSec <= 0 {
		c.Gateway.GenerationTimeoutSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverMemory, DriverRedis, c.Database.Driver)
	}
	switch c.Embedding.Provider {
	case ProviderPlaceholder:
	case ProviderOpenAI:
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderPlaceholder, ProviderOpenAI, c.Embedding.Provider)
	}
	switch c.Features.Provider {
	case ProviderStatic:
	case ProviderOpenAI:
		if c.Features.Model == "" {
			return fmt.Errorf("features.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("features.provider must be %q or %q, got %q",
			ProviderStatic, ProviderOpenAI, c.Features.Provider)
	}
	if err := c.Ranking.Product.ToDomain().Validate(); err != nil {
		return fmt.Errorf("ranking.product: %w", err)
	}
	if err := c.Ranking.Atelier.ToDomain().Validate(); err != nil {
		return fmt.Errorf("ranking.atelier: %w", err)
	}
	if ms := c.Ranking.MinSimilarity; ms != nil && (*ms < -1 || *ms > 1) {
		return fmt.Errorf("ranking.min_similarity must be between -1 and 1, got %v", *ms)
	}
	if err := c.Ranking.Limits().Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if c.Ranking.Workers < 0 {
		return fmt.Errorf("ranking.workers must be non-negative, got %d", c.Ranking.Workers)
	}
	return nil
}

// ValidateGateway checks the settings the gateway binary needs.
func (c *Config) ValidateGateway() error {
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be between 1 and 65535, got %d", c.Gateway.Port)
	}
	for name, u := range map[string]string{
		"search_url":     c.Gateway.SearchURL,
		"matching_url":   c.Gateway.MatchingURL,
		"generation_url": c.Gateway.GenerationURL,
	} {
		if u == "" {
			return fmt.Errorf("gateway.%s is required", name)
		}
	}
	return nil
}

// ValidateGenerator checks the settings the image generation binary needs.
func (c *Config) ValidateGenerator() error {
	if c.Generation.Port <= 0 || c.Generation.Port > 65535 {
		return fmt.Errorf("generation.port must be between 1 and 65535, got %d", c.Generation.Port)
	}
	switch c.Generation.Provider {
	case ProviderPlaceholder:
	case ProviderOpenAI:
		if c.Generation.Model == "" {
			return fmt.Errorf("generation.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("generation.provider must be %q or %q, got %q",
			ProviderPlaceholder, ProviderOpenAI, c.Generation.Provider)
	}
	return nil
}

// Limits returns the configured request result limits.
func (r RankingConfig) Limits() request.Limits {
	return request.Limits{
		DefaultProduct: r.ProductResults,
		DefaultAtelier: r.AtelierResults,
		Max:            r.MaxResults,
	}
}

// DefaultMinSimilarity returns the configured search gate.
func (r RankingConfig) DefaultMinSimilarity() float64 {
	if r.MinSimilarity == nil {
		return ranking.DefaultMinSimilarity
	}
	return *r.MinSimilarity
}

func productWeightsFrom(w ranking.ProductWeights) ProductWeights {
	return ProductWeights{
		Similarity:   w.Similarity,
		Price:        w.Price,
		Brand:        w.Brand,
		Availability: w.Availability,
	}
}

func atelierWeightsFrom(w ranking.AtelierWeights) AtelierWeights {
	return AtelierWeights{
		Category:   w.Category,
		Complexity: w.Complexity,
		Location:   w.Location,
		Budget:     w.Budget,
		Rating:     w.Rating,
		MinScore:   w.MinScore,
	}
}

// ToDomain converts to scoring weights.
func (w ProductWeights) ToDomain() ranking.ProductWeights {
	return ranking.ProductWeights{
		Similarity:   w.Similarity,
		Price:        w.Price,
		Brand:        w.Brand,
		Availability: w.Availability,
	}
}

// ToDomain converts to scoring weights.
func (w AtelierWeights) ToDomain() ranking.AtelierWeights {
	return ranking.AtelierWeights{
		Category:   w.Category,
		Complexity: w.Complexity,
		Location:   w.Location,
		Budget:     w.Budget,
		Rating:     w.Rating,
		MinScore:   w.MinScore,
	}
}

// Timeout returns a duration for a seconds setting.
func Timeout(sec int) time.Duration {
	return time.Duration(sec) * time.Second
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
