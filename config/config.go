// Package config loads and validates application configuration from
// environment variables and an optional config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies lists CIDRs or IPs whose X-Forwarded-For is honoured.
	// Loopback is trusted by default since the form page calls the API
	// through it on behalf of the browser. Empty means forwarded headers are
	// ignored.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
}

// URL returns a postgres:// connection URL usable by pgx and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// WeatherConfig configures the weather providers. OpenWeather is only used
// as a fallback and only when an API key is present.
type WeatherConfig struct {
	GeocodingURL      string `mapstructure:"GEOCODING_URL" yaml:"geocoding_url"`
	NominatimURL      string `mapstructure:"NOMINATIM_URL" yaml:"nominatim_url"`
	ForecastURL       string `mapstructure:"FORECAST_URL" yaml:"forecast_url"`
	OpenWeatherURL    string `mapstructure:"OPENWEATHER_URL" yaml:"openweather_url"`
	OpenWeatherAPIKey string `mapstructure:"OPENWEATHER_API_KEY" yaml:"openweather_api_key"`
	UserAgent         string `mapstructure:"USER_AGENT" yaml:"user_agent"`
	TimeoutSeconds    int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	CacheTTLMinutes   int    `mapstructure:"CACHE_TTL_MINUTES" yaml:"cache_ttl_minutes"`
}

// LLMConfig configures the OpenAI-compatible completion endpoint (Groq by default).
type LLMConfig struct {
	APIKey         string  `mapstructure:"API_KEY" yaml:"api_key"`
	BaseURL        string  `mapstructure:"BASE_URL" yaml:"base_url"`
	Model          string  `mapstructure:"MODEL" yaml:"model"`
	Temperature    float32 `mapstructure:"TEMPERATURE" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"MAX_TOKENS" yaml:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// WebConfig configures the server-rendered itinerary form.
type WebConfig struct {
	// APIBaseURL is where the form posts itinerary requests. Defaults to this
	// server's own listener.
	APIBaseURL        string `mapstructure:"API_BASE_URL" yaml:"api_base_url"`
	RequestsPerMinute int    `mapstructure:"REQUESTS_PER_MINUTE" yaml:"requests_per_minute"`
	Burst             int    `mapstructure:"BURST" yaml:"burst"`
}

// RateLimitConfig holds the redis-backed limits of the itinerary API.
type RateLimitConfig struct {
	ItineraryRequestsPerWindow int `mapstructure:"ITINERARY_REQUESTS_PER_WINDOW" yaml:"itinerary_requests_per_window"`
	WindowSeconds              int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	Weather   WeatherConfig   `mapstructure:"WEATHER" yaml:"weather"`
	LLM       LLMConfig       `mapstructure:"LLM" yaml:"llm"`
	Web       WebConfig       `mapstructure:"WEB" yaml:"web"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{"127.0.0.1", "::1"})
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "itineraries_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 5)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("WEATHER.GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("WEATHER.NOMINATIM_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("WEATHER.FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER.OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("WEATHER.OPENWEATHER_API_KEY", "")
	v.SetDefault("WEATHER.USER_AGENT", "ItineraryBuilder/1.0")
	v.SetDefault("WEATHER.TIMEOUT_SECONDS", 10)
	v.SetDefault("WEATHER.CACHE_TTL_MINUTES", 30)
	v.SetDefault("LLM.API_KEY", "")
	v.SetDefault("LLM.BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM.MODEL", "llama3-8b-8192")
	v.SetDefault("LLM.TEMPERATURE", 0.7)
	v.SetDefault("LLM.MAX_TOKENS", 2000)
	v.SetDefault("LLM.TIMEOUT_SECONDS", 60)
	v.SetDefault("WEB.API_BASE_URL", "")
	v.SetDefault("WEB.REQUESTS_PER_MINUTE", 30)
	v.SetDefault("WEB.BURST", 5)
	v.SetDefault("RATE_LIMIT.ITINERARY_REQUESTS_PER_WINDOW", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")
}

// bindEnvVars binds config keys to environment variables.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

var envBindings = [][2]string{
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"WEATHER.OPENWEATHER_API_KEY", "OPENWEATHER_API_KEY"},
	{"WEATHER.TIMEOUT_SECONDS", "WEATHER_TIMEOUT_SECONDS"},
	{"WEATHER.CACHE_TTL_MINUTES", "WEATHER_CACHE_TTL_MINUTES"},
	{"LLM.API_KEY", "GROQ_API_KEY"},
	{"LLM.BASE_URL", "LLM_BASE_URL"},
	{"LLM.MODEL", "LLM_MODEL"},
	{"LLM.TIMEOUT_SECONDS", "LLM_TIMEOUT_SECONDS"},
	{"WEB.API_BASE_URL", "WEB_API_BASE_URL"},
	{"WEB.REQUESTS_PER_MINUTE", "WEB_REQUESTS_PER_MINUTE"},
	{"RATE_LIMIT.ITINERARY_REQUESTS_PER_WINDOW", "RATE_LIMIT_ITINERARY_REQUESTS_PER_WINDOW"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
}

// LoadConfig reads defaults, the optional CONFIG_FILE and environment
// variables, then validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	applyDerivedDefaults(&cfg)

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"db", logger.MaskConnectionString(cfg.Database.URL()),
		"redis_address", cfg.Redis.Address,
		"llm_base_url", cfg.LLM.BaseURL,
		"llm_model", cfg.LLM.Model,
		"llm_api_key", logger.MaskSensitiveString(cfg.LLM.APIKey, 4, 4),
		"web_api_base_url", cfg.Web.APIBaseURL,
	)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration built from defaults only, without
// reading the environment or validating.
func DefaultConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	applyDerivedDefaults(&cfg)
	return &cfg, nil
}

func applyDerivedDefaults(cfg *Config) {
	if cfg.Web.APIBaseURL == "" {
		cfg.Web.APIBaseURL = "http://127.0.0.1:" + cfg.Server.Port
	}
	cfg.Web.APIBaseURL = strings.TrimRight(cfg.Web.APIBaseURL, "/")
}

func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if _, err := url.ParseRequestURI(cfg.LLM.BaseURL); err != nil {
		return fmt.Errorf("invalid LLM base URL: %w", err)
	}
	if cfg.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM max tokens must be positive")
	}

	if cfg.Weather.TimeoutSeconds <= 0 {
		return fmt.Errorf("weather timeout must be positive")
	}
	if cfg.Weather.CacheTTLMinutes < 0 {
		return fmt.Errorf("weather cache TTL must not be negative")
	}
	if cfg.Weather.OpenWeatherAPIKey == "" {
		log.Info("OpenWeather API key not set, weather fallback provider disabled")
	}

	if _, err := url.ParseRequestURI(cfg.Web.APIBaseURL); err != nil {
		return fmt.Errorf("invalid web API base URL: %w", err)
	}
	if cfg.Web.RequestsPerMinute <= 0 || cfg.Web.Burst <= 0 {
		return fmt.Errorf("web rate limit must be positive")
	}

	if cfg.RateLimit.ItineraryRequestsPerWindow <= 0 {
		return fmt.Errorf("itinerary rate limit must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}
	return nil
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
