// Command genconfig writes config/config.<env>.yaml from the defaults and
// the values found in .env, ready to be used through CONFIG_FILE.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func validateRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is not set in your .env file. Please set it and try again", key)
	}
	if len(value) < 8 {
		return "", fmt.Errorf("%s value is too short. It must be at least 8 characters long. Current length: %d", key, len(value))
	}
	return value, nil
}

func buildConfig() (*config.Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return nil, err
	}

	cfg.Server.Environment = config.Environment(getEnvOrDefault("SERVER_ENVIRONMENT", string(cfg.Server.Environment)))
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", strings.Join(cfg.Server.AllowedOrigins, ",")), ",")

	cfg.Database.Host = getEnvOrDefault("DB_HOST", cfg.Database.Host)
	if port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", strconv.Itoa(cfg.Database.Port))); err == nil {
		cfg.Database.Port = port
	}
	cfg.Database.User = getEnvOrDefault("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvOrDefault("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvOrDefault("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnvOrDefault("DB_SSL_MODE", cfg.Database.SSLMode)

	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Weather.OpenWeatherAPIKey = getEnvOrDefault("OPENWEATHER_API_KEY", cfg.Weather.OpenWeatherAPIKey)

	apiKey, err := validateRequiredEnv("GROQ_API_KEY")
	if err != nil {
		return nil, err
	}
	cfg.LLM.APIKey = apiKey
	cfg.LLM.Model = getEnvOrDefault("LLM_MODEL", cfg.LLM.Model)

	// Left empty so the web form follows PORT when the file is loaded.
	cfg.Web.APIBaseURL = os.Getenv("WEB_API_BASE_URL")

	return cfg, nil
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Error loading .env: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := buildConfig()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Error marshaling YAML: %v\n", err)
		os.Exit(1)
	}

	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}

	if err := os.MkdirAll("config", 0755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("config/config.%s.yaml", env)
	if err := os.WriteFile(filename, yamlData, 0600); err != nil {
		fmt.Printf("Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %s\n", filename)
}
