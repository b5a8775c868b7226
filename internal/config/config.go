/**
 * @description
 * This package handles configuration management for the campaign-service. It
 * uses the Viper library to read configuration from environment variables
 * (with an optional .env file), providing a centralized way to manage
 * application settings.
 *
 * Configuration is validated once at startup: a missing OpenAI API key or
 * database URL is a boot failure, never an error discovered mid-request.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the campaign-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                 string  `mapstructure:"SERVER_PORT"`
	DatabaseURL                string  `mapstructure:"DATABASE_URL"`
	RedisURL                   string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix       string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL                string  `mapstructure:"RABBITMQ_URL"`
	ClerkJWKSURL               string  `mapstructure:"CLERK_JWKS_URL"`
	OpenAIAPIKey               string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL              string  `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel                string  `mapstructure:"OPENAI_MODEL"`
	GenerationTemperature      float64 `mapstructure:"GENERATION_TEMPERATURE"`
	GenerationTimeoutSeconds   int     `mapstructure:"GENERATION_TIMEOUT_SECONDS"`
	DefaultCredits             int     `mapstructure:"DEFAULT_CREDITS"`
	GenerateRateLimitPerMinute int     `mapstructure:"GENERATE_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables, with an optional
// .env file at the given path. It fails when a required setting is absent.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "adstream:rate_limit")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("OPENAI_MODEL", "gpt-4")
	viper.SetDefault("GENERATION_TEMPERATURE", 0.7)
	viper.SetDefault("GENERATION_TIMEOUT_SECONDS", 60)
	viper.SetDefault("DEFAULT_CREDITS", 3)
	viper.SetDefault("GENERATE_RATE_LIMIT_PER_MINUTE", 10)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("CLERK_JWKS_URL")
	_ = viper.BindEnv("OPENAI_API_KEY")
	_ = viper.BindEnv("OPENAI_BASE_URL")
	_ = viper.BindEnv("OPENAI_MODEL")
	_ = viper.BindEnv("GENERATION_TEMPERATURE")
	_ = viper.BindEnv("GENERATION_TIMEOUT_SECONDS")
	_ = viper.BindEnv("DEFAULT_CREDITS")
	_ = viper.BindEnv("GENERATE_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// validate enforces the settings the service cannot run without.
func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(c.ClerkJWKSURL) == "" {
		return fmt.Errorf("CLERK_JWKS_URL is required")
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		return fmt.Errorf("GENERATION_TEMPERATURE must be between 0 and 2, got %v", c.GenerationTemperature)
	}
	if c.GenerationTimeoutSeconds <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT_SECONDS must be positive, got %d", c.GenerationTimeoutSeconds)
	}
	if c.DefaultCredits < 0 {
		return fmt.Errorf("DEFAULT_CREDITS cannot be negative, got %d", c.DefaultCredits)
	}
	return nil
}
