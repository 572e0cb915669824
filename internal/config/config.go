/**
 * @description
 * Configuration management for the fee service.
 */
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	InternalAPIKey  string `mapstructure:"INTERNAL_API_KEY"`
	RabbitMQURL     string `mapstructure:"RABBITMQ_URL"`
	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeAPIBase   string `mapstructure:"STRIPE_API_BASE"`
	TaxEnabled      bool   `mapstructure:"TAX_ENABLED"`
	AutomaticTax    bool   `mapstructure:"AUTOMATIC_TAX"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TAX_ENABLED", true)
	viper.SetDefault("AUTOMATIC_TAX", true)
	viper.AutomaticEnv()

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("STRIPE_SECRET_KEY")
	_ = viper.BindEnv("STRIPE_API_BASE")
	_ = viper.BindEnv("TAX_ENABLED")
	_ = viper.BindEnv("AUTOMATIC_TAX")

	err = viper.Unmarshal(&config)
	if port := os.Getenv("PORT"); port != "" {
		config.ServerPort = port
	}
	return
}
