// Package config loads service configuration from PLANNER_-prefixed
// environment variables via viper, with development-friendly defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// AIConfig holds the route-generation service settings.
type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// GeoConfig holds geocoding settings.
type GeoConfig struct {
	APIKey   string
	Region   string
	CacheTTL time.Duration
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// ServiceConfig holds all configuration for the planner service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	DefaultCurrency string
	DBConfig        DatabaseConfig
	JWTConfig       JWTConfig
	KafkaConfig     KafkaConfig
	AIConfig        AIConfig
	GeoConfig       GeoConfig
	CORSConfig      CORSConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANNER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &ServiceConfig{
		Port:            ":" + v.GetString("SERVICE_PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		DefaultCurrency: v.GetString("DEFAULT_CURRENCY"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		AIConfig: AIConfig{
			BaseURL:     v.GetString("AI_BASE_URL"),
			APIKey:      v.GetString("AI_API_KEY"),
			Model:       v.GetString("AI_MODEL"),
			Temperature: v.GetFloat64("AI_TEMPERATURE"),
			Timeout:     time.Duration(v.GetInt("AI_TIMEOUT_SECONDS")) * time.Second,
		},
		GeoConfig: GeoConfig{
			APIKey:   v.GetString("GEO_API_KEY"),
			Region:   v.GetString("GEO_REGION"),
			CacheTTL: time.Duration(v.GetInt("GEO_CACHE_TTL_MINUTES")) * time.Minute,
		},
		CORSConfig: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8083")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEFAULT_CURRENCY", "INR")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "planner")
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("JWT_SECRET", "dev-secret-change-me")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "ecocommute.")

	v.SetDefault("AI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TEMPERATURE", 0.2)
	v.SetDefault("AI_TIMEOUT_SECONDS", 45)

	v.SetDefault("GEO_REGION", "in")
	v.SetDefault("GEO_CACHE_TTL_MINUTES", 30)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// validate rejects configurations that must not leave development defaults in place.
func (c *ServiceConfig) validate() error {
	if c.AppEnv == "development" {
		return nil
	}

	var missing []string
	if c.JWTConfig.Secret == "" || c.JWTConfig.Secret == "dev-secret-change-me" {
		missing = append(missing, "PLANNER_JWT_SECRET")
	}
	if c.AIConfig.APIKey == "" {
		missing = append(missing, "PLANNER_AI_API_KEY")
	}
	if c.GeoConfig.APIKey == "" {
		missing = append(missing, "PLANNER_GEO_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
