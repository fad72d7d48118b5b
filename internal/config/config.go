package config

import (
	"errors"
	"os"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppPort string
	AppEnv  string

	// Hosted identity/data service.
	SupabaseURL     string
	SupabaseAnonKey string
	ProviderTimeout time.Duration

	// Browser origin allowed to send credentialed requests.
	FrontendURL string

	// Optional login/signup throttle backend. Disabled when empty.
	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from the environment. The identity provider
// coordinates are required; starting without them would push the failure
// into every request, so it is reported here instead.
func Load() (Config, error) {
	cfg := Config{
		AppPort: getEnv("PORT", "3500"),
		AppEnv:  getEnv("APP_ENV", EnvDevelopment),

		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.SupabaseURL == "" {
		return cfg, errors.New("config: SUPABASE_URL is not set")
	}
	if cfg.SupabaseAnonKey == "" {
		return cfg, errors.New("config: SUPABASE_ANON_KEY is not set")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
