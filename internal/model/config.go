package model

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port           int    `validate:"min=1,max=65535"`
	ClientIpHeader string `validate:"required"`
	Store          StoreConfig
}

type StoreConfig struct {
	Url   string
	Key   string
	Table string `validate:"required"`
}

// Enabled reports whether both the store address and its access key are set.
// Persistence is skipped entirely otherwise.
func (c StoreConfig) Enabled() bool {
	return c.Url != "" && c.Key != ""
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads the tracking configuration from the environment.
func LoadConfig() (Config, error) {
	config := Config{
		Port:           8080,
		ClientIpHeader: getEnv("TRACK_CLIENT_IP_HEADER", "X-Nf-Client-Connection-Ip"),
		Store: StoreConfig{
			Url:   getEnv("TRACK_STORE_URL", os.Getenv("SUPABASE_URL")),
			Key:   getEnv("TRACK_STORE_KEY", os.Getenv("SUPABASE_ANON_KEY")),
			Table: getEnv("TRACK_STORE_TABLE", "visitor_tracking"),
		},
	}

	if port := os.Getenv("TRACK_API_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("TRACK_API_PORT must be a number, got %q", port)
		}
		config.Port = p
	}

	if err := configValidator.Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	// A half configured store is skipped, so its url only matters once both
	// credentials are present.
	if config.Store.Enabled() {
		if err := configValidator.Var(config.Store.Url, "url"); err != nil {
			return Config{}, fmt.Errorf("invalid store url %q: %w", config.Store.Url, err)
		}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
