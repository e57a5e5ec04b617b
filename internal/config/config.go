package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sheikh-saqib/gold-token-ledger/internal/ledger"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage"
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPAddr       string
	TokenOwner     string
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	KafkaBrokers   []string
	KafkaTopic     string
	LogLevel       string
	LogDevelopment bool
}

// Load reads variables from the given .env files (missing files are ignored)
// and then from the process environment, which takes precedence.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	return FromLookup(os.LookupEnv)
}

// LoadStore is Load for commands that only touch the store, such as migrate.
// TOKEN_OWNER is read but not required.
func LoadStore(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	cfg, err := parse(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.ValidateStore()
}

func loadEnvFiles(envFiles []string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// FromLookup builds a Config from lookup, applying defaults and validating.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg, err := parse(lookup)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func parse(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		HTTPAddr:    get("HTTP_ADDR", ":8080"),
		TokenOwner:  get("TOKEN_OWNER", ""),
		StoreDriver: get("STORE_DRIVER", storage.DriverMemory),
		DatabaseURL: get("DATABASE_URL", ""),
		SQLitePath:  get("SQLITE_PATH", "gold_token.db"),
		KafkaTopic:  get("KAFKA_TOPIC", ledger.DefaultEventTopic),
		LogLevel:    get("LOG_LEVEL", "info"),
	}
	for _, broker := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	dev, err := strconv.ParseBool(get("LOG_DEVELOPMENT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_DEVELOPMENT: %w", err)
	}
	cfg.LogDevelopment = dev
	return cfg, nil
}

// Validate checks everything serve needs: the owner and the store settings.
func (c Config) Validate() error {
	if c.TokenOwner == "" {
		return errors.New("TOKEN_OWNER is required")
	}
	if _, err := models.NormalizeAddress(c.TokenOwner); err != nil {
		return fmt.Errorf("TOKEN_OWNER: %w", err)
	}
	return c.ValidateStore()
}

// ValidateStore checks only the settings storage.Open depends on.
func (c Config) ValidateStore() error {
	switch c.StoreDriver {
	case storage.DriverMemory, storage.DriverSQLite:
	case storage.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q: must be memory, postgres or sqlite", c.StoreDriver)
	}
	return nil
}

func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:      c.StoreDriver,
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
	}
}
