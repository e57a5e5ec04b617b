package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"TOKEN_OWNER": owner}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "gold_token.db", cfg.SQLitePath)
	assert.Equal(t, "gold_token_events", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDevelopment)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"TOKEN_OWNER":     owner,
		"HTTP_ADDR":       ":9090",
		"STORE_DRIVER":    "postgres",
		"DATABASE_URL":    "postgres://ledger@localhost/ledger?sslmode=disable",
		"KAFKA_BROKERS":   "kafka-1:9092, kafka-2:9092,",
		"LOG_DEVELOPMENT": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.LogDevelopment)
	assert.Equal(t, "postgres", cfg.StorageOptions().Driver)
}

func TestFromLookup_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing owner":   {},
		"bad owner":       {"TOKEN_OWNER": "alice"},
		"unknown driver":  {"TOKEN_OWNER": owner, "STORE_DRIVER": "redis"},
		"postgres no url": {"TOKEN_OWNER": owner, "STORE_DRIVER": "postgres"},
		"bad bool":        {"TOKEN_OWNER": owner, "LOG_DEVELOPMENT": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TOKEN_OWNER="+owner+"\nHTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("TOKEN_OWNER", "")
	t.Setenv("HTTP_ADDR", "")
	os.Unsetenv("TOKEN_OWNER")
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.TokenOwner)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("TOKEN_OWNER", owner)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoadStore_OwnerNotRequired(t *testing.T) {
	t.Setenv("TOKEN_OWNER", "")
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := LoadStore(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Empty(t, cfg.TokenOwner)
	assert.Equal(t, "sqlite", cfg.StorageOptions().Driver)

	_, err = Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidateStore(t *testing.T) {
	assert.NoError(t, Config{StoreDriver: "memory"}.ValidateStore())
	assert.NoError(t, Config{StoreDriver: "postgres", DatabaseURL: "postgres://localhost/ledger"}.ValidateStore())
	assert.Error(t, Config{StoreDriver: "postgres"}.ValidateStore())
	assert.Error(t, Config{StoreDriver: "redis"}.ValidateStore())
}
