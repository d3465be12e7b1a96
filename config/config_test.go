package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "petcafe"
kafka:
  host: "localhost"
  port: 9092
  cart_updated_topic_name: "cart.updated"
  order_updated_topic_name: "order.updated"
redis:
  host: "localhost"
  port: 6379
cafe:
  http_addr: ":8080"
  api_base_url: "https://api.petcafe.local"
  api_read_timeout_seconds: 10
  bank_code: "VCB"
upload:
  base_url: "https://files.petcafe.local"
watcher:
  http_addr: ":8082"
  abandon_after_minutes: 30
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "cart.updated", cfg.Kafka.CartUpdatedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8080", cfg.Cafe.HTTPAddr)
	require.Equal(t, "VCB", cfg.Cafe.BankCode)
	require.Equal(t, 30, cfg.Watcher.AbandonAfterMinutes)

	require.Equal(t, "postgres://u:p@localhost:5432/petcafe?sslmode=disable", cfg.PostgresDSN())
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
	require.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
