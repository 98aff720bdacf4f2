// Package config loads environment-variable configuration shared by the
// CLI, server, and ingestion adapters, in the style of owl-common's
// per-domain config structs.
package config

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig configures the snapshot cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// MQTTConfig configures the sample-ingestion transport.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// HTTPConfig configures the reproducibility HTTP surface.
type HTTPConfig struct {
	Addr     string
	APIToken string
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates all ambient configuration for respirosync's service
// binaries. The core engine package never reads any of this.
type Config struct {
	Redis RedisConfig
	MQTT  MQTTConfig
	HTTP  HTTPConfig
	Log   LogConfig
}

// Load reads Config from the environment, falling back to production-
// sane defaults for anything unset.
func Load() *Config {
	cfg := &Config{}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.TTL = getEnvDuration("SNAPSHOT_TTL", 10*time.Second)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "respirosync-ingest")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "respirosync/+/samples")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.APIToken = getEnv("API_TOKEN", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
