package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Cafe     CafeConfig     `yaml:"cafe"`
	Upload   UploadConfig   `yaml:"upload"`
	Watcher  WatcherConfig  `yaml:"watcher"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	CartUpdatedTopicName  string `yaml:"cart_updated_topic_name"`
	OrderUpdatedTopicName string `yaml:"order_updated_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CafeConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	// Empty base url switches the console to the in-memory backend.
	APIBaseURL            string `yaml:"api_base_url"`
	APIReadTimeoutSeconds int    `yaml:"api_read_timeout_seconds"`

	CartTTLHours            int    `yaml:"cart_ttl_hours"`
	MembershipConcurrency   int    `yaml:"membership_concurrency"`
	CheckoutRedirectBaseURL string `yaml:"checkout_redirect_base_url"`

	BankCode        string `yaml:"bank_code"`
	BankAccountNo   string `yaml:"bank_account_no"`
	BankAccountName string `yaml:"bank_account_name"`
}

type UploadConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Folder  string `yaml:"folder"`
}

type WatcherConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	BatchSize           int `yaml:"batch_size"`
	Concurrency         int `yaml:"concurrency"`
	LeaseSeconds        int `yaml:"lease_seconds"`
	RateLimitPerMinute  int `yaml:"rate_limit_per_minute"`
	AbandonAfterMinutes int `yaml:"abandon_after_minutes"`
	NextCheckSeconds    int `yaml:"next_check_seconds"`
	Backoff1Seconds     int `yaml:"backoff_1_seconds"`
	Backoff2Seconds     int `yaml:"backoff_2_seconds"`
	Backoff3Seconds     int `yaml:"backoff_3_seconds"`
	Backoff4Seconds     int `yaml:"backoff_4_seconds"`

	// Bearer token the watcher presents to the café backend.
	ServiceToken string `yaml:"service_token"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

// PostgresDSN builds a pgx connection string, defaulting ssl_mode to disable.
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%d", c.Kafka.Host, c.Kafka.Port)}
}
