package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// Reset policies applied when the reconciler rebuilds the device collection
const (
	ResetPolicyDiscard  = "discard"
	ResetPolicyPreserve = "preserve"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Devices  DevicesConfig  `json:"devices"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Logging  LoggingConfig  `json:"logging"`
	CORS     CORSConfig     `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds document store configuration
type DatabaseConfig struct {
	Driver         string        `json:"driver"`
	URI            string        `json:"uri"`
	DBName         string        `json:"db_name"`
	CollectionName string        `json:"collection_name"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	EnsurePinIndex bool          `json:"ensure_pin_index"`
}

// DevicesConfig controls reconciliation and update behaviour
type DevicesConfig struct {
	ResetPolicy  string `json:"reset_policy"`
	StrictUpdate bool   `json:"strict_update"`
}

// MQTTConfig holds the state publisher configuration
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	BrokerHost  string `json:"broker_host"`
	BrokerPort  int    `json:"broker_port"`
	BrokerUser  string `json:"broker_user"`
	BrokerPass  string `json:"broker_pass"`
	UseTLS      bool   `json:"use_tls"`
	CACertPath  string `json:"ca_cert_path"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         int    `json:"qos"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// LoadApiConfig loads configuration for the API service
func LoadApiConfig() (*Config, error) {
	// A missing .env file is fine, variables may be set directly
	_ = godotenv.Load()

	env := &envReader{}

	config := &Config{
		Server: ServerConfig{
			Port:         env.getEnv("PORT", "5000"),
			ReadTimeout:  env.getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: env.getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  env.getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(env.getEnv("STORE_DRIVER", StoreDriverMongo)),
			URI:            env.getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName:         env.getEnv("DB_NAME", "test"),
			CollectionName: env.getEnv("COLLECTION_NAME", "devices"),
			ConnectTimeout: env.getDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
			EnsurePinIndex: env.getBool("ENSURE_PIN_INDEX", false),
		},
		Devices: DevicesConfig{
			ResetPolicy:  strings.ToLower(env.getEnv("RESET_POLICY", ResetPolicyDiscard)),
			StrictUpdate: env.getBool("STRICT_UPDATE", false),
		},
		MQTT: MQTTConfig{
			Enabled:     env.getBool("MQTT_ENABLED", false),
			BrokerHost:  env.getEnv("BROKER_HOST", "localhost"),
			BrokerPort:  env.getInt("BROKER_PORT", 1883),
			BrokerUser:  env.getEnv("BROKER_USER", ""),
			BrokerPass:  env.getEnv("BROKER_PASS", ""),
			UseTLS:      env.getBool("BROKER_TLS", false),
			CACertPath:  env.getEnv("BROKER_CA_FILE", ""),
			ClientID:    env.getEnv("MQTT_CLIENT_ID", "led-panel-api"),
			TopicPrefix: env.getEnv("MQTT_TOPIC_PREFIX", "leds"),
			QoS:         env.getInt("MQTT_QOS", 1),
		},
		Logging: LoggingConfig{
			Level:        env.getEnv("LOG_LEVEL", "info"),
			Format:       env.getEnv("LOG_FORMAT", "text"),
			Output:       env.getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: env.getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   env.getStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   env.getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   env.getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			ExposedHeaders:   env.getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-Request-ID"}),
			AllowCredentials: env.getBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           env.getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	if err := env.err(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.Database.Driver {
	case StoreDriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store driver")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected %s or %s)", c.Database.Driver, StoreDriverMongo, StoreDriverMemory)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.CollectionName == "" {
		return fmt.Errorf("COLLECTION_NAME is required")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("MONGO_CONNECT_TIMEOUT must be positive")
	}
	if c.Devices.ResetPolicy != ResetPolicyDiscard && c.Devices.ResetPolicy != ResetPolicyPreserve {
		return fmt.Errorf("unknown RESET_POLICY %q (expected %s or %s)", c.Devices.ResetPolicy, ResetPolicyDiscard, ResetPolicyPreserve)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		return fmt.Errorf("MQTT_TOPIC_PREFIX is required when MQTT is enabled")
	}
	return nil
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *Config) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// envReader reads typed values from the environment and remembers every
// malformed one so they can be reported together.
type envReader struct {
	errs []error
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func (r *envReader) getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return intValue
}

func (r *envReader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "TRUE":
		return true
	case "0", "false", "FALSE":
		return false
	}
	r.errs = append(r.errs, fmt.Errorf("invalid %s: %q (expected true/false or 1/0)", key, value))
	return defaultValue
}

func (r *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return duration
}

func (r *envReader) getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
