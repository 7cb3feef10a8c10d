package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"kodikas-backend/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// GetConfig reads the configuration from .env, config files and environment variables
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper.
// A .env file in the working directory is loaded into the process
// environment first; variables that are already set win.
func Load() (*models.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Nested config.json sections are mapped onto the flat keys
	if v.IsSet("app") {
		flattenNestedConfig(v)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env values for list keys arrive as a single comma separated string
	config.CORSOrigins = splitList(config.CORSOrigins)
	config.Tables = splitList(config.Tables)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "Kodikas Backend")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")

	v.SetDefault("store_driver", StoreMemory)

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_max_conns", 10)
	v.SetDefault("postgres_min_conns", 1)
	v.SetDefault("postgres_query_timeout", 5*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("rate_limit_requests_per_minute", 100)
	v.SetDefault("basePath", "/api/v1")

	v.SetDefault("allow_inactive_references", true)

	v.SetDefault("tables", []string{"organizations", "members", "projects", "applications"})
	v.SetDefault("provision_cron_schedule", "0 */5 * * * *")
	v.SetDefault("provision_lock_path", "/tmp/kodikas-provision.lock")
	v.SetDefault("provision_status_path", "/tmp/kodikas-provision-status.json")
}

func validate(c *models.Config) error {
	switch c.StoreDriver {
	case StoreMemory, StoreDynamoDB:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required when store_driver is postgres")
		}
		if c.PostgresMinConns > c.PostgresMaxConns {
			return fmt.Errorf("postgres_min_conns (%d) exceeds postgres_max_conns (%d)", c.PostgresMinConns, c.PostgresMaxConns)
		}
	default:
		return fmt.Errorf("unknown store_driver %q", c.StoreDriver)
	}

	if c.RateLimitRequestsPerMinute < 0 {
		return errors.New("rate_limit_requests_per_minute must not be negative")
	}

	return nil
}

func flattenNestedConfig(v *viper.Viper) {
	mapping := map[string]string{
		"app.name":                         "app_name",
		"app.version":                      "app_version",
		"app.env":                          "app_env",
		"app.host":                         "app_host",
		"app.port":                         "app_port",
		"store.driver":                     "store_driver",
		"aws.region":                       "aws_region",
		"aws.access_key_id":                "aws_access_key_id",
		"aws.secret_access_key":            "aws_secret_access_key",
		"aws.dynamodb_endpoint":            "dynamodb_endpoint",
		"aws.dynamodb_table_prefix":        "dynamodb_table_prefix",
		"postgres.dsn":                     "postgres_dsn",
		"postgres.max_conns":               "postgres_max_conns",
		"postgres.min_conns":               "postgres_min_conns",
		"postgres.query_timeout":           "postgres_query_timeout",
		"logging.level":                    "log_level",
		"logging.format":                   "log_format",
		"cors.origins":                     "cors_origins",
		"rate_limit.requests_per_minute":   "rate_limit_requests_per_minute",
		"policy.allow_inactive_references": "allow_inactive_references",
		"provision.cron_schedule":          "provision_cron_schedule",
		"provision.lock_path":              "provision_lock_path",
		"provision.status_path":            "provision_status_path",
	}
	for nested, flat := range mapping {
		if v.IsSet(nested) {
			v.Set(flat, v.Get(nested))
		}
	}
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PrintPrettyJSON renders any value as indented JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// HashPassword hashes a plain text password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a hashed password with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
