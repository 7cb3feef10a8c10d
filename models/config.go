package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Store selects the persistence driver: memory, dynamodb or postgres
	StoreDriver string `mapstructure:"store_driver"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Postgres
	PostgresDSN          string        `mapstructure:"postgres_dsn"`
	PostgresMaxConns     int32         `mapstructure:"postgres_max_conns"`
	PostgresMinConns     int32         `mapstructure:"postgres_min_conns"`
	PostgresQueryTimeout time.Duration `mapstructure:"postgres_query_timeout"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Rate Limiting
	RateLimitRequestsPerMinute int `mapstructure:"rate_limit_requests_per_minute"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	// Lifecycle policy
	AllowInactiveReferences bool `mapstructure:"allow_inactive_references"`

	// Provisioning
	Tables                []string `mapstructure:"tables"`
	ProvisionCronSchedule string   `mapstructure:"provision_cron_schedule"`
	ProvisionLockPath     string   `mapstructure:"provision_lock_path"`
	ProvisionStatusPath   string   `mapstructure:"provision_status_path"`
}

// TableName returns the prefixed DynamoDB table name for a base name
func (c *Config) TableName(base string) string {
	if c.DynamoDBTablePrefix == "" {
		return base
	}
	return c.DynamoDBTablePrefix + "_" + base
}
