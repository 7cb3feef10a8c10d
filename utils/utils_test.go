package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
	originalEnv map[string]string
	originalWD  string
}

var configEnvVars = []string{
	"APP_NAME", "APP_ENV", "APP_PORT", "STORE_DRIVER",
	"POSTGRES_DSN", "POSTGRES_MAX_CONNS", "POSTGRES_MIN_CONNS", "POSTGRES_QUERY_TIMEOUT",
	"DYNAMODB_TABLE_PREFIX", "LOG_LEVEL", "CORS_ORIGINS",
	"RATE_LIMIT_REQUESTS_PER_MINUTE", "ALLOW_INACTIVE_REFERENCES", "TABLES",
}

func (suite *UtilsTestSuite) SetupTest() {
	suite.originalEnv = make(map[string]string)
	for _, envVar := range configEnvVars {
		suite.originalEnv[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}

	// Run each test from an empty directory so no config.json or .env leaks in
	wd, err := os.Getwd()
	require.NoError(suite.T(), err)
	suite.originalWD = wd
	require.NoError(suite.T(), os.Chdir(suite.T().TempDir()))
}

func (suite *UtilsTestSuite) TearDownTest() {
	for envVar, value := range suite.originalEnv {
		if value != "" {
			os.Setenv(envVar, value)
		} else {
			os.Unsetenv(envVar)
		}
	}
	require.NoError(suite.T(), os.Chdir(suite.originalWD))
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestGetConfigDefaults() {
	config, err := GetConfig()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Kodikas Backend", config.AppName)
	assert.Equal(suite.T(), "8081", config.AppPort)
	assert.Equal(suite.T(), StoreMemory, config.StoreDriver)
	assert.Equal(suite.T(), "/api/v1", config.BasePath)
	assert.True(suite.T(), config.AllowInactiveReferences)
	assert.Equal(suite.T(), 5*time.Second, config.PostgresQueryTimeout)
	assert.Equal(suite.T(), []string{"organizations", "members", "projects", "applications"}, config.Tables)
	assert.Equal(suite.T(), "dev_members", config.TableName("members"))
}

func (suite *UtilsTestSuite) TestEnvironmentOverrides() {
	os.Setenv("APP_NAME", "Test App")
	os.Setenv("STORE_DRIVER", "postgres")
	os.Setenv("POSTGRES_DSN", "postgres://localhost/kodikas")
	os.Setenv("POSTGRES_QUERY_TIMEOUT", "2s")
	os.Setenv("CORS_ORIGINS", "https://a.example.com, *.example.org")
	os.Setenv("ALLOW_INACTIVE_REFERENCES", "false")

	config, err := Load()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Test App", config.AppName)
	assert.Equal(suite.T(), StorePostgres, config.StoreDriver)
	assert.Equal(suite.T(), 2*time.Second, config.PostgresQueryTimeout)
	assert.Equal(suite.T(), []string{"https://a.example.com", "*.example.org"}, config.CORSOrigins)
	assert.False(suite.T(), config.AllowInactiveReferences)
}

func (suite *UtilsTestSuite) TestDotEnvIsLoaded() {
	require.NoError(suite.T(), os.WriteFile(".env", []byte("APP_PORT=9999\nLOG_LEVEL=debug\n"), 0o644))
	defer os.Unsetenv("APP_PORT")
	defer os.Unsetenv("LOG_LEVEL")

	config, err := Load()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "9999", config.AppPort)
	assert.Equal(suite.T(), "debug", config.LogLevel)
}

func (suite *UtilsTestSuite) TestNestedConfigFile() {
	content := `{
		"app": {"name": "From File", "port": "7000"},
		"store": {"driver": "dynamodb"},
		"aws": {"dynamodb_table_prefix": "qa"}
	}`
	require.NoError(suite.T(), os.WriteFile(filepath.Join(".", "config.json"), []byte(content), 0o644))

	config, err := Load()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "From File", config.AppName)
	assert.Equal(suite.T(), "7000", config.AppPort)
	assert.Equal(suite.T(), StoreDynamoDB, config.StoreDriver)
	assert.Equal(suite.T(), "qa_projects", config.TableName("projects"))
}

func (suite *UtilsTestSuite) TestValidationErrors() {
	testCases := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "unknown driver",
			env:      map[string]string{"STORE_DRIVER": "mongo"},
			contains: "unknown store_driver",
		},
		{
			name:     "postgres without dsn",
			env:      map[string]string{"STORE_DRIVER": "postgres"},
			contains: "postgres_dsn is required",
		},
		{
			name: "min conns above max",
			env: map[string]string{
				"STORE_DRIVER":       "postgres",
				"POSTGRES_DSN":       "postgres://localhost/kodikas",
				"POSTGRES_MIN_CONNS": "20",
				"POSTGRES_MAX_CONNS": "5",
			},
			contains: "exceeds postgres_max_conns",
		},
		{
			name:     "negative rate limit",
			env:      map[string]string{"RATE_LIMIT_REQUESTS_PER_MINUTE": "-1"},
			contains: "must not be negative",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tc.env {
					os.Unsetenv(k)
				}
			}()

			_, err := GetConfig()
			require.Error(suite.T(), err)
			assert.Contains(suite.T(), err.Error(), tc.contains)
		})
	}
}

func (suite *UtilsTestSuite) TestGenerateUUID() {
	id := GenerateUUID()
	_, err := uuid.Parse(id)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), id, GenerateUUID())
}

func (suite *UtilsTestSuite) TestHashAndCheckPassword() {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), "s3cret-pass", hash)
	assert.True(suite.T(), CheckPassword(hash, "s3cret-pass"))
	assert.False(suite.T(), CheckPassword(hash, "wrong"))
}

func (suite *UtilsTestSuite) TestPrintPrettyJSON() {
	out := PrintPrettyJSON(map[string]int{"a": 1})
	assert.Equal(suite.T(), "{\n    \"a\": 1\n}", out)
}
